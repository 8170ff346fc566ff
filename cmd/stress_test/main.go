package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rl1809/ticket-inventory/internal/adapter/storage"
	"github.com/rl1809/ticket-inventory/internal/core/domain"
	"github.com/rl1809/ticket-inventory/internal/core/service"
)

var errInjected = errors.New("injected store failure")

func main() {
	var (
		editors   = pflag.Int("editors", 50, "concurrent cell editors")
		edits     = pflag.Int("edits", 20, "edits per editor")
		cloners   = pflag.Int("cloners", 20, "concurrent cloners")
		failEvery = pflag.Int("fail-every", 7, "fail every Nth store write, 0 disables")
		latency   = pflag.Duration("latency", 2*time.Millisecond, "simulated store latency")
		workers   = pflag.Int("workers", 8, "write queue shards")
	)
	pflag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	ctx := context.Background()

	var writes, injected atomic.Int64
	store := storage.NewMemoryAdapter(storage.SeedListings(),
		storage.WithLatency(*latency),
		storage.WithFailureHook(func(op, id string) error {
			if op != "update" && op != "create" {
				return nil
			}
			if *failEvery > 0 && writes.Add(1)%int64(*failEvery) == 0 {
				injected.Add(1)
				return errInjected
			}
			return nil
		}),
	)

	manager := service.NewTableManager(store, log.Named("table").WithOptions(zap.IncreaseLevel(zap.ErrorLevel)),
		service.WithWorkers(*workers),
		service.WithQueueSize(1024),
	)
	defer manager.Close()

	if err := manager.Load(ctx); err != nil {
		log.Fatal("load failed", zap.Error(err))
	}
	seed := manager.Items()

	var editOK, editFail, cloneOK, cloneFail atomic.Int32
	var clonedMu sync.Mutex
	var clonedIDs []string

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *editors; i++ {
		wg.Add(1)
		go func(editor int) {
			defer wg.Done()
			for n := 0; n < *edits; n++ {
				id := seed[(editor+n)%len(seed)].ID
				qty := strconv.Itoa(1 + (editor*(*edits)+n)%40)
				if _, err := manager.EditCell(ctx, id, string(domain.FieldQuantity), qty); err != nil {
					editFail.Add(1)
					continue
				}
				editOK.Add(1)
			}
		}(i)
	}

	for i := 0; i < *cloners; i++ {
		wg.Add(1)
		go func(cloner int) {
			defer wg.Done()
			clone, err := manager.Clone(ctx, seed[cloner%len(seed)].ID)
			if err != nil {
				cloneFail.Add(1)
				return
			}
			cloneOK.Add(1)
			clonedMu.Lock()
			clonedIDs = append(clonedIDs, clone.ID)
			clonedMu.Unlock()
		}(i)
	}

	wg.Wait()

	flushCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := manager.Flush(flushCtx); err != nil {
		log.Fatal("flush failed", zap.Error(err))
	}
	elapsed := time.Since(start)

	failures := manager.WriteFailures()
	rolledBack := 0
	for _, f := range failures {
		if f.RolledBack {
			rolledBack++
		}
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Edits accepted:   %d\n", editOK.Load())
	fmt.Printf("Edits rejected:   %d\n", editFail.Load())
	fmt.Printf("Clones accepted:  %d\n", cloneOK.Load())
	fmt.Printf("Clones rejected:  %d\n", cloneFail.Load())
	fmt.Printf("Store writes:     %d\n", writes.Load())
	fmt.Printf("Injected faults:  %d\n", injected.Load())
	fmt.Printf("Write failures:   %d (rolled back %d)\n", len(failures), rolledBack)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Clone ids must never repeat, even for clones that were later removed.
	seen := make(map[string]struct{}, len(clonedIDs))
	dupes := 0
	for _, id := range clonedIDs {
		if _, ok := seen[id]; ok {
			dupes++
		}
		seen[id] = struct{}{}
	}
	if dupes == 0 {
		fmt.Printf("PASS: %d clone ids are unique\n", len(clonedIDs))
	} else {
		fmt.Printf("FAIL: %d duplicate clone ids\n", dupes)
	}

	unexpected := 0
	for _, f := range failures {
		if !strings.Contains(f.Error, errInjected.Error()) {
			unexpected++
		}
	}
	if unexpected == 0 && (injected.Load() == 0) == (len(failures) == 0) {
		fmt.Println("PASS: write failures come from injected faults only")
	} else {
		fmt.Printf("FAIL: %d unexpected write failures\n", unexpected)
	}

	// Once the queue drains the local collection must match the store.
	persisted, err := store.List(ctx)
	if err != nil {
		log.Fatal("list store", zap.Error(err))
	}
	byID := make(map[string]domain.InventoryItem, len(persisted))
	for _, it := range persisted {
		byID[it.ID] = it
	}

	local := manager.Items()
	mismatches := 0
	if len(local) != len(persisted) {
		fmt.Printf("FAIL: local has %d listings, store has %d\n", len(local), len(persisted))
		mismatches++
	}
	for _, it := range local {
		stored, ok := byID[it.ID]
		if !ok {
			fmt.Printf("FAIL: listing %s missing from store\n", it.ID)
			mismatches++
			continue
		}
		if stored.Quantity != it.Quantity {
			fmt.Printf("FAIL: listing %s quantity local=%d store=%d\n", it.ID, it.Quantity, stored.Quantity)
			mismatches++
		}
	}
	if mismatches == 0 {
		fmt.Printf("PASS: %d local listings match the store\n", len(local))
	}
}
