package service

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

type writeOp string

const (
	writeCreate writeOp = "create"
	writeUpdate writeOp = "update"
)

type pendingWrite struct {
	op   writeOp
	item domain.InventoryItem
	seq  uint64
}

// writeQueue fans writes out to a fixed set of shards. Every write for a
// given listing id lands on the same shard, so one worker persists them in
// the order they were queued.
type writeQueue struct {
	shards []chan pendingWrite

	closeMu sync.RWMutex
	closed  bool

	mu      sync.Mutex
	pending int
	idle    chan struct{}
}

func newWriteQueue(shards, size int) *writeQueue {
	if shards < 1 {
		shards = 1
	}
	q := &writeQueue{
		shards: make([]chan pendingWrite, shards),
		idle:   make(chan struct{}),
	}
	close(q.idle)
	for i := range q.shards {
		q.shards[i] = make(chan pendingWrite, size)
	}
	return q
}

func (q *writeQueue) shardFor(id string) chan pendingWrite {
	return q.shards[xxhash.Sum64String(id)%uint64(len(q.shards))]
}

func (q *writeQueue) enqueue(ctx context.Context, w pendingWrite) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed {
		return ErrClosed
	}

	q.begin()
	select {
	case q.shardFor(w.item.ID) <- w:
		return nil
	case <-ctx.Done():
		q.done()
		return ctx.Err()
	}
}

func (q *writeQueue) begin() {
	q.mu.Lock()
	if q.pending == 0 {
		q.idle = make(chan struct{})
	}
	q.pending++
	q.mu.Unlock()
}

func (q *writeQueue) done() {
	q.mu.Lock()
	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}
	q.mu.Unlock()
}

// wait blocks until every queued write has been processed.
func (q *writeQueue) wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *writeQueue) close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, ch := range q.shards {
		close(ch)
	}
}
