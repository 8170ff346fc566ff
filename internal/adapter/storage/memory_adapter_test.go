package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

func TestMemoryAdapter_CRUD(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(SeedListings())

	items, err := adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "1", items[0].ID)

	created, err := adapter.Create(ctx, domain.InventoryItem{MatchEvent: "A", Quantity: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = adapter.Create(ctx, domain.InventoryItem{ID: created.ID})
	assert.ErrorIs(t, err, ErrDuplicateItem)

	created.Quantity = 9
	_, err = adapter.Update(ctx, created)
	require.NoError(t, err)

	_, err = adapter.Update(ctx, domain.InventoryItem{ID: "missing"})
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, adapter.Delete(ctx, "2"))
	require.NoError(t, adapter.Delete(ctx, "missing"))

	items, err = adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"1", "3", created.ID}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, 9, items[2].Quantity)
}

func TestMemoryAdapter_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(SeedListings())

	items, _ := adapter.List(ctx)
	items[0].Quantity = 999

	again, _ := adapter.List(ctx)
	assert.Equal(t, 5, again[0].Quantity)
}

func TestMemoryAdapter_FailureHook(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	adapter := NewMemoryAdapter(SeedListings(), WithFailureHook(func(op, id string) error {
		if op == "update" && id == "1" {
			return boom
		}
		return nil
	}))

	_, err := adapter.Update(ctx, domain.InventoryItem{ID: "1"})
	assert.ErrorIs(t, err, boom)

	_, err = adapter.Update(ctx, domain.InventoryItem{ID: "2"})
	assert.NoError(t, err)

	adapter.SetFailureHook(nil)
	_, err = adapter.Update(ctx, domain.InventoryItem{ID: "1"})
	assert.NoError(t, err)
}

func TestMemoryAdapter_LatencyHonoursContext(t *testing.T) {
	adapter := NewMemoryAdapter(nil, WithLatency(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := adapter.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryAdapter_IsolatedInstances(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter(SeedListings())
	b := NewMemoryAdapter(SeedListings())

	require.NoError(t, a.Delete(ctx, "1"))

	items, _ := b.List(ctx)
	assert.Len(t, items, 3)
}
