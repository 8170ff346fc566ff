package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

func getMongoDB(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	db := client.Database("ticket_inventory_test_" + time.Now().Format("150405000"))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoAdapter_CRUD(t *testing.T) {
	db := getMongoDB(t)
	ctx := context.Background()

	adapter, err := NewMongoAdapter(ctx, db)
	require.NoError(t, err)

	first, err := adapter.Create(ctx, domain.InventoryItem{ID: "b", MatchEvent: "A", Quantity: 2})
	require.NoError(t, err)
	second, err := adapter.Create(ctx, domain.InventoryItem{MatchEvent: "B", Quantity: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, second.ID)

	_, err = adapter.Create(ctx, first)
	assert.ErrorIs(t, err, ErrDuplicateItem)

	first.Notes = "aisle"
	_, err = adapter.Update(ctx, first)
	require.NoError(t, err)

	_, err = adapter.Update(ctx, domain.InventoryItem{ID: "missing"})
	assert.ErrorIs(t, err, ErrItemNotFound)

	items, err := adapter.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "aisle", items[0].Notes)
	assert.Equal(t, second.ID, items[1].ID)

	require.NoError(t, adapter.Delete(ctx, "b"))
	require.NoError(t, adapter.Delete(ctx, "b"))

	items, err = adapter.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
