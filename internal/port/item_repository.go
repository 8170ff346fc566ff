package port

import (
	"context"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

// ItemSource supplies the full listing collection.
type ItemSource interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
}

type ItemRepository interface {
	ItemSource

	// Create persists a new listing, minting an id when the caller left it empty
	Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)

	// Update replaces the listing with the same id; unknown ids are an error
	Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)

	// Delete removes a listing; unknown ids are a no-op
	Delete(ctx context.Context, id string) error
}
