package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/ticket_inventory?parseTime=true"
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	adapter := NewMySQLAdapter(db)
	if err := adapter.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema setup failed: %v", err)
	}
	return db
}

func testListingID(prefix string) string {
	return prefix + "-" + time.Now().Format("20060102150405.000000000")
}

func TestMySQLCreateAndList(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	item := domain.InventoryItem{
		ID:         testListingID("test-listing"),
		MatchEvent: "Chelsea vs Arsenal",
		TicketType: domain.TicketTypeETicket,
		Quantity:   4,
		FaceValue:  120.5,
	}
	defer db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, item.ID)

	if _, err := adapter.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	items, err := adapter.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var found *domain.InventoryItem
	for i := range items {
		if items[i].ID == item.ID {
			found = &items[i]
		}
	}
	if found == nil {
		t.Fatal("listing not found after create")
	}
	if found.Quantity != 4 || found.FaceValue != 120.5 {
		t.Errorf("unexpected listing: %+v", *found)
	}
}

func TestMySQLCreate_Duplicate(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	item := domain.InventoryItem{ID: testListingID("dup-listing"), MatchEvent: "A"}
	defer db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, item.ID)

	if _, err := adapter.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := adapter.Create(ctx, item)
	if !errors.Is(err, ErrDuplicateItem) {
		t.Errorf("expected ErrDuplicateItem, got: %v", err)
	}
}

func TestMySQLUpdate(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	item := domain.InventoryItem{ID: testListingID("upd-listing"), MatchEvent: "A", Quantity: 1}
	defer db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, item.ID)

	if _, err := adapter.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	item.Quantity = 7
	if _, err := adapter.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// same payload again leaves no affected rows but must still succeed
	if _, err := adapter.Update(ctx, item); err != nil {
		t.Fatalf("repeated Update failed: %v", err)
	}

	var version int
	db.GetContext(ctx, &version, `SELECT version FROM listings WHERE id = ?`, item.ID)
	if version < 1 {
		t.Errorf("expected version to advance, got %d", version)
	}
}

func TestMySQLUpdate_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)

	_, err := adapter.Update(context.Background(), domain.InventoryItem{ID: "nonexistent-listing"})
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got: %v", err)
	}
}

func TestMySQLDelete(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	item := domain.InventoryItem{ID: testListingID("del-listing"), MatchEvent: "A"}
	if _, err := adapter.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := adapter.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := adapter.Delete(ctx, item.ID); err != nil {
		t.Errorf("deleting a missing listing should be a no-op, got: %v", err)
	}

	var count int
	db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listings WHERE id = ?`, item.ID)
	if count != 0 {
		t.Errorf("expected listing to be gone, found %d", count)
	}
}
