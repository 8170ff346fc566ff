package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

const listingsSchema = `
CREATE TABLE IF NOT EXISTS listings (
	seq         BIGINT AUTO_INCREMENT PRIMARY KEY,
	id          VARCHAR(64)  NOT NULL,
	match_event VARCHAR(255) NOT NULL,
	payload     JSON         NOT NULL,
	version     INT          NOT NULL DEFAULT 0,
	created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_listings_id (id),
	KEY idx_listings_match_event (match_event)
)`

// listingRow is a listing as stored: the full item lives in payload, with the
// columns needed for lookups and ordering pulled out beside it.
type listingRow struct {
	Seq        int64  `db:"seq"`
	ID         string `db:"id"`
	MatchEvent string `db:"match_event"`
	Payload    []byte `db:"payload"`
	Version    int    `db:"version"`
}

type MySQLAdapter struct {
	db *sqlx.DB
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, listingsSchema); err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) List(ctx context.Context) ([]domain.InventoryItem, error) {
	var rows []listingRow
	err := m.db.SelectContext(ctx, &rows, `
		SELECT seq, id, match_event, payload, version
		FROM listings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(rows))
	for _, r := range rows {
		var it domain.InventoryItem
		if err := json.Unmarshal(r.Payload, &it); err != nil {
			return nil, fmt.Errorf("decode listing %s: %w", r.ID, err)
		}
		it.ID = r.ID
		items = append(items, it)
	}
	return items, nil
}

func (m *MySQLAdapter) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("encode listing: %w", err)
	}

	_, err = m.db.NamedExecContext(ctx, `
		INSERT INTO listings (id, match_event, payload)
		VALUES (:id, :match_event, :payload)`,
		listingRow{ID: item.ID, MatchEvent: item.MatchEvent, Payload: payload},
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		return domain.InventoryItem{}, fmt.Errorf("insert listing: %w", err)
	}
	return item, nil
}

func (m *MySQLAdapter) Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("encode listing: %w", err)
	}

	result, err := m.db.NamedExecContext(ctx, `
		UPDATE listings
		SET match_event = :match_event, payload = :payload, version = version + 1
		WHERE id = :id`,
		listingRow{ID: item.ID, MatchEvent: item.MatchEvent, Payload: payload},
	)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("update listing: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// MySQL reports unchanged rows as unaffected
		var count int
		if err := m.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM listings WHERE id = ?`, item.ID); err != nil {
			return domain.InventoryItem{}, fmt.Errorf("check listing: %w", err)
		}
		if count == 0 {
			return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
		}
	}
	return item, nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, id string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}
