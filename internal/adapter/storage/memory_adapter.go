package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
)

// FailureHook lets tests make a store operation fail. op is one of
// "list", "create", "update" or "delete".
type FailureHook func(op, id string) error

type MemoryOption func(*MemoryAdapter)

// WithLatency delays every call, like a remote store would.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *MemoryAdapter) { m.latency = d }
}

func WithFailureHook(hook FailureHook) MemoryOption {
	return func(m *MemoryAdapter) { m.fail = hook }
}

// MemoryAdapter is an in-process listing store. Each adapter owns its data.
type MemoryAdapter struct {
	mu      sync.RWMutex
	items   []domain.InventoryItem
	latency time.Duration
	fail    FailureHook
}

func NewMemoryAdapter(seed []domain.InventoryItem, opts ...MemoryOption) *MemoryAdapter {
	m := &MemoryAdapter{items: append([]domain.InventoryItem(nil), seed...)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryAdapter) SetFailureHook(hook FailureHook) {
	m.mu.Lock()
	m.fail = hook
	m.mu.Unlock()
}

func (m *MemoryAdapter) before(ctx context.Context, op, id string) error {
	if m.latency > 0 {
		t := time.NewTimer(m.latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.RLock()
	hook := m.fail
	m.mu.RUnlock()
	if hook != nil {
		return hook(op, id)
	}
	return nil
}

func (m *MemoryAdapter) List(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := m.before(ctx, "list", ""); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.InventoryItem(nil), m.items...), nil
}

func (m *MemoryAdapter) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if err := m.before(ctx, "create", item.ID); err != nil {
		return domain.InventoryItem{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(item.ID) >= 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	m.items = append(m.items, item)
	return item, nil
}

func (m *MemoryAdapter) Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if err := m.before(ctx, "update", item.ID); err != nil {
		return domain.InventoryItem{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(item.ID)
	if i < 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	m.items[i] = item
	return item, nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, id string) error {
	if err := m.before(ctx, "delete", id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		m.items = append(m.items[:i], m.items[i+1:]...)
	}
	return nil
}

func (m *MemoryAdapter) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

// SeedListings returns the demo inventory the memory store starts with.
func SeedListings() []domain.InventoryItem {
	return []domain.InventoryItem{
		{
			ID:                 "1",
			MatchEvent:         "Chelsea vs Arsenal - Premier League",
			TicketType:         domain.TicketTypeETicket,
			Quantity:           5,
			SplitType:          domain.SplitNone,
			SeatingArrangement: domain.SeatingNotTogether,
			MaxDisplayQuantity: 30,
			FanArea:            domain.FanAreaHome,
			Category:           domain.CategoryAwayFans,
			SectionBlock:       domain.SectionLongsideLower,
			Row:                "5",
			FirstSeat:          "3",
			LastSeat:           "4",
			FaceValue:          90000,
			PayoutPrice:        90000,
			DateToShip:         "Sun, 10 Nov 2024",
			TicketsInHand:      true,
			Notes:              "These are premium tickets with excellent views.",
			Benefits:           domain.BenefitNone,
			Restrictions:       domain.RestrictionNone,
			TournamentName:     "FIFA World Cup",
			City:               "Los Angeles",
			Country:            "United States",
		},
		{
			ID:                 "2",
			MatchEvent:         "Manchester United vs Liverpool - Premier League",
			TicketType:         domain.TicketTypePhysical,
			Quantity:           2,
			SplitType:          domain.SplitEven,
			SeatingArrangement: domain.SeatingTogether,
			MaxDisplayQuantity: 2,
			FanArea:            domain.FanAreaAway,
			Category:           domain.CategoryLowerTier,
			SectionBlock:       domain.SectionBlock1,
			Row:                "A",
			FirstSeat:          "1",
			LastSeat:           "2",
			FaceValue:          120000,
			PayoutPrice:        110000,
			DateToShip:         "2024-12-01",
			Notes:              "Physical tickets will be shipped via courier.",
			Benefits:           domain.BenefitFreeParking,
			Restrictions:       domain.RestrictionAgeLimit,
			TournamentName:     "FIFA World Cup",
			City:               "Los Angeles",
			Country:            "United States",
		},
		{
			ID:                 "3",
			MatchEvent:         "Barcelona vs Real Madrid - La Liga",
			TicketType:         domain.TicketTypeMobile,
			Quantity:           4,
			SplitType:          domain.SplitNone,
			SeatingArrangement: domain.SeatingAisle,
			MaxDisplayQuantity: 4,
			FanArea:            domain.FanAreaHome,
			Category:           domain.CategoryClubLevel,
			SectionBlock:       domain.SectionLongsideUpper,
			Row:                "C",
			FirstSeat:          "5",
			LastSeat:           "8",
			FaceValue:          200000,
			PayoutPrice:        180000,
			DateToShip:         "2025-01-15",
			TicketsInHand:      true,
			Notes:              "Mobile transfer tickets, will be sent 24 hours before the match.",
			Benefits:           domain.BenefitVIPAccess,
			Restrictions:       domain.RestrictionNoReentry,
			TournamentName:     "La Liga",
			City:               "Madrid",
			Country:            "Spain",
		},
	}
}
