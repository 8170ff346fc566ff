package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterItems() []InventoryItem {
	return []InventoryItem{
		{ID: "1", MatchEvent: "A", Quantity: 5, TicketType: TicketTypeETicket},
		{ID: "2", MatchEvent: "B", Quantity: 2, TicketType: TicketTypePhysical},
		{ID: "3", MatchEvent: "A", Quantity: 2, TicketType: TicketTypePhysical},
	}
}

func itemIDs(items []InventoryItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilters_EmptyIsIdentity(t *testing.T) {
	f := Filters{}
	items := filterItems()

	assert.False(t, f.Active())
	assert.Equal(t, items, f.Apply(items))
}

func TestFilters_Apply(t *testing.T) {
	tests := []struct {
		name    string
		toggles [][2]string
		want    []string
	}{
		{"single value", [][2]string{{"matchEvent", "A"}}, []string{"1", "3"}},
		{"or within column", [][2]string{{"quantity", "5"}, {"quantity", "2"}}, []string{"1", "2", "3"}},
		{"and across columns", [][2]string{{"matchEvent", "A"}, {"ticketType", "Physical"}}, []string{"3"}},
		{"toggle off", [][2]string{{"matchEvent", "B"}, {"matchEvent", "B"}}, []string{"1", "2", "3"}},
		{"no match", [][2]string{{"matchEvent", "Z"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Filters{}
			for _, tg := range tt.toggles {
				f.Toggle(Field(tg[0]), tg[1])
			}
			assert.Equal(t, tt.want, itemIDs(f.Apply(filterItems())))
		})
	}
}

func TestFilters_ToggleDropsEmptyColumn(t *testing.T) {
	f := Filters{}
	f.Toggle(FieldMatchEvent, "A")
	f.Toggle(FieldMatchEvent, "A")

	assert.False(t, f.Active())
	assert.Empty(t, f.Snapshot())
}

func TestFilters_Snapshot(t *testing.T) {
	f := Filters{}
	f.Toggle(FieldMatchEvent, "B")
	f.Toggle(FieldMatchEvent, "A")

	assert.Equal(t, map[Field][]string{FieldMatchEvent: {"A", "B"}}, f.Snapshot())
}
