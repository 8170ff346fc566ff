package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	f, err := ParseField(" quantity ")
	require.NoError(t, err)
	assert.Equal(t, FieldQuantity, f)

	_, err = ParseField("Match Event")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSet_ParsesTypedColumns(t *testing.T) {
	var it InventoryItem

	tests := []struct {
		field Field
		raw   string
		want  string
	}{
		{FieldQuantity, "12", "12"},
		{FieldMaxDisplayQuantity, " 4", "4"},
		{FieldFaceValue, "120.50", "120.5"},
		{FieldPayoutPrice, "99", "99"},
		{FieldTicketsInHand, "true", "true"},
		{FieldTicketType, "Physical", "Physical"},
		{FieldNotes, "aisle, near exit", "aisle, near exit"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			require.NoError(t, it.Set(tt.field, tt.raw))
			assert.Equal(t, tt.want, it.Value(tt.field))
		})
	}
}

func TestSet_RejectsBadInput(t *testing.T) {
	it := InventoryItem{ID: "1", Quantity: 3}

	assert.ErrorIs(t, it.Set(FieldID, "2"), ErrReadOnlyField)
	assert.ErrorIs(t, it.Set(FieldQuantity, "three"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldQuantity, "-1"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldFaceValue, "-0.5"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldFaceValue, "NaN"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldFaceValue, "Inf"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldPayoutPrice, "+Inf"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldPayoutPrice, "-Inf"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(FieldTicketsInHand, "maybe"), ErrMalformedValue)
	assert.ErrorIs(t, it.Set(Field("colour"), "red"), ErrUnknownField)

	assert.Equal(t, "1", it.ID)
	assert.Equal(t, 3, it.Quantity)
}

func TestCloneWithID(t *testing.T) {
	src := InventoryItem{ID: "1", MatchEvent: "A", Quantity: 5, Notes: "x"}

	clone := src.CloneWithID("2")

	assert.Equal(t, "2", clone.ID)
	assert.Equal(t, "1", src.ID)
	clone.ID = src.ID
	assert.Equal(t, src, clone)
}
