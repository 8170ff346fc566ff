package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validListing() InventoryItem {
	return InventoryItem{
		MatchEvent:         "Chelsea vs Arsenal",
		TicketType:         TicketTypeETicket,
		Category:           CategoryHomeFans,
		SectionBlock:       SectionLongsideLower,
		Row:                "A",
		FirstSeat:          "12",
		SeatingArrangement: SeatingTogether,
		Quantity:           2,
		DateToShip:         "2024-12-01",
	}
}

func TestValidateNew_Accepts(t *testing.T) {
	assert.NoError(t, ValidateNew(validListing()))
}

func TestValidateNew_ReportsEveryField(t *testing.T) {
	it := validListing()
	it.MatchEvent = ""
	it.TicketType = TicketTypeNone
	it.Quantity = 0
	it.FaceValue = -1
	it.FanArea = "Upstairs"

	err := ValidateNew(it)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["matchEvent"])
	assert.Equal(t, "is required", verr.Fields["ticketType"])
	assert.Equal(t, "must be greater than 0", verr.Fields["quantity"])
	assert.Equal(t, "must not be negative", verr.Fields["faceValue"])
	assert.Contains(t, verr.Fields["fanArea"], "must be one of")
	assert.Contains(t, err.Error(), "faceValue: must not be negative; fanArea")
}
