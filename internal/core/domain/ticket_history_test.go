package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyPayload = `{
  "success": true,
  "data": {
    "data": [
      {
        "match_info": {
          "m_id": 2001,
          "match_name": "Chelsea vs Arsenal",
          "venue": 14,
          "stadium_name": "Stamford Bridge",
          "t_id": 3,
          "tournament_name": "Premier League",
          "match_date": "2024-12-14",
          "match_time": "17:30",
          "city_name": "London",
          "country_name": "England"
        },
        "tickets": [
          {
            "s_no": 77,
            "match_id": 2001,
            "ticket_type": "E-ticket",
            "ticket_category": "Home Fans Section",
            "ticket_block": "",
            "row": "K",
            "quantity": 4,
            "seat": 0,
            "ticket_in_hand": 1,
            "first_seat": null,
            "ship_date": null,
            "price": 85.5,
            "listing_note": [{"id": 1, "name": "Aisle"}, {"id": 2, "name": "Restricted view"}],
            "split": {"id": 2, "name": "Pair"}
          },
          {
            "s_no": 78,
            "match_id": 2001,
            "ticket_type": "Physical",
            "ticket_category": "Upper Tier",
            "ticket_block": "Block 3",
            "row": "C",
            "quantity": 2,
            "seat": 112,
            "ticket_in_hand": 0,
            "first_seat": "110",
            "ship_date": "2024-12-10",
            "price": 60,
            "listing_note": [],
            "split": {"id": 1, "name": "None"}
          }
        ]
      }
    ]
  }
}`

func TestFlattenTicketHistory(t *testing.T) {
	var resp TicketHistoryResponse
	require.NoError(t, json.Unmarshal([]byte(historyPayload), &resp))

	items := FlattenTicketHistory(resp)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "2001-77", first.ID)
	assert.Equal(t, "Chelsea vs Arsenal", first.MatchEvent)
	assert.Equal(t, SectionBlock1, first.SectionBlock)
	assert.Equal(t, "1", first.FirstSeat)
	assert.Empty(t, first.LastSeat)
	assert.Equal(t, "N/A", first.DateToShip)
	assert.Equal(t, "In Hand", first.TicketStatus)
	assert.True(t, first.TicketsInHand)
	assert.Equal(t, "Aisle, Restricted view", first.Notes)
	assert.Equal(t, SplitPair, first.SplitType)
	assert.Equal(t, 4, first.MaxDisplayQuantity)
	assert.Equal(t, 85.5, first.PayoutPrice)
	assert.Zero(t, first.FaceValue)
	assert.Equal(t, SeatingTogether, first.SeatingArrangement)
	assert.Equal(t, FanAreaNeutral, first.FanArea)
	assert.Equal(t, BenefitNone, first.Benefits)
	assert.Equal(t, RestrictionNone, first.Restrictions)
	assert.Equal(t, "N/A", first.Barcode)
	assert.Equal(t, "14", first.Venue)
	assert.Equal(t, "London", first.City)

	second := items[1]
	assert.Equal(t, "2001-78", second.ID)
	assert.Equal(t, SectionBlock3, second.SectionBlock)
	assert.Equal(t, "110", second.FirstSeat)
	assert.Equal(t, "112", second.LastSeat)
	assert.Equal(t, "2024-12-10", second.DateToShip)
	assert.Equal(t, "Not In Hand", second.TicketStatus)
	assert.Empty(t, second.Notes)
}

func TestFlattenTicketHistory_Empty(t *testing.T) {
	assert.Empty(t, FlattenTicketHistory(TicketHistoryResponse{}))
}
