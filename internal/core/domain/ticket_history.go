package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type MatchInfo struct {
	MatchID        int64  `json:"m_id"`
	MatchName      string `json:"match_name"`
	Venue          int64  `json:"venue"`
	StadiumName    string `json:"stadium_name"`
	TournamentID   int64  `json:"t_id"`
	TournamentName string `json:"tournament_name"`
	MatchDate      string `json:"match_date"`
	MatchTime      string `json:"match_time"`
	CityName       string `json:"city_name"`
	CountryName    string `json:"country_name"`
}

type ListingNote struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Split struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Ticket struct {
	SerialNo         int64         `json:"s_no"`
	MatchID          int64         `json:"match_id"`
	EventFlag        string        `json:"event_flag"`
	TicketType       string        `json:"ticket_type"`
	TicketTypeID     int64         `json:"ticket_type_id"`
	TicketCategory   string        `json:"ticket_category"`
	TicketCategoryID int64         `json:"ticket_category_id"`
	TicketBlock      string        `json:"ticket_block"`
	HomeTown         string        `json:"home_town"`
	Row              string        `json:"row"`
	Quantity         int           `json:"quantity"`
	Seat             int64         `json:"seat"`
	PriceType        string        `json:"price_type"`
	TicketInHand     int           `json:"ticket_in_hand"`
	FirstSeat        *string       `json:"first_seat"`
	ShipDate         *string       `json:"ship_date"`
	Price            float64       `json:"price"`
	PriceGBP         float64       `json:"price_gbp"`
	WebPrice         float64       `json:"web_price"`
	ListingNotes     []ListingNote `json:"listing_note"`
	Split            Split         `json:"split"`
}

type TicketHistoryEntry struct {
	MatchInfo MatchInfo `json:"match_info"`
	Tickets   []Ticket  `json:"tickets"`
}

type TicketHistoryResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Data []TicketHistoryEntry `json:"data"`
	} `json:"data"`
}

// Overview is the aggregate shown on the summary cards.
type Overview struct {
	Events              int `json:"events"`
	Listings            int `json:"listings"`
	PublishedListings   int `json:"published_listings"`
	UnpublishedListings int `json:"unpublished_listings"`
	Tickets             int `json:"tickets"`
}

type OverviewResponse struct {
	Success bool     `json:"success"`
	Data    Overview `json:"data"`
}

const (
	notAvailable       = "N/A"
	ticketStatusInHand = "In Hand"
	ticketStatusNotIn  = "Not In Hand"
)

// FlattenTicketHistory turns the nested match/ticket payload into flat rows.
// Defaults for fields the feed does not carry:
//
//	faceValue           0
//	seatingArrangement  Seated Together
//	dateToShip          ship_date, else N/A
//	fanArea             Neutral
//	benefits            None
//	restrictions        None
//	sectionBlock        ticket_block, else Block 1
//	firstSeat           first_seat, else 1
//	lastSeat            seat when non-zero
//	maxDisplayQuantity  quantity
//	barcode             N/A
func FlattenTicketHistory(resp TicketHistoryResponse) []InventoryItem {
	var items []InventoryItem
	for _, entry := range resp.Data.Data {
		for _, t := range entry.Tickets {
			items = append(items, FlattenTicket(entry.MatchInfo, t))
		}
	}
	return items
}

func FlattenTicket(m MatchInfo, t Ticket) InventoryItem {
	serial := strconv.FormatInt(t.SerialNo, 10)

	item := InventoryItem{
		ID:                 fmt.Sprintf("%d-%d", m.MatchID, t.SerialNo),
		MatchEvent:         m.MatchName,
		TicketType:         TicketType(t.TicketType),
		Category:           Category(t.TicketCategory),
		SectionBlock:       SectionBlock(t.TicketBlock),
		Row:                t.Row,
		FirstSeat:          "1",
		SplitType:          SplitType(t.Split.Name),
		SeatingArrangement: SeatingTogether,
		FanArea:            FanAreaNeutral,
		Benefits:           BenefitNone,
		Restrictions:       RestrictionNone,
		Quantity:           t.Quantity,
		MaxDisplayQuantity: t.Quantity,
		PayoutPrice:        t.Price,
		DateToShip:         notAvailable,
		TicketsInHand:      t.TicketInHand == 1,
		TicketStatus:       ticketStatusNotIn,
		Date:               m.MatchDate,
		Time:               m.MatchTime,
		Venue:              strconv.FormatInt(m.Venue, 10),
		Stadium:            m.StadiumName,
		ListingID:          serial,
		TicketID:           serial,
		SerialNumber:       serial,
		MatchID:            strconv.FormatInt(m.MatchID, 10),
		Barcode:            notAvailable,
		TournamentName:     m.TournamentName,
		City:               m.CityName,
		Country:            m.CountryName,
	}

	if item.SectionBlock == "" {
		item.SectionBlock = SectionBlock1
	}
	if t.FirstSeat != nil && *t.FirstSeat != "" {
		item.FirstSeat = *t.FirstSeat
	}
	if t.Seat != 0 {
		item.LastSeat = strconv.FormatInt(t.Seat, 10)
	}
	if t.ShipDate != nil && *t.ShipDate != "" {
		item.DateToShip = *t.ShipDate
	}
	if item.TicketsInHand {
		item.TicketStatus = ticketStatusInHand
	}

	names := make([]string, 0, len(t.ListingNotes))
	for _, n := range t.ListingNotes {
		names = append(names, n.Name)
	}
	item.Notes = strings.Join(names, ", ")

	return item
}
