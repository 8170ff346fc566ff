package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrReadOnlyField  = errors.New("field is not editable")
	ErrMalformedValue = errors.New("malformed value")
)

// Field names a column of the inventory table by its JSON key.
type Field string

const (
	FieldID                 Field = "id"
	FieldMatchEvent         Field = "matchEvent"
	FieldTicketType         Field = "ticketType"
	FieldCategory           Field = "category"
	FieldSectionBlock       Field = "sectionBlock"
	FieldRow                Field = "row"
	FieldFirstSeat          Field = "firstSeat"
	FieldLastSeat           Field = "lastSeat"
	FieldSplitType          Field = "splitType"
	FieldSeatingArrangement Field = "seatingArrangement"
	FieldFanArea            Field = "fanArea"
	FieldBenefits           Field = "benefits"
	FieldRestrictions       Field = "restrictions"
	FieldQuantity           Field = "quantity"
	FieldMaxDisplayQuantity Field = "maxDisplayQuantity"
	FieldFaceValue          Field = "faceValue"
	FieldPayoutPrice        Field = "payoutPrice"
	FieldNotes              Field = "notes"
	FieldDateToShip         Field = "dateToShip"
	FieldTicketsInHand      Field = "ticketsInHand"
	FieldDate               Field = "date"
	FieldTime               Field = "time"
	FieldVenue              Field = "venue"
	FieldStadium            Field = "stadium"
	FieldTicketStatus       Field = "ticketStatus"
)

var knownFields = map[Field]struct{}{
	FieldID: {}, FieldMatchEvent: {}, FieldTicketType: {}, FieldCategory: {},
	FieldSectionBlock: {}, FieldRow: {}, FieldFirstSeat: {}, FieldLastSeat: {},
	FieldSplitType: {}, FieldSeatingArrangement: {}, FieldFanArea: {},
	FieldBenefits: {}, FieldRestrictions: {}, FieldQuantity: {},
	FieldMaxDisplayQuantity: {}, FieldFaceValue: {}, FieldPayoutPrice: {},
	FieldNotes: {}, FieldDateToShip: {}, FieldTicketsInHand: {}, FieldDate: {},
	FieldTime: {}, FieldVenue: {}, FieldStadium: {}, FieldTicketStatus: {},
}

func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if _, ok := knownFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Value returns the string form of a field, the form filters compare against.
func (it InventoryItem) Value(f Field) string {
	switch f {
	case FieldID:
		return it.ID
	case FieldMatchEvent:
		return it.MatchEvent
	case FieldTicketType:
		return string(it.TicketType)
	case FieldCategory:
		return string(it.Category)
	case FieldSectionBlock:
		return string(it.SectionBlock)
	case FieldRow:
		return it.Row
	case FieldFirstSeat:
		return it.FirstSeat
	case FieldLastSeat:
		return it.LastSeat
	case FieldSplitType:
		return string(it.SplitType)
	case FieldSeatingArrangement:
		return string(it.SeatingArrangement)
	case FieldFanArea:
		return string(it.FanArea)
	case FieldBenefits:
		return string(it.Benefits)
	case FieldRestrictions:
		return string(it.Restrictions)
	case FieldQuantity:
		return strconv.Itoa(it.Quantity)
	case FieldMaxDisplayQuantity:
		return strconv.Itoa(it.MaxDisplayQuantity)
	case FieldFaceValue:
		return formatAmount(it.FaceValue)
	case FieldPayoutPrice:
		return formatAmount(it.PayoutPrice)
	case FieldNotes:
		return it.Notes
	case FieldDateToShip:
		return it.DateToShip
	case FieldTicketsInHand:
		return strconv.FormatBool(it.TicketsInHand)
	case FieldDate:
		return it.Date
	case FieldTime:
		return it.Time
	case FieldVenue:
		return it.Venue
	case FieldStadium:
		return it.Stadium
	case FieldTicketStatus:
		return it.TicketStatus
	}
	return ""
}

// Set parses raw for the field's type and assigns it.
func (it *InventoryItem) Set(f Field, raw string) error {
	switch f {
	case FieldID:
		return ErrReadOnlyField
	case FieldMatchEvent:
		it.MatchEvent = raw
	case FieldTicketType:
		it.TicketType = TicketType(raw)
	case FieldCategory:
		it.Category = Category(raw)
	case FieldSectionBlock:
		it.SectionBlock = SectionBlock(raw)
	case FieldRow:
		it.Row = raw
	case FieldFirstSeat:
		it.FirstSeat = raw
	case FieldLastSeat:
		it.LastSeat = raw
	case FieldSplitType:
		it.SplitType = SplitType(raw)
	case FieldSeatingArrangement:
		it.SeatingArrangement = SeatingArrangement(raw)
	case FieldFanArea:
		it.FanArea = FanArea(raw)
	case FieldBenefits:
		it.Benefits = Benefit(raw)
	case FieldRestrictions:
		it.Restrictions = Restriction(raw)
	case FieldQuantity, FieldMaxDisplayQuantity:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", ErrMalformedValue, f)
		}
		if f == FieldQuantity {
			it.Quantity = n
		} else {
			it.MaxDisplayQuantity = n
		}
	case FieldFaceValue, FieldPayoutPrice:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative amount", ErrMalformedValue, f)
		}
		if f == FieldFaceValue {
			it.FaceValue = v
		} else {
			it.PayoutPrice = v
		}
	case FieldNotes:
		it.Notes = raw
	case FieldDateToShip:
		it.DateToShip = raw
	case FieldTicketsInHand:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", ErrMalformedValue, f)
		}
		it.TicketsInHand = b
	case FieldDate:
		it.Date = raw
	case FieldTime:
		it.Time = raw
	case FieldVenue:
		it.Venue = raw
	case FieldStadium:
		it.Stadium = raw
	case FieldTicketStatus:
		it.TicketStatus = raw
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
