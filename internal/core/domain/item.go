package domain

type TicketType string

const (
	TicketTypeETicket       TicketType = "E-ticket"
	TicketTypePhysical      TicketType = "Physical"
	TicketTypeLocalDelivery TicketType = "Local Delivery"
	TicketTypeFlashSeats    TicketType = "Flash Seats"
	TicketTypeMobile        TicketType = "Mobile Transfer"
	TicketTypeNone          TicketType = "None"
)

type Category string

const (
	CategoryAwayFans  Category = "Away Fans Section"
	CategoryHomeFans  Category = "Home Fans Section"
	CategoryLowerTier Category = "Lower Tier"
	CategoryUpperTier Category = "Upper Tier"
	CategoryClubLevel Category = "Club Level"
)

type SectionBlock string

const (
	SectionLongsideLower  SectionBlock = "Longside Lower Tier"
	SectionShortsideLower SectionBlock = "Shortside Lower Tier"
	SectionLongsideUpper  SectionBlock = "Longside Upper Tier"
	SectionShortsideUpper SectionBlock = "Shortside Upper Tier"
	SectionBlock1         SectionBlock = "Block 1"
	SectionBlock2         SectionBlock = "Block 2"
	SectionBlock3         SectionBlock = "Block 3"
)

type SplitType string

const (
	SplitNone   SplitType = "None"
	SplitEven   SplitType = "Even"
	SplitOdd    SplitType = "Odd"
	SplitPair   SplitType = "Pair"
	SplitSingle SplitType = "Single"
)

type SeatingArrangement string

const (
	SeatingNotTogether SeatingArrangement = "Not Seated Together"
	SeatingTogether    SeatingArrangement = "Seated Together"
	SeatingAisle       SeatingArrangement = "Aisle Seats"
	SeatingCenter      SeatingArrangement = "Center Seats"
)

type FanArea string

const (
	FanAreaHome    FanArea = "Home"
	FanAreaAway    FanArea = "Away"
	FanAreaNeutral FanArea = "Neutral"
)

type Benefit string

const (
	BenefitNone          Benefit = "None"
	BenefitFreeParking   Benefit = "Free Parking"
	BenefitVIPAccess     Benefit = "VIP Access"
	BenefitFoodAndDrink  Benefit = "Food and Beverage Included"
	BenefitMerchDiscount Benefit = "Merchandise Discount"
)

type Restriction string

const (
	RestrictionNone      Restriction = "None"
	RestrictionAgeLimit  Restriction = "Age Limit"
	RestrictionBags      Restriction = "Bag Policy"
	RestrictionNoReentry Restriction = "No Re-entry"
	RestrictionCamera    Restriction = "Camera Restrictions"
)

// InventoryItem is one ticket listing offered against a match event.
type InventoryItem struct {
	ID                 string             `json:"id"`
	MatchEvent         string             `json:"matchEvent" validate:"required"`
	TicketType         TicketType         `json:"ticketType" validate:"required,ne=None,oneof='E-ticket' 'Physical' 'Local Delivery' 'Flash Seats' 'Mobile Transfer'"`
	Category           Category           `json:"category" validate:"required"`
	SectionBlock       SectionBlock       `json:"sectionBlock" validate:"required"`
	Row                string             `json:"row" validate:"required"`
	FirstSeat          string             `json:"firstSeat" validate:"required"`
	LastSeat           string             `json:"lastSeat,omitempty"`
	SplitType          SplitType          `json:"splitType" validate:"omitempty,oneof=None Even Odd Pair Single"`
	SeatingArrangement SeatingArrangement `json:"seatingArrangement" validate:"required"`
	FanArea            FanArea            `json:"fanArea" validate:"omitempty,oneof=Home Away Neutral"`
	Benefits           Benefit            `json:"benefits"`
	Restrictions       Restriction        `json:"restrictions"`
	Quantity           int                `json:"quantity" validate:"gt=0"`
	MaxDisplayQuantity int                `json:"maxDisplayQuantity" validate:"gte=0"`
	FaceValue          float64            `json:"faceValue" validate:"gte=0"`
	PayoutPrice        float64            `json:"payoutPrice" validate:"gte=0"`
	Notes              string             `json:"notes"`
	DateToShip         string             `json:"dateToShip" validate:"required"`
	TicketsInHand      bool               `json:"ticketsInHand"`

	// Populated for rows derived from the ticket-history feed.
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
	Venue          string `json:"venue,omitempty"`
	Stadium        string `json:"stadium,omitempty"`
	TicketStatus   string `json:"ticketStatus,omitempty"`
	ListingID      string `json:"listingId,omitempty"`
	TicketID       string `json:"ticketId,omitempty"`
	MatchID        string `json:"matchId,omitempty"`
	SerialNumber   string `json:"serialNumber,omitempty"`
	Barcode        string `json:"barcode,omitempty"`
	TournamentName string `json:"tournamentName,omitempty"`
	City           string `json:"city,omitempty"`
	Country        string `json:"country,omitempty"`
}

// CloneWithID copies every field of the item under a new identity.
func (it InventoryItem) CloneWithID(id string) InventoryItem {
	clone := it
	clone.ID = id
	return clone
}
