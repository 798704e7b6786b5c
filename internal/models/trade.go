package models

import "time"

// Trade represents a bilateral physical-commodity trade.
type Trade struct {
	ID            string
	TradeNumber   string
	TradeDate     time.Time
	BuyerName     string    `validate:"required"`
	SellerName    string    `validate:"required"`
	Metal         MetalType `validate:"required"`
	Quantity      float64   `validate:"gt=0,lte=10000"` // metric tons
	PricePerTon   float64   `validate:"gt=0"`
	TotalValue    float64
	DeliveryDate  time.Time
	Status        TradeStatus
	IsNovated     bool
	NovationDate  *time.Time
	ClearingRef   string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Value returns quantity x price, the contract value the stored
// TotalValue must match within tolerance.
func (t *Trade) Value() float64 {
	return t.Quantity * t.PricePerTon
}

// Margin represents a single margin obligation computed for a trade.
// A trade accumulates one record per calculation event.
type Margin struct {
	ID              string
	TradeID         string
	TradeNumber     string
	InitialMargin   float64
	VariationMargin float64
	TotalMargin     float64
	MarginDate      time.Time
	MarketPrice     float64
	PriceChange     float64
	PayingParty     string
	Payable         bool
	Status          MarginStatus
}
