package models

import "time"

// Payment represents a payment recorded against a trade.
type Payment struct {
	ID          string
	TradeID     string  `validate:"required"`
	Amount      float64 `validate:"gt=0"`
	PaymentDate time.Time
	Description string
}

// Party represents a trading counterparty (buyer or seller).
// Listing and trade creation consult the party's approval flag when a
// matching record exists in the store.
type Party struct {
	ID          string
	Name        string
	CompanyName string
	Country     string
	IsApproved  bool
	CreatedAt   time.Time
}
