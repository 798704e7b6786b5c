package models

import "time"

// Settlement represents the finalization of a trade, by physical
// delivery of a warrant or by a cash payment of the price difference.
type Settlement struct {
	ID                string
	SettlementNumber  string
	TradeID           string
	TradeNumber       string
	Type              SettlementType
	SettlementDate    time.Time
	SettlementAmount  float64
	BuyerName         string
	SellerName        string
	Metal             MetalType // physical only
	Quantity          float64   // physical only
	WarrantNumber     string    // physical only
	WarehouseLocation string    // physical only
	FinalPrice        float64
	PriceDifference   float64
	Status            SettlementStatus
	IsCompleted       bool
	CompletionDate    *time.Time
	Notes             string
}
