// Package models defines the back-office entities and their state machines.
package models

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradePending         TradeStatus = "PENDING"
	TradeConfirmed       TradeStatus = "CONFIRMED"
	TradeNovated         TradeStatus = "NOVATED"
	TradeMarginCollected TradeStatus = "MARGIN_COLLECTED"
	TradeActive          TradeStatus = "ACTIVE"
	TradeSettled         TradeStatus = "SETTLED"
	TradeCompleted       TradeStatus = "COMPLETED"
	TradeCancelled       TradeStatus = "CANCELLED"
)

// tradeTransitions is the single source of truth for legal trade
// state transitions. Cancellation is legal from every state that is
// neither settled nor terminal.
var tradeTransitions = map[TradeStatus][]TradeStatus{
	TradePending:         {TradeConfirmed, TradeCancelled},
	TradeConfirmed:       {TradeNovated, TradeCancelled},
	TradeNovated:         {TradeMarginCollected, TradeCancelled},
	TradeMarginCollected: {TradeActive, TradeCancelled},
	TradeActive:          {TradeSettled, TradeCancelled},
	TradeSettled:         {TradeCompleted},
	TradeCompleted:       {},
	TradeCancelled:       {},
}

// CanTransitionTo reports whether moving from s to next is a legal
// trade state transition.
func (s TradeStatus) CanTransitionTo(next TradeStatus) bool {
	for _, allowed := range tradeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is a terminal state.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeCompleted || s == TradeCancelled
}

// ListingStatus represents the state of a mineral sale listing.
type ListingStatus string

const (
	ListingAvailable  ListingStatus = "AVAILABLE"
	ListingUnderOffer ListingStatus = "UNDER_OFFER"
	ListingSold       ListingStatus = "SOLD"
	ListingExpired    ListingStatus = "EXPIRED"
	ListingWithdrawn  ListingStatus = "WITHDRAWN"
)

// ValidListingStatus reports whether s is a recognized listing status.
// Any valid status is reachable from any other: listing transitions are
// deliberately permissive so back-office operators can override state.
func ValidListingStatus(s ListingStatus) bool {
	switch s {
	case ListingAvailable, ListingUnderOffer, ListingSold, ListingExpired, ListingWithdrawn:
		return true
	}
	return false
}

// SettlementType represents how a trade is finalized.
type SettlementType string

const (
	PhysicalDelivery SettlementType = "PHYSICAL_DELIVERY"
	CashSettlement   SettlementType = "CASH_SETTLEMENT"
)

// SettlementStatus represents the state of a settlement record.
type SettlementStatus string

const (
	SettlementProcessing SettlementStatus = "PROCESSING"
	SettlementCompleted  SettlementStatus = "COMPLETED"
)

// MarginStatus represents the collection state of a margin obligation.
type MarginStatus string

const (
	MarginRequired  MarginStatus = "REQUIRED"
	MarginCollected MarginStatus = "COLLECTED"
)

// WarrantStatus represents the state of a warehouse warrant.
type WarrantStatus string

const (
	WarrantIssued      WarrantStatus = "ISSUED"
	WarrantTransferred WarrantStatus = "TRANSFERRED"
	WarrantCancelledSt WarrantStatus = "CANCELLED"
)
