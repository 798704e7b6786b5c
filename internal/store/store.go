// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"minex-clearing/internal/models"
)

// EntityStore defines the per-entity-type persistence boundary for the
// back-office core. Get methods return (nil, nil) when the id is
// absent; update methods fail if the record does not exist.
type EntityStore interface {
	// Trades
	CreateTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) (bool, error)
	QueryTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Mineral listings
	CreateListing(ctx context.Context, listing *models.MineralListing) error
	GetListing(ctx context.Context, id string) (*models.MineralListing, error)
	UpdateListing(ctx context.Context, listing *models.MineralListing) error
	QueryListings(ctx context.Context, filter ListingFilter) ([]models.MineralListing, error)

	// Margins
	CreateMargin(ctx context.Context, margin *models.Margin) error
	GetMarginsByTrade(ctx context.Context, tradeID string) ([]models.Margin, error)

	// Settlements
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)
	UpdateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlementsByTrade(ctx context.Context, tradeID string) ([]models.Settlement, error)

	// Warrants
	CreateWarrant(ctx context.Context, warrant *models.Warrant) error
	GetWarrant(ctx context.Context, id string) (*models.Warrant, error)
	UpdateWarrant(ctx context.Context, warrant *models.Warrant) error
	CreateWarrantTransfer(ctx context.Context, transfer *models.WarrantTransfer) error
	GetWarrantTransfers(ctx context.Context, warrantID string) ([]models.WarrantTransfer, error)

	// Warehouses
	CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	GetWarehouse(ctx context.Context, id string) (*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse *models.Warehouse) error

	// Counterparties
	CreateParty(ctx context.Context, role PartyRole, party *models.Party) error
	GetPartyByName(ctx context.Context, role PartyRole, name string) (*models.Party, error)
	GetParty(ctx context.Context, role PartyRole, id string) (*models.Party, error)

	// Payments
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentsByTrade(ctx context.Context, tradeID string) ([]models.Payment, error)

	// WithTx runs fn inside a single transaction; cross-entity writes
	// in one logical operation either all commit or none do.
	WithTx(ctx context.Context, fn func(EntityStore) error) error

	// Lifecycle
	Close() error
}

// PartyRole distinguishes the buyer and seller collections.
type PartyRole string

const (
	RoleBuyer  PartyRole = "BUYER"
	RoleSeller PartyRole = "SELLER"
)

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Status    models.TradeStatus
	Metal     models.MetalType
	BuyerName string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ListingFilter represents filters for querying listings.
type ListingFilter struct {
	Status   models.ListingStatus
	Metal    models.MetalType
	SellerID string
	Limit    int
}
