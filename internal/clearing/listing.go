package clearing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"minex-clearing/internal/audit"
	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
)

// ListingService validates and manages the lifecycle of mineral sale
// listings.
type ListingService struct {
	store  store.EntityStore
	bands  map[models.MetalType]models.PriceBand
	logger zerolog.Logger
	audit  *audit.Logger
}

// NewListingService creates a listing service. A nil bands map falls
// back to the built-in market reference bands; metals absent from the
// map accept any positive price.
func NewListingService(st store.EntityStore, bands map[models.MetalType]models.PriceBand, logger zerolog.Logger, auditLog *audit.Logger) *ListingService {
	if bands == nil {
		bands = models.DefaultPriceBands()
	}
	return &ListingService{
		store:  st,
		bands:  bands,
		logger: logger,
		audit:  auditLog,
	}
}

// CreateListing validates and publishes a mineral sale listing. On
// success the listing gets an identity, a listing date of now, a
// default 30-day expiry when none is set, and Available status.
func (s *ListingService) CreateListing(ctx context.Context, listing *models.MineralListing) error {
	if err := checkStruct(listing); err != nil {
		return err
	}

	if band, ok := s.bands[listing.Metal]; ok {
		lo, hi := band.Min*0.8, band.Max*1.2
		if listing.PricePerTon < lo || listing.PricePerTon > hi {
			return apperrors.NewValidationError("PricePerTon", listing.PricePerTon,
				fmt.Sprintf("outside market band for %s (%.2f-%.2f)", listing.Metal, lo, hi))
		}
	}

	// Unknown sellers may list; a known but unapproved seller may not.
	seller, err := s.store.GetParty(ctx, store.RoleSeller, listing.SellerID)
	if err != nil {
		return apperrors.Wrap(err, "checking seller approval")
	}
	if seller != nil && !seller.IsApproved {
		return apperrors.NewOperationError("create listing", "seller", listing.SellerID,
			"seller is not approved to list")
	}

	now := time.Now()
	listing.ID = newID()
	listing.ListingDate = now
	if listing.ExpiryDate == nil {
		expiry := now.Add(DefaultListingValidity)
		listing.ExpiryDate = &expiry
	}
	listing.Status = models.ListingAvailable

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return err
	}

	s.logger.Info().
		Str("listing_id", listing.ID).
		Str("metal", string(listing.Metal)).
		Float64("quantity", listing.QuantityAvailable).
		Float64("price_per_ton", listing.PricePerTon).
		Msg("Listing created")
	s.audit.LogTransition(ctx, audit.EventListingCreated, listing.ID, "", map[string]interface{}{
		"metal":    string(listing.Metal),
		"quantity": listing.QuantityAvailable,
		"price":    listing.PricePerTon,
	})

	return nil
}

// UpdateListingStatus moves a listing to the given status. Any valid
// status is reachable from any other; back-office operators use this
// for manual overrides.
func (s *ListingService) UpdateListingStatus(ctx context.Context, id string, status models.ListingStatus) error {
	if !models.ValidListingStatus(status) {
		return apperrors.Wrapf(apperrors.ErrInvalidArgument, "listing status %q", status)
	}

	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if listing == nil {
		return apperrors.NewNotFoundError("listing", id)
	}

	prev := listing.Status
	listing.Status = status
	if err := s.store.UpdateListing(ctx, listing); err != nil {
		return err
	}

	s.logger.Info().
		Str("listing_id", id).
		Str("from", string(prev)).
		Str("to", string(status)).
		Msg("Listing status updated")
	s.audit.LogTransition(ctx, audit.EventListingStatusChanged, id, "", map[string]interface{}{
		"from": string(prev),
		"to":   string(status),
	})

	return nil
}

// GetAvailableListings returns all listings currently open for offers.
func (s *ListingService) GetAvailableListings(ctx context.Context) ([]models.MineralListing, error) {
	return s.store.QueryListings(ctx, store.ListingFilter{Status: models.ListingAvailable})
}

// ExpireListings marks Available listings whose expiry date has passed
// as Expired and returns how many were swept. Invoked from the CLI;
// there is no background scheduler.
func (s *ListingService) ExpireListings(ctx context.Context, now time.Time) (int, error) {
	listings, err := s.store.QueryListings(ctx, store.ListingFilter{Status: models.ListingAvailable})
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range listings {
		l := &listings[i]
		if l.ExpiryDate == nil || l.ExpiryDate.After(now) {
			continue
		}
		l.Status = models.ListingExpired
		if err := s.store.UpdateListing(ctx, l); err != nil {
			return expired, err
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info().Int("count", expired).Msg("Expired stale listings")
	}
	return expired, nil
}
