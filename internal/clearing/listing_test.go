package clearing

import (
	"context"
	"testing"
	"time"

	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
)

func newTestListing() *models.MineralListing {
	return &models.MineralListing{
		SellerID:          "SLR-100",
		SellerCompany:     "Andes Mining",
		Metal:             models.MetalCopper,
		QuantityAvailable: 500,
		PricePerTon:       9500,
		OriginCountry:     "Chile",
		QualityGrade:      "Grade A",
	}
}

func TestCreateListing(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	listing := newTestListing()
	if err := svc.listings.CreateListing(ctx, listing); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	if listing.ID == "" {
		t.Error("expected listing ID to be assigned")
	}
	if listing.Status != models.ListingAvailable {
		t.Errorf("expected status %s, got %s", models.ListingAvailable, listing.Status)
	}
	if listing.ExpiryDate == nil {
		t.Fatal("expected default expiry date")
	}
	wantExpiry := listing.ListingDate.Add(DefaultListingValidity)
	if !listing.ExpiryDate.Equal(wantExpiry) {
		t.Errorf("expected expiry %v, got %v", wantExpiry, *listing.ExpiryDate)
	}
}

func TestCreateListingPriceBand(t *testing.T) {
	// Copper reference band is 8,000-12,000; listings are accepted
	// within 20% beyond it on either side.
	tests := []struct {
		name  string
		price float64
		ok    bool
	}{
		{"lower bound", 6400, true},
		{"upper bound", 14400, true},
		{"below band", 6399, false},
		{"above band", 14401, false},
		{"mid band", 9500, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestServices(t)
			listing := newTestListing()
			listing.PricePerTon = tc.price

			err := svc.listings.CreateListing(context.Background(), listing)
			if tc.ok && err != nil {
				t.Fatalf("expected price %.2f accepted, got %v", tc.price, err)
			}
			if !tc.ok && !apperrors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("expected validation error for price %.2f, got %v", tc.price, err)
			}
		})
	}
}

func TestCreateListingUnbandedMetal(t *testing.T) {
	svc := newTestServices(t)

	listing := newTestListing()
	listing.Metal = models.MetalCobalt
	listing.PricePerTon = 1 // no reference band, any positive price

	if err := svc.listings.CreateListing(context.Background(), listing); err != nil {
		t.Fatalf("expected unbanded metal to accept any positive price, got %v", err)
	}
}

func TestCreateListingUnapprovedSeller(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	seller := &models.Party{ID: "SLR-100", Name: "Andes Mining", IsApproved: false}
	if err := svc.store.CreateParty(ctx, store.RoleSeller, seller); err != nil {
		t.Fatalf("creating seller: %v", err)
	}

	err := svc.listings.CreateListing(ctx, newTestListing())
	if !apperrors.Is(err, apperrors.ErrInvalidOperation) {
		t.Fatalf("expected operation error for unapproved seller, got %v", err)
	}
}

func TestUpdateListingStatus(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	listing := newTestListing()
	if err := svc.listings.CreateListing(ctx, listing); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	if err := svc.listings.UpdateListingStatus(ctx, listing.ID, models.ListingSold); err != nil {
		t.Fatalf("UpdateListingStatus failed: %v", err)
	}

	got, err := svc.store.GetListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got.Status != models.ListingSold {
		t.Errorf("expected %s, got %s", models.ListingSold, got.Status)
	}

	if err := svc.listings.UpdateListingStatus(ctx, listing.ID, "BOGUS"); !apperrors.Is(err, apperrors.ErrInvalidArgument) {
		t.Errorf("expected invalid argument error, got %v", err)
	}
	if err := svc.listings.UpdateListingStatus(ctx, "missing", models.ListingSold); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestGetAvailableListings(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	first := newTestListing()
	if err := svc.listings.CreateListing(ctx, first); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}
	second := newTestListing()
	second.Metal = models.MetalZinc
	second.PricePerTon = 3000
	if err := svc.listings.CreateListing(ctx, second); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}
	if err := svc.listings.UpdateListingStatus(ctx, second.ID, models.ListingWithdrawn); err != nil {
		t.Fatalf("UpdateListingStatus failed: %v", err)
	}

	available, err := svc.listings.GetAvailableListings(ctx)
	if err != nil {
		t.Fatalf("GetAvailableListings failed: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available listing, got %d", len(available))
	}
	if available[0].ID != first.ID {
		t.Errorf("expected listing %s, got %s", first.ID, available[0].ID)
	}
}

func TestExpireListings(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	stale := newTestListing()
	past := time.Now().Add(-24 * time.Hour)
	stale.ExpiryDate = &past
	if err := svc.listings.CreateListing(ctx, stale); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	fresh := newTestListing()
	if err := svc.listings.CreateListing(ctx, fresh); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	count, err := svc.listings.ExpireListings(ctx, time.Now())
	if err != nil {
		t.Fatalf("ExpireListings failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 expired listing, got %d", count)
	}

	got, err := svc.store.GetListing(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got.Status != models.ListingExpired {
		t.Errorf("expected %s, got %s", models.ListingExpired, got.Status)
	}
	kept, err := svc.store.GetListing(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if kept.Status != models.ListingAvailable {
		t.Errorf("expected fresh listing untouched, got %s", kept.Status)
	}
}
