package clearing

import (
	"context"
	"testing"

	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
)

func TestCalculateInitialMargin(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil) // 100 t x 5,000 = 500,000
	advanceTrade(t, svc, trade.ID, models.TradeNovated)

	margin, err := svc.margins.CalculateInitialMargin(ctx, trade.ID, 0.10)
	if err != nil {
		t.Fatalf("CalculateInitialMargin failed: %v", err)
	}

	if margin.InitialMargin != 50000 {
		t.Errorf("expected initial margin 50000, got %.2f", margin.InitialMargin)
	}
	if margin.TotalMargin != 50000 {
		t.Errorf("expected total margin 50000, got %.2f", margin.TotalMargin)
	}
	if margin.PayingParty != trade.BuyerName {
		t.Errorf("expected buyer %q to pay, got %q", trade.BuyerName, margin.PayingParty)
	}
	if !margin.Payable {
		t.Error("expected initial margin to be payable")
	}

	if got := getTrade(t, svc, trade.ID); got.Status != models.TradeMarginCollected {
		t.Errorf("expected trade status %s, got %s", models.TradeMarginCollected, got.Status)
	}
}

func TestInitialMarginDefaultRate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	advanceTrade(t, svc, trade.ID, models.TradeNovated)

	margin, err := svc.margins.CalculateInitialMargin(ctx, trade.ID, 0)
	if err != nil {
		t.Fatalf("CalculateInitialMargin failed: %v", err)
	}
	want := trade.TotalValue * DefaultInitialMarginPct
	if margin.InitialMargin != want {
		t.Errorf("expected default-rate margin %.2f, got %.2f", want, margin.InitialMargin)
	}
}

func TestInitialMarginRateBounds(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	advanceTrade(t, svc, trade.ID, models.TradeNovated)

	for _, pct := range []float64{-0.05, 0.51, 1.0} {
		if _, err := svc.margins.CalculateInitialMargin(ctx, trade.ID, pct); !apperrors.Is(err, apperrors.ErrValidation) {
			t.Errorf("rate %.2f: expected validation error, got %v", pct, err)
		}
	}

	// 50% is the inclusive upper bound.
	if _, err := svc.margins.CalculateInitialMargin(ctx, trade.ID, 0.50); err != nil {
		t.Errorf("rate 0.50: expected success, got %v", err)
	}
}

func TestInitialMarginRequiresNovation(t *testing.T) {
	svc := newTestServices(t)

	trade := mustCreateTrade(t, svc, nil)
	_, err := svc.margins.CalculateInitialMargin(context.Background(), trade.ID, 0.10)
	if !apperrors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected state error on a pending trade, got %v", err)
	}
}

func TestCalculateVariationMargin(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil) // struck at 5,000/t, 100 t
	advanceTrade(t, svc, trade.ID, models.TradeActive)

	tests := []struct {
		name        string
		marketPrice float64
		wantAmount  float64
		wantPayer   string
		wantPayable bool
	}{
		{"price up, buyer pays", 5500, 50000, trade.BuyerName, true},
		{"price down, seller pays", 4500, 50000, trade.SellerName, true},
		{"flat market, nothing owed", 5000, 0, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			margin, err := svc.margins.CalculateVariationMargin(ctx, trade.ID, tc.marketPrice)
			if err != nil {
				t.Fatalf("CalculateVariationMargin failed: %v", err)
			}
			if margin.VariationMargin != tc.wantAmount {
				t.Errorf("expected variation %.2f, got %.2f", tc.wantAmount, margin.VariationMargin)
			}
			if margin.PayingParty != tc.wantPayer {
				t.Errorf("expected payer %q, got %q", tc.wantPayer, margin.PayingParty)
			}
			if margin.Payable != tc.wantPayable {
				t.Errorf("expected payable=%v, got %v", tc.wantPayable, margin.Payable)
			}
		})
	}

	// The trade's struck price never moves with the market.
	if got := getTrade(t, svc, trade.ID); got.PricePerTon != 5000 {
		t.Errorf("expected struck price 5000 untouched, got %.2f", got.PricePerTon)
	}
}

func TestVariationMarginInvalidPrice(t *testing.T) {
	svc := newTestServices(t)

	trade := mustCreateTrade(t, svc, nil)
	_, err := svc.margins.CalculateVariationMargin(context.Background(), trade.ID, 0)
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for zero market price, got %v", err)
	}
}

func TestGetTotalMarginRequirement(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	advanceTrade(t, svc, trade.ID, models.TradeNovated)

	if _, err := svc.margins.CalculateInitialMargin(ctx, trade.ID, 0.10); err != nil {
		t.Fatalf("CalculateInitialMargin failed: %v", err)
	}
	// Market moves 200/t against the buyer: 20,000 variation.
	if _, err := svc.margins.CalculateVariationMargin(ctx, trade.ID, 5200); err != nil {
		t.Fatalf("CalculateVariationMargin failed: %v", err)
	}

	total, err := svc.margins.GetTotalMarginRequirement(ctx, trade.ID)
	if err != nil {
		t.Fatalf("GetTotalMarginRequirement failed: %v", err)
	}
	if total != 70000 {
		t.Errorf("expected total requirement 70000, got %.2f", total)
	}
}

func TestMarginUnknownTrade(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	if _, err := svc.margins.CalculateInitialMargin(ctx, "missing", 0.10); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("initial: expected not found, got %v", err)
	}
	if _, err := svc.margins.CalculateVariationMargin(ctx, "missing", 5000); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("variation: expected not found, got %v", err)
	}
	if _, err := svc.margins.GetTotalMarginRequirement(ctx, "missing"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("total: expected not found, got %v", err)
	}
}
