package clearing

import (
	"context"
	"strings"
	"testing"

	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
)

func TestProcessPhysicalSettlement(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	advanceTrade(t, svc, trade.ID, models.TradeActive)

	settlement, err := svc.settlements.ProcessPhysicalSettlement(ctx, trade.ID, "WRN-20260828-AB12CD34", "Rotterdam")
	if err != nil {
		t.Fatalf("ProcessPhysicalSettlement failed: %v", err)
	}

	if settlement.Type != models.PhysicalDelivery {
		t.Errorf("expected type %s, got %s", models.PhysicalDelivery, settlement.Type)
	}
	if settlement.SettlementAmount != trade.TotalValue {
		t.Errorf("expected amount %.2f, got %.2f", trade.TotalValue, settlement.SettlementAmount)
	}
	if settlement.WarrantNumber == "" || settlement.WarehouseLocation != "Rotterdam" {
		t.Errorf("expected delivery details carried, got %q at %q",
			settlement.WarrantNumber, settlement.WarehouseLocation)
	}
	if settlement.Status != models.SettlementProcessing || settlement.IsCompleted {
		t.Errorf("expected open settlement, got status=%s completed=%v",
			settlement.Status, settlement.IsCompleted)
	}
	if !strings.HasPrefix(settlement.SettlementNumber, "SET-") {
		t.Errorf("unexpected settlement number %q", settlement.SettlementNumber)
	}
}

func TestProcessCashSettlement(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil) // 100 t struck at 5,000
	advanceTrade(t, svc, trade.ID, models.TradeActive)

	tests := []struct {
		name       string
		finalPrice float64
		wantAmount float64
		wantNote   string
	}{
		{"price rose", 5300, 30000, "Buyer pays"},
		{"price fell", 4800, 20000, "Seller pays"},
		{"price flat", 5000, 0, "No price movement"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settlement, err := svc.settlements.ProcessCashSettlement(ctx, trade.ID, tc.finalPrice)
			if err != nil {
				t.Fatalf("ProcessCashSettlement failed: %v", err)
			}
			if settlement.SettlementAmount != tc.wantAmount {
				t.Errorf("expected amount %.2f, got %.2f", tc.wantAmount, settlement.SettlementAmount)
			}
			if !strings.Contains(settlement.Notes, tc.wantNote) {
				t.Errorf("expected note containing %q, got %q", tc.wantNote, settlement.Notes)
			}
			if settlement.FinalPrice != tc.finalPrice {
				t.Errorf("expected final price %.2f, got %.2f", tc.finalPrice, settlement.FinalPrice)
			}
		})
	}
}

func TestProcessCashSettlementInvalidPrice(t *testing.T) {
	svc := newTestServices(t)

	trade := mustCreateTrade(t, svc, nil)
	_, err := svc.settlements.ProcessCashSettlement(context.Background(), trade.ID, -5)
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteSettlement(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	advanceTrade(t, svc, trade.ID, models.TradeActive)

	settlement, err := svc.settlements.ProcessCashSettlement(ctx, trade.ID, 5100)
	if err != nil {
		t.Fatalf("ProcessCashSettlement failed: %v", err)
	}

	if err := svc.settlements.CompleteSettlement(ctx, settlement.ID); err != nil {
		t.Fatalf("CompleteSettlement failed: %v", err)
	}

	got, err := svc.store.GetSettlement(ctx, settlement.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if !got.IsCompleted || got.CompletionDate == nil || got.Status != models.SettlementCompleted {
		t.Errorf("expected completed settlement, got completed=%v date=%v status=%s",
			got.IsCompleted, got.CompletionDate, got.Status)
	}

	if tr := getTrade(t, svc, trade.ID); tr.Status != models.TradeSettled {
		t.Errorf("expected trade %s, got %s", models.TradeSettled, tr.Status)
	}

	// Repeat completion is rejected.
	err = svc.settlements.CompleteSettlement(ctx, settlement.ID)
	if !apperrors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected state error on repeat completion, got %v", err)
	}
}

func TestCompleteSettlementTradeNotActive(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	// Settlement opened before the trade ever goes active.
	settlement, err := svc.settlements.ProcessCashSettlement(ctx, trade.ID, 5100)
	if err != nil {
		t.Fatalf("ProcessCashSettlement failed: %v", err)
	}

	err = svc.settlements.CompleteSettlement(ctx, settlement.ID)
	if !apperrors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected state error for pending trade, got %v", err)
	}
}

func TestSettledTradeCompletes(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)
	advanceTrade(t, svc, trade.ID, models.TradeActive)

	settlement, err := svc.settlements.ProcessPhysicalSettlement(ctx, trade.ID, "WRN-1", "Rotterdam")
	if err != nil {
		t.Fatalf("ProcessPhysicalSettlement failed: %v", err)
	}
	if err := svc.settlements.CompleteSettlement(ctx, settlement.ID); err != nil {
		t.Fatalf("CompleteSettlement failed: %v", err)
	}

	if err := svc.trades.CompleteTrade(ctx, trade.ID); err != nil {
		t.Fatalf("CompleteTrade failed: %v", err)
	}
	if tr := getTrade(t, svc, trade.ID); tr.Status != models.TradeCompleted {
		t.Errorf("expected %s, got %s", models.TradeCompleted, tr.Status)
	}
}

func TestSettlementUnknownTrade(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	if _, err := svc.settlements.ProcessPhysicalSettlement(ctx, "missing", "WRN-1", "Busan"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("physical: expected not found, got %v", err)
	}
	if _, err := svc.settlements.ProcessCashSettlement(ctx, "missing", 5000); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("cash: expected not found, got %v", err)
	}
	if err := svc.settlements.CompleteSettlement(ctx, "missing"); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("complete: expected not found, got %v", err)
	}
}
