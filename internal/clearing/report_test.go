package clearing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"minex-clearing/internal/models"
)

func TestBuildExposureReport(t *testing.T) {
	svc := newTestServices(t)
	reports := NewReportService(svc.store, zerolog.Nop())
	ctx := context.Background()

	// One active trade with initial margin collected.
	active := mustCreateTrade(t, svc, nil) // copper, 500,000
	advanceTrade(t, svc, active.ID, models.TradeActive)

	// One settled trade.
	done := newTestTrade()
	done.Metal = models.MetalZinc
	done.PricePerTon = 3000
	mustCreateTrade(t, svc, done)
	advanceTrade(t, svc, done.ID, models.TradeActive)
	settlement, err := svc.settlements.ProcessCashSettlement(ctx, done.ID, 3000)
	if err != nil {
		t.Fatalf("ProcessCashSettlement failed: %v", err)
	}
	if err := svc.settlements.CompleteSettlement(ctx, settlement.ID); err != nil {
		t.Fatalf("CompleteSettlement failed: %v", err)
	}

	// One cancelled trade carries no exposure.
	dead := newTestTrade()
	mustCreateTrade(t, svc, dead)
	if err := svc.trades.CancelTrade(ctx, dead.ID, "fat finger"); err != nil {
		t.Fatalf("CancelTrade failed: %v", err)
	}

	report, err := reports.BuildExposureReport(ctx)
	if err != nil {
		t.Fatalf("BuildExposureReport failed: %v", err)
	}

	if report.OpenTrades != 1 {
		t.Errorf("expected 1 open trade, got %d", report.OpenTrades)
	}
	if report.OpenExposure != 500000 {
		t.Errorf("expected open exposure 500000, got %.2f", report.OpenExposure)
	}
	// Initial margin at the 10% default on the active trade.
	if report.MarginHeld != 50000 {
		t.Errorf("expected margin held 50000, got %.2f", report.MarginHeld)
	}
	if report.SettledValue != 300000 {
		t.Errorf("expected settled value 300000, got %.2f", report.SettledValue)
	}

	copper := report.ByMetal[models.MetalCopper]
	if copper.Trades != 1 || copper.Quantity != 100 || copper.Value != 500000 {
		t.Errorf("unexpected copper exposure: %+v", copper)
	}
	if _, ok := report.ByMetal[models.MetalZinc]; ok {
		t.Error("settled zinc trade should carry no open exposure")
	}

	if report.TradesByStatus[models.TradeCancelled] != 1 {
		t.Errorf("expected 1 cancelled trade, got %d", report.TradesByStatus[models.TradeCancelled])
	}
}
