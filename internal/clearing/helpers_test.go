package clearing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
)

// newTestStore creates a SQLite store backed by a temp file.
func newTestStore(t *testing.T) store.EntityStore {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "clearing_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

type testServices struct {
	store       store.EntityStore
	listings    *ListingService
	trades      *TradeService
	margins     *MarginEngine
	warrants    *WarrantRegistry
	settlements *SettlementService
	payments    *PaymentLedger
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	st := newTestStore(t)
	logger := zerolog.Nop()
	return &testServices{
		store:       st,
		listings:    NewListingService(st, nil, logger, nil),
		trades:      NewTradeService(st, logger, nil),
		margins:     NewMarginEngine(st, logger, nil),
		warrants:    NewWarrantRegistry(st, logger, nil),
		settlements: NewSettlementService(st, logger, nil),
		payments:    NewPaymentLedger(st, logger, nil),
	}
}

// newTestTrade returns a valid copper trade: 100 t at 5,000/t.
func newTestTrade() *models.Trade {
	return &models.Trade{
		BuyerName:    "Acme Metals",
		SellerName:   "Andes Mining",
		Metal:        models.MetalCopper,
		Quantity:     100,
		PricePerTon:  5000,
		DeliveryDate: time.Now().AddDate(0, 1, 0),
	}
}

// mustCreateTrade creates the trade or fails the test.
func mustCreateTrade(t *testing.T, svc *testServices, trade *models.Trade) *models.Trade {
	t.Helper()

	if trade == nil {
		trade = newTestTrade()
	}
	if err := svc.trades.CreateTrade(context.Background(), trade); err != nil {
		t.Fatalf("CreateTrade failed: %v", err)
	}
	return trade
}

// advanceTrade walks a freshly created trade forward to target status
// through the real operations.
func advanceTrade(t *testing.T, svc *testServices, tradeID string, target models.TradeStatus) {
	t.Helper()
	ctx := context.Background()

	steps := []struct {
		status models.TradeStatus
		run    func() error
	}{
		{models.TradeConfirmed, func() error { return svc.trades.ConfirmTrade(ctx, tradeID) }},
		{models.TradeNovated, func() error { return svc.trades.NovateTrade(ctx, tradeID) }},
		{models.TradeMarginCollected, func() error {
			_, err := svc.margins.CalculateInitialMargin(ctx, tradeID, 0)
			return err
		}},
		{models.TradeActive, func() error { return svc.trades.ActivateTrade(ctx, tradeID) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("advancing trade to %s: %v", step.status, err)
		}
		if step.status == target {
			return
		}
	}
	if target != models.TradeActive {
		t.Fatalf("cannot advance trade to %s", target)
	}
}

// newTestWarehouse persists a warehouse and returns it.
func newTestWarehouse(t *testing.T, svc *testServices, capacity float64, approved bool) *models.Warehouse {
	t.Helper()

	now := time.Now()
	warehouse := &models.Warehouse{
		ID:              "WH-" + t.Name(),
		Code:            "RTM01",
		Operator:        "Port Storage BV",
		Location:        "Rotterdam",
		Country:         "Netherlands",
		StorageCapacity: capacity,
		IsApproved:      approved,
		Status:          "OPERATIONAL",
	}
	if approved {
		warehouse.ApprovalDate = &now
	}
	if err := svc.store.CreateWarehouse(context.Background(), warehouse); err != nil {
		t.Fatalf("creating warehouse: %v", err)
	}
	return warehouse
}

func getTrade(t *testing.T, svc *testServices, id string) *models.Trade {
	t.Helper()

	trade, err := svc.store.GetTrade(context.Background(), id)
	if err != nil {
		t.Fatalf("GetTrade failed: %v", err)
	}
	if trade == nil {
		t.Fatalf("trade %s not found", id)
	}
	return trade
}
