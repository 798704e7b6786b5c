package clearing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"minex-clearing/internal/audit"
	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
)

// MarginEngine computes initial and variation margin obligations tied
// to a trade. Each calculation event produces a new Margin record;
// records are never netted against each other.
type MarginEngine struct {
	store      store.EntityStore
	logger     zerolog.Logger
	audit      *audit.Logger
	defaultPct float64
}

// NewMarginEngine creates a margin engine with the default initial
// margin percentage.
func NewMarginEngine(st store.EntityStore, logger zerolog.Logger, auditLog *audit.Logger) *MarginEngine {
	return &MarginEngine{
		store:      st,
		logger:     logger,
		audit:      auditLog,
		defaultPct: DefaultInitialMarginPct,
	}
}

// SetDefaultPercentage overrides the default initial margin rate.
func (e *MarginEngine) SetDefaultPercentage(pct float64) {
	e.defaultPct = pct
}

// CalculateInitialMargin computes the upfront collateral for a novated
// trade and advances it to MarginCollected. A zero marginPct applies
// the engine default; valid rates are in (0, 0.5].
func (e *MarginEngine) CalculateInitialMargin(ctx context.Context, tradeID string, marginPct float64) (*models.Margin, error) {
	if marginPct == 0 {
		marginPct = e.defaultPct
	}
	if marginPct <= 0 || marginPct > MaxInitialMarginPct {
		return nil, apperrors.NewValidationError("marginPercentage", marginPct,
			fmt.Sprintf("must be in (0, %.2f]", MaxInitialMarginPct))
	}

	trade, err := e.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperrors.NewNotFoundError("trade", tradeID)
	}
	if !trade.Status.CanTransitionTo(models.TradeMarginCollected) {
		return nil, apperrors.NewStateError("trade", tradeID,
			string(trade.Status), string(models.TradeMarginCollected))
	}

	amount := trade.TotalValue * marginPct
	margin := &models.Margin{
		ID:            newID(),
		TradeID:       trade.ID,
		TradeNumber:   trade.TradeNumber,
		InitialMargin: amount,
		TotalMargin:   amount,
		MarginDate:    time.Now(),
		MarketPrice:   trade.PricePerTon,
		PayingParty:   trade.BuyerName,
		Payable:       true,
		Status:        models.MarginRequired,
	}

	// Margin record and trade transition commit as one unit.
	err = e.store.WithTx(ctx, func(tx store.EntityStore) error {
		if err := tx.CreateMargin(ctx, margin); err != nil {
			return err
		}
		trade.Status = models.TradeMarginCollected
		return tx.UpdateTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("trade_id", tradeID).
		Float64("initial_margin", amount).
		Float64("rate", marginPct).
		Msg("Initial margin calculated")
	e.audit.LogTransition(ctx, audit.EventInitialMargin, margin.ID, tradeID, map[string]interface{}{
		"amount": amount,
		"rate":   marginPct,
	})

	return margin, nil
}

// CalculateVariationMargin records the mark-to-market obligation for a
// trade at the given market price. The trade's own price is a struck
// contract term and is never repriced; the margin record is a
// snapshot obligation.
func (e *MarginEngine) CalculateVariationMargin(ctx context.Context, tradeID string, currentMarketPrice float64) (*models.Margin, error) {
	if currentMarketPrice <= 0 {
		return nil, apperrors.NewValidationError("currentMarketPrice", currentMarketPrice,
			"market price must be positive")
	}

	trade, err := e.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperrors.NewNotFoundError("trade", tradeID)
	}

	priceChange := currentMarketPrice - trade.PricePerTon
	variation := math.Abs(priceChange * trade.Quantity)

	var payer string
	switch {
	case priceChange > 0:
		payer = trade.BuyerName
	case priceChange < 0:
		payer = trade.SellerName
	}

	margin := &models.Margin{
		ID:              newID(),
		TradeID:         trade.ID,
		TradeNumber:     trade.TradeNumber,
		VariationMargin: variation,
		TotalMargin:     variation,
		MarginDate:      time.Now(),
		MarketPrice:     currentMarketPrice,
		PriceChange:     priceChange,
		PayingParty:     payer,
		Payable:         variation > 0,
		Status:          models.MarginRequired,
	}

	if err := e.store.CreateMargin(ctx, margin); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("trade_id", tradeID).
		Float64("market_price", currentMarketPrice).
		Float64("price_change", priceChange).
		Float64("variation_margin", variation).
		Str("paying_party", payer).
		Msg("Variation margin calculated")
	e.audit.LogTransition(ctx, audit.EventVariationMargin, margin.ID, tradeID, map[string]interface{}{
		"amount": variation,
		"payer":  payer,
	})

	return margin, nil
}

// GetTotalMarginRequirement sums total margin across all margin
// records for the trade.
func (e *MarginEngine) GetTotalMarginRequirement(ctx context.Context, tradeID string) (float64, error) {
	trade, err := e.store.GetTrade(ctx, tradeID)
	if err != nil {
		return 0, err
	}
	if trade == nil {
		return 0, apperrors.NewNotFoundError("trade", tradeID)
	}

	margins, err := e.store.GetMarginsByTrade(ctx, tradeID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, m := range margins {
		total += m.TotalMargin
	}
	return total, nil
}
