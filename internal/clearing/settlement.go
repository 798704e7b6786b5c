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

// SettlementService finalizes trades via physical delivery or cash
// settlement. Completing a settlement is the sole path by which a
// trade reaches Settled.
type SettlementService struct {
	store  store.EntityStore
	logger zerolog.Logger
	audit  *audit.Logger
}

// NewSettlementService creates a settlement processor.
func NewSettlementService(st store.EntityStore, logger zerolog.Logger, auditLog *audit.Logger) *SettlementService {
	return &SettlementService{store: st, logger: logger, audit: auditLog}
}

// ProcessPhysicalSettlement opens a physical-delivery settlement
// linking the warrant and warehouse location to the trade.
func (s *SettlementService) ProcessPhysicalSettlement(ctx context.Context, tradeID, warrantNumber, warehouseLocation string) (*models.Settlement, error) {
	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperrors.NewNotFoundError("trade", tradeID)
	}

	now := time.Now()
	settlement := &models.Settlement{
		ID:                newID(),
		SettlementNumber:  newReference("SET", now),
		TradeID:           trade.ID,
		TradeNumber:       trade.TradeNumber,
		Type:              models.PhysicalDelivery,
		SettlementDate:    now,
		SettlementAmount:  trade.TotalValue,
		BuyerName:         trade.BuyerName,
		SellerName:        trade.SellerName,
		Metal:             trade.Metal,
		Quantity:          trade.Quantity,
		WarrantNumber:     warrantNumber,
		WarehouseLocation: warehouseLocation,
		FinalPrice:        trade.PricePerTon,
		Status:            models.SettlementProcessing,
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("settlement_id", settlement.ID).
		Str("trade_id", tradeID).
		Str("warrant_number", warrantNumber).
		Msg("Physical settlement opened")
	s.audit.LogTransition(ctx, audit.EventSettlementCreated, settlement.ID, tradeID, map[string]interface{}{
		"type":           string(models.PhysicalDelivery),
		"warrant_number": warrantNumber,
	})

	return settlement, nil
}

// ProcessCashSettlement opens a cash settlement for the price
// difference between the struck price and the final price.
func (s *SettlementService) ProcessCashSettlement(ctx context.Context, tradeID string, finalPrice float64) (*models.Settlement, error) {
	if finalPrice <= 0 {
		return nil, apperrors.NewValidationError("finalPrice", finalPrice,
			"final price must be positive")
	}

	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperrors.NewNotFoundError("trade", tradeID)
	}

	priceDiff := finalPrice - trade.PricePerTon
	amount := math.Abs(priceDiff) * trade.Quantity

	var note string
	switch {
	case priceDiff > 0:
		note = fmt.Sprintf("Buyer pays %.2f to settle price difference", amount)
	case priceDiff < 0:
		note = fmt.Sprintf("Seller pays %.2f to settle price difference", amount)
	default:
		note = "No price movement; no cash obligation"
	}

	now := time.Now()
	settlement := &models.Settlement{
		ID:               newID(),
		SettlementNumber: newReference("SET", now),
		TradeID:          trade.ID,
		TradeNumber:      trade.TradeNumber,
		Type:             models.CashSettlement,
		SettlementDate:   now,
		SettlementAmount: amount,
		BuyerName:        trade.BuyerName,
		SellerName:       trade.SellerName,
		FinalPrice:       finalPrice,
		PriceDifference:  priceDiff,
		Status:           models.SettlementProcessing,
		Notes:            note,
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("settlement_id", settlement.ID).
		Str("trade_id", tradeID).
		Float64("final_price", finalPrice).
		Float64("amount", amount).
		Msg("Cash settlement opened")
	s.audit.LogTransition(ctx, audit.EventSettlementCreated, settlement.ID, tradeID, map[string]interface{}{
		"type":   string(models.CashSettlement),
		"amount": amount,
	})

	return settlement, nil
}

// CompleteSettlement marks the settlement completed and moves the
// owning trade to Settled, as one transaction. A second completion
// call on the same settlement is rejected.
func (s *SettlementService) CompleteSettlement(ctx context.Context, id string) error {
	settlement, err := s.store.GetSettlement(ctx, id)
	if err != nil {
		return err
	}
	if settlement == nil {
		return apperrors.NewNotFoundError("settlement", id)
	}
	if settlement.IsCompleted {
		return apperrors.NewStateError("settlement", id,
			string(settlement.Status), "complete")
	}

	trade, err := s.store.GetTrade(ctx, settlement.TradeID)
	if err != nil {
		return err
	}
	if trade == nil {
		return apperrors.NewNotFoundError("trade", settlement.TradeID)
	}
	if !trade.Status.CanTransitionTo(models.TradeSettled) {
		return apperrors.NewStateError("trade", trade.ID,
			string(trade.Status), string(models.TradeSettled))
	}

	now := time.Now()
	settlement.IsCompleted = true
	settlement.CompletionDate = &now
	settlement.Status = models.SettlementCompleted
	trade.Status = models.TradeSettled

	err = s.store.WithTx(ctx, func(tx store.EntityStore) error {
		if err := tx.UpdateSettlement(ctx, settlement); err != nil {
			return err
		}
		return tx.UpdateTrade(ctx, trade)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("settlement_id", id).
		Str("trade_id", trade.ID).
		Msg("Settlement completed, trade settled")
	s.audit.LogTransition(ctx, audit.EventSettlementCompleted, id, trade.ID, nil)

	return nil
}
