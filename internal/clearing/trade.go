package clearing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"minex-clearing/internal/audit"
	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
	"minex-clearing/internal/store"
)

// TradeService validates, creates, and drives the state machine of a
// trade. Cross-entity side effects (margin, settlement, warrant,
// payment records) belong to their own components.
type TradeService struct {
	store  store.EntityStore
	logger zerolog.Logger
	audit  *audit.Logger
}

// NewTradeService creates a trade lifecycle service.
func NewTradeService(st store.EntityStore, logger zerolog.Logger, auditLog *audit.Logger) *TradeService {
	return &TradeService{store: st, logger: logger, audit: auditLog}
}

// CreateTrade validates and persists a new trade in Pending status.
// Validation is fail-fast: the first violated rule is reported and
// nothing is written.
func (s *TradeService) CreateTrade(ctx context.Context, trade *models.Trade) error {
	if err := checkStruct(trade); err != nil {
		return err
	}

	if strings.EqualFold(strings.TrimSpace(trade.BuyerName), strings.TrimSpace(trade.SellerName)) {
		return apperrors.NewValidationError("SellerName", trade.SellerName,
			"buyer and seller must be distinct parties")
	}

	value := trade.Value()
	if value < MinTradeValue {
		return apperrors.NewValidationError("TotalValue", value,
			fmt.Sprintf("trade value below minimum of %.2f", MinTradeValue))
	}

	if !trade.DeliveryDate.After(time.Now()) {
		return apperrors.NewValidationError("DeliveryDate", trade.DeliveryDate,
			"delivery date must be in the future")
	}

	// An explicit total must match quantity x price; a zero total is
	// derived, never auto-corrected from a wrong one.
	if trade.TotalValue == 0 {
		trade.TotalValue = value
	} else if diff := trade.TotalValue - value; diff > ValueTolerance || diff < -ValueTolerance {
		return apperrors.NewValidationError("TotalValue", trade.TotalValue,
			fmt.Sprintf("does not match quantity x price (%.2f)", value))
	}

	if err := s.checkPartyApproved(ctx, store.RoleBuyer, trade.BuyerName); err != nil {
		return err
	}
	if err := s.checkPartyApproved(ctx, store.RoleSeller, trade.SellerName); err != nil {
		return err
	}

	now := time.Now()
	trade.ID = newID()
	trade.TradeDate = now
	if trade.TradeNumber == "" {
		trade.TradeNumber = newReference("TRD", now)
	}
	trade.Status = models.TradePending
	trade.CreatedAt = now
	trade.UpdatedAt = now

	if err := s.store.CreateTrade(ctx, trade); err != nil {
		return err
	}

	s.logger.Info().
		Str("trade_id", trade.ID).
		Str("trade_number", trade.TradeNumber).
		Str("metal", string(trade.Metal)).
		Float64("quantity", trade.Quantity).
		Float64("total_value", trade.TotalValue).
		Msg("Trade created")
	s.audit.LogTransition(ctx, audit.EventTradeCreated, trade.ID, trade.ID, map[string]interface{}{
		"trade_number": trade.TradeNumber,
		"buyer":        trade.BuyerName,
		"seller":       trade.SellerName,
		"total_value":  trade.TotalValue,
	})

	return nil
}

// checkPartyApproved blocks creation when a matching counterparty
// record exists and is unapproved. Unknown names pass.
func (s *TradeService) checkPartyApproved(ctx context.Context, role store.PartyRole, name string) error {
	party, err := s.store.GetPartyByName(ctx, role, name)
	if err != nil {
		return apperrors.Wrapf(err, "checking %s approval", strings.ToLower(string(role)))
	}
	if party != nil && !party.IsApproved {
		return apperrors.NewOperationError("create trade", strings.ToLower(string(role)), party.ID,
			fmt.Sprintf("%s %q is not approved", strings.ToLower(string(role)), name))
	}
	return nil
}

// GetTrade returns the trade or a NotFoundError.
func (s *TradeService) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	trade, err := s.store.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperrors.NewNotFoundError("trade", id)
	}
	return trade, nil
}

// transition loads the trade, enforces the state-machine guard, applies
// mutate, and writes back.
func (s *TradeService) transition(ctx context.Context, id string, next models.TradeStatus, mutate func(*models.Trade)) (*models.Trade, error) {
	trade, err := s.GetTrade(ctx, id)
	if err != nil {
		return nil, err
	}

	if !trade.Status.CanTransitionTo(next) {
		return nil, apperrors.NewStateError("trade", id, string(trade.Status), string(next))
	}

	trade.Status = next
	if mutate != nil {
		mutate(trade)
	}
	if err := s.store.UpdateTrade(ctx, trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// ConfirmTrade moves a Pending trade to Confirmed.
func (s *TradeService) ConfirmTrade(ctx context.Context, id string) error {
	trade, err := s.transition(ctx, id, models.TradeConfirmed, nil)
	if err != nil {
		return err
	}

	s.logger.Info().Str("trade_id", id).Str("trade_number", trade.TradeNumber).Msg("Trade confirmed")
	s.audit.LogTransition(ctx, audit.EventTradeConfirmed, id, id, nil)
	return nil
}

// NovateTrade assigns a Confirmed trade to central clearing: the
// clearing house becomes legal counterparty to both sides.
func (s *TradeService) NovateTrade(ctx context.Context, id string) error {
	trade, err := s.GetTrade(ctx, id)
	if err != nil {
		return err
	}
	if trade.IsNovated {
		return apperrors.NewOperationError("novate", "trade", id, "trade is already novated")
	}

	now := time.Now()
	trade, err = s.transition(ctx, id, models.TradeNovated, func(t *models.Trade) {
		t.IsNovated = true
		t.NovationDate = &now
		t.ClearingRef = newReference("CCP", now)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("trade_id", id).
		Str("clearing_ref", trade.ClearingRef).
		Msg("Trade novated to central clearing")
	s.audit.LogTransition(ctx, audit.EventTradeNovated, id, id, map[string]interface{}{
		"clearing_ref": trade.ClearingRef,
	})
	return nil
}

// ActivateTrade moves a MarginCollected trade to Active.
func (s *TradeService) ActivateTrade(ctx context.Context, id string) error {
	if _, err := s.transition(ctx, id, models.TradeActive, nil); err != nil {
		return err
	}
	s.logger.Info().Str("trade_id", id).Msg("Trade activated")
	s.audit.LogTransition(ctx, audit.EventTradeActivated, id, id, nil)
	return nil
}

// CompleteTrade moves a Settled trade to its terminal Completed state.
func (s *TradeService) CompleteTrade(ctx context.Context, id string) error {
	if _, err := s.transition(ctx, id, models.TradeCompleted, nil); err != nil {
		return err
	}
	s.logger.Info().Str("trade_id", id).Msg("Trade completed")
	s.audit.LogTransition(ctx, audit.EventTradeCompleted, id, id, nil)
	return nil
}

// CancelTrade cancels a trade that has not settled, appending the
// reason to its notes. Settled and Completed trades reject cancellation.
func (s *TradeService) CancelTrade(ctx context.Context, id, reason string) error {
	trade, err := s.transition(ctx, id, models.TradeCancelled, func(t *models.Trade) {
		note := "Cancelled: " + reason
		if t.Notes != "" {
			t.Notes += "\n"
		}
		t.Notes += note
	})
	if err != nil {
		return err
	}

	s.logger.Warn().
		Str("trade_id", id).
		Str("trade_number", trade.TradeNumber).
		Str("reason", reason).
		Msg("Trade cancelled")
	s.audit.LogTransition(ctx, audit.EventTradeCancelled, id, id, map[string]interface{}{
		"reason": reason,
	})
	return nil
}

// DeleteTrade removes a trade that is not financially committed.
// Settled and Completed trades cannot be deleted.
func (s *TradeService) DeleteTrade(ctx context.Context, id string) error {
	trade, err := s.GetTrade(ctx, id)
	if err != nil {
		return err
	}
	if trade.Status == models.TradeSettled || trade.Status == models.TradeCompleted {
		return apperrors.NewOperationError("delete", "trade", id,
			fmt.Sprintf("cannot delete a %s trade", strings.ToLower(string(trade.Status))))
	}

	removed, err := s.store.DeleteTrade(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewNotFoundError("trade", id)
	}

	s.logger.Warn().Str("trade_id", id).Msg("Trade deleted")
	s.audit.LogTransition(ctx, audit.EventTradeDeleted, id, id, nil)
	return nil
}
