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

// PaymentLedger records payments against a trade and tracks
// full-payment status. Cumulative payments are hard-capped at the
// trade's total value, with ValueTolerance allowed for rounding.
type PaymentLedger struct {
	store  store.EntityStore
	logger zerolog.Logger
	audit  *audit.Logger
}

// NewPaymentLedger creates a payment ledger.
func NewPaymentLedger(st store.EntityStore, logger zerolog.Logger, auditLog *audit.Logger) *PaymentLedger {
	return &PaymentLedger{store: st, logger: logger, audit: auditLog}
}

// CreatePayment records a payment against a trade, rejecting any
// payment that would push the cumulative total past the trade value.
func (l *PaymentLedger) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := checkStruct(payment); err != nil {
		return err
	}

	trade, err := l.store.GetTrade(ctx, payment.TradeID)
	if err != nil {
		return err
	}
	if trade == nil {
		return apperrors.NewNotFoundError("trade", payment.TradeID)
	}

	paid, err := l.sumPayments(ctx, payment.TradeID)
	if err != nil {
		return err
	}
	if paid+payment.Amount > trade.TotalValue+ValueTolerance {
		return apperrors.NewOperationError("create payment", "trade", trade.ID,
			fmt.Sprintf("payment of %.2f would exceed trade value (%.2f paid of %.2f)",
				payment.Amount, paid, trade.TotalValue))
	}

	payment.ID = newID()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}

	if err := l.store.CreatePayment(ctx, payment); err != nil {
		return err
	}

	l.logger.Info().
		Str("payment_id", payment.ID).
		Str("trade_id", payment.TradeID).
		Float64("amount", payment.Amount).
		Float64("paid_to_date", paid+payment.Amount).
		Msg("Payment recorded")
	l.audit.LogTransition(ctx, audit.EventPaymentRecorded, payment.ID, payment.TradeID, map[string]interface{}{
		"amount": payment.Amount,
	})

	return nil
}

// IsTradeFullyPaid reports whether cumulative payments have reached
// the trade's total value, within tolerance.
func (l *PaymentLedger) IsTradeFullyPaid(ctx context.Context, tradeID string) (bool, error) {
	trade, err := l.store.GetTrade(ctx, tradeID)
	if err != nil {
		return false, err
	}
	if trade == nil {
		return false, apperrors.NewNotFoundError("trade", tradeID)
	}

	paid, err := l.sumPayments(ctx, tradeID)
	if err != nil {
		return false, err
	}
	return paid >= trade.TotalValue-ValueTolerance, nil
}

// GetOutstandingBalance returns trade value minus payments to date,
// floored at zero.
func (l *PaymentLedger) GetOutstandingBalance(ctx context.Context, tradeID string) (float64, error) {
	trade, err := l.store.GetTrade(ctx, tradeID)
	if err != nil {
		return 0, err
	}
	if trade == nil {
		return 0, apperrors.NewNotFoundError("trade", tradeID)
	}

	paid, err := l.sumPayments(ctx, tradeID)
	if err != nil {
		return 0, err
	}
	balance := trade.TotalValue - paid
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

func (l *PaymentLedger) sumPayments(ctx context.Context, tradeID string) (float64, error) {
	payments, err := l.store.GetPaymentsByTrade(ctx, tradeID)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, p := range payments {
		sum += p.Amount
	}
	return sum, nil
}
