package clearing

import (
	"context"
	"testing"

	apperrors "minex-clearing/internal/errors"
	"minex-clearing/internal/models"
)

func TestCreatePayment(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil) // total value 500,000

	payment := &models.Payment{TradeID: trade.ID, Amount: 200000, Description: "first installment"}
	if err := svc.payments.CreatePayment(ctx, payment); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if payment.ID == "" {
		t.Error("expected payment ID to be assigned")
	}
	if payment.PaymentDate.IsZero() {
		t.Error("expected payment date to default to now")
	}

	balance, err := svc.payments.GetOutstandingBalance(ctx, trade.ID)
	if err != nil {
		t.Fatalf("GetOutstandingBalance failed: %v", err)
	}
	if balance != 300000 {
		t.Errorf("expected outstanding balance 300000, got %.2f", balance)
	}
}

func TestPaymentExceedsTradeValue(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)

	if err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: 400000}); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	// 400,000 + 100,000.02 blows past the value by more than a cent.
	err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: 100000.02})
	if !apperrors.Is(err, apperrors.ErrInvalidOperation) {
		t.Fatalf("expected operation error for overpayment, got %v", err)
	}

	// Rejected payments leave the ledger unchanged.
	balance, err := svc.payments.GetOutstandingBalance(ctx, trade.ID)
	if err != nil {
		t.Fatalf("GetOutstandingBalance failed: %v", err)
	}
	if balance != 100000 {
		t.Errorf("expected balance 100000, got %.2f", balance)
	}
}

func TestPaymentWithinTolerance(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)

	// A cent over, absorbed by the rounding tolerance.
	err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: 500000.01})
	if err != nil {
		t.Fatalf("expected tolerance to accept 500000.01, got %v", err)
	}
}

func TestIsTradeFullyPaid(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)

	paid, err := svc.payments.IsTradeFullyPaid(ctx, trade.ID)
	if err != nil {
		t.Fatalf("IsTradeFullyPaid failed: %v", err)
	}
	if paid {
		t.Error("expected unpaid trade")
	}

	if err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: 250000}); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paid, err = svc.payments.IsTradeFullyPaid(ctx, trade.ID)
	if err != nil {
		t.Fatalf("IsTradeFullyPaid failed: %v", err)
	}
	if paid {
		t.Error("expected half-paid trade to not be fully paid")
	}

	if err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: 250000}); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paid, err = svc.payments.IsTradeFullyPaid(ctx, trade.ID)
	if err != nil {
		t.Fatalf("IsTradeFullyPaid failed: %v", err)
	}
	if !paid {
		t.Error("expected exact full payment to mark the trade fully paid")
	}

	balance, err := svc.payments.GetOutstandingBalance(ctx, trade.ID)
	if err != nil {
		t.Fatalf("GetOutstandingBalance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected zero balance, got %.2f", balance)
	}
}

func TestPaymentValidation(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	trade := mustCreateTrade(t, svc, nil)

	if err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: 0}); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for zero amount, got %v", err)
	}
	if err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: trade.ID, Amount: -50}); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for negative amount, got %v", err)
	}
	if err := svc.payments.CreatePayment(ctx, &models.Payment{TradeID: "missing", Amount: 100}); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found for unknown trade, got %v", err)
	}
}
