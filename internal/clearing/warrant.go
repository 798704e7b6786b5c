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

// WarrantRegistry issues and transfers warehouse receipts backing
// physical quantities.
type WarrantRegistry struct {
	store  store.EntityStore
	logger zerolog.Logger
	audit  *audit.Logger
}

// NewWarrantRegistry creates a warrant registry.
func NewWarrantRegistry(st store.EntityStore, logger zerolog.Logger, auditLog *audit.Logger) *WarrantRegistry {
	return &WarrantRegistry{store: st, logger: logger, audit: auditLog}
}

// CreateWarrant issues a warrant against an LME-approved warehouse
// with sufficient free capacity. Issuance consumes warehouse capacity:
// the warrant quantity is added to the warehouse's current stock in
// the same transaction.
func (r *WarrantRegistry) CreateWarrant(ctx context.Context, warrant *models.Warrant) error {
	if err := checkStruct(warrant); err != nil {
		return err
	}

	warehouse, err := r.store.GetWarehouse(ctx, warrant.WarehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return apperrors.NewNotFoundError("warehouse", warrant.WarehouseID)
	}
	if !warehouse.IsApproved {
		return apperrors.NewOperationError("create warrant", "warehouse", warehouse.ID,
			"warehouse is not LME approved")
	}
	if warehouse.AvailableCapacity() < warrant.Quantity {
		return apperrors.NewOperationError("create warrant", "warehouse", warehouse.ID,
			fmt.Sprintf("insufficient free capacity: %.2ft available, %.2ft requested",
				warehouse.AvailableCapacity(), warrant.Quantity))
	}

	now := time.Now()
	warrant.ID = newID()
	warrant.IssueDate = now
	if warrant.WarrantNumber == "" {
		warrant.WarrantNumber = newReference("WRN", now)
	}
	warrant.WarehouseName = warehouse.Operator
	warrant.IsActive = true
	warrant.Status = models.WarrantIssued

	err = r.store.WithTx(ctx, func(tx store.EntityStore) error {
		if err := tx.CreateWarrant(ctx, warrant); err != nil {
			return err
		}
		warehouse.CurrentStock += warrant.Quantity
		return tx.UpdateWarehouse(ctx, warehouse)
	})
	if err != nil {
		return err
	}

	r.logger.Info().
		Str("warrant_id", warrant.ID).
		Str("warrant_number", warrant.WarrantNumber).
		Str("warehouse_id", warehouse.ID).
		Float64("quantity", warrant.Quantity).
		Msg("Warrant issued")
	r.audit.LogTransition(ctx, audit.EventWarrantIssued, warrant.ID, warrant.TradeID, map[string]interface{}{
		"warrant_number": warrant.WarrantNumber,
		"warehouse_id":   warehouse.ID,
		"quantity":       warrant.Quantity,
	})

	return nil
}

// VerifyWarehouseCapacity reports whether the warehouse has enough
// free capacity (capacity minus current stock) for the quantity.
func (r *WarrantRegistry) VerifyWarehouseCapacity(ctx context.Context, warehouseID string, quantity float64) (bool, error) {
	warehouse, err := r.store.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return false, err
	}
	if warehouse == nil {
		return false, apperrors.NewNotFoundError("warehouse", warehouseID)
	}
	return warehouse.AvailableCapacity() >= quantity, nil
}

// TransferWarrant moves ownership to newOwner, shifting the current
// owner into the previous-owner slot and appending a transfer record
// to the custody chain.
func (r *WarrantRegistry) TransferWarrant(ctx context.Context, id, newOwner string) error {
	newOwner = strings.TrimSpace(newOwner)
	if newOwner == "" {
		return apperrors.NewValidationError("newOwner", newOwner, "new owner is required")
	}

	warrant, err := r.store.GetWarrant(ctx, id)
	if err != nil {
		return err
	}
	if warrant == nil {
		return apperrors.NewNotFoundError("warrant", id)
	}
	if strings.EqualFold(newOwner, warrant.CurrentOwner) {
		return apperrors.NewOperationError("transfer", "warrant", id,
			"new owner cannot be the same as current owner")
	}

	now := time.Now()
	fromOwner := warrant.CurrentOwner
	warrant.PreviousOwner = fromOwner
	warrant.CurrentOwner = newOwner
	warrant.TransferDate = &now
	warrant.Status = models.WarrantTransferred

	transfer := &models.WarrantTransfer{
		ID:         newID(),
		WarrantID:  warrant.ID,
		FromOwner:  fromOwner,
		ToOwner:    newOwner,
		TransferAt: now,
	}

	err = r.store.WithTx(ctx, func(tx store.EntityStore) error {
		if err := tx.UpdateWarrant(ctx, warrant); err != nil {
			return err
		}
		return tx.CreateWarrantTransfer(ctx, transfer)
	})
	if err != nil {
		return err
	}

	r.logger.Info().
		Str("warrant_id", id).
		Str("from", fromOwner).
		Str("to", newOwner).
		Msg("Warrant transferred")
	r.audit.LogTransition(ctx, audit.EventWarrantTransferred, id, warrant.TradeID, map[string]interface{}{
		"from": fromOwner,
		"to":   newOwner,
	})

	return nil
}

// GetTransferHistory returns the warrant's full chain of custody in
// transfer order.
func (r *WarrantRegistry) GetTransferHistory(ctx context.Context, warrantID string) ([]models.WarrantTransfer, error) {
	warrant, err := r.store.GetWarrant(ctx, warrantID)
	if err != nil {
		return nil, err
	}
	if warrant == nil {
		return nil, apperrors.NewNotFoundError("warrant", warrantID)
	}
	return r.store.GetWarrantTransfers(ctx, warrantID)
}
