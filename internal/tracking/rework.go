package tracking

import (
	"context"
	"strings"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"

	"go.uber.org/zap"
)

type ReworkRequest struct {
	OrderNumber  string
	PartNumber   string // optional
	Quantity     int
	Reason       string
	IsCompletion bool
	UserID       uint
	DeviceID     uint
}

type ReworkResult struct {
	OrderID   uint
	UnitID    uint
	NewStatus models.WipStatus
	Message   string
}

// Rework puts a unit on hold, or releases it back to production when the
// rework is completed. The order status is left alone.
func (e *Engine) Rework(ctx context.Context, req ReworkRequest) (*ReworkResult, error) {
	req.OrderNumber = strings.TrimSpace(req.OrderNumber)
	req.PartNumber = strings.TrimSpace(req.PartNumber)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.OrderNumber == "" {
		return nil, apperror.New(apperror.Validation, "order number is required")
	}
	if req.Quantity <= 0 {
		return nil, apperror.New(apperror.Validation, "quantity must be greater than zero")
	}

	now := e.opts.Now()

	var result *ReworkResult
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		a, err := resolveActor(tx, req.UserID, req.DeviceID)
		if err != nil {
			return err
		}
		order, unit, err := openUnit(tx, req.OrderNumber, req.PartNumber, false)
		if err != nil {
			return err
		}

		if err := tx.AppendReworkLog(&models.ReworkLog{
			WipItemID:  unit.ID,
			LocationID: a.device.LocationID,
			UserID:     a.user.ID,
			DeviceID:   a.device.ID,
			Qty:        req.Quantity,
			Reason:     req.Reason,
			Completed:  req.IsCompletion,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		status, msg := models.WipHold, "Unit put on hold for rework."
		if req.IsCompletion {
			status, msg = models.WipActive, "Rework completed, unit released."
		}
		if err := tx.SetWipStatus(unit, status); err != nil {
			return err
		}

		result = &ReworkResult{OrderID: order.ID, UnitID: unit.ID, NewStatus: status, Message: msg}
		return nil
	})
	if err != nil {
		e.logOutcome("Rework", err,
			zap.String("wo_number", req.OrderNumber),
			zap.Bool("completion", req.IsCompletion),
			zap.Uint("device_id", req.DeviceID),
		)
		return nil, err
	}

	e.logger.Info("Rework registered",
		zap.String("wo_number", req.OrderNumber),
		zap.Uint("wip_item_id", result.UnitID),
		zap.String("status", string(result.NewStatus)),
	)
	return result, nil
}
