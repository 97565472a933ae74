package tracking

import (
	"context"
	"errors"
	"strings"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/audit"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"

	"go.uber.org/zap"
)

type ScrapRequest struct {
	OrderNumber string
	PartNumber  string
	Quantity    int
	ErrorCodeID uint
	Comments    string
	UserID      uint
	DeviceID    uint
}

type ScrapResult struct {
	OrderID uint
	UnitID  uint
	Message string
}

// Scrap takes the order's unit out of production: the unit is scrapped and
// the order cancelled.
func (e *Engine) Scrap(ctx context.Context, req ScrapRequest) (*ScrapResult, error) {
	req.OrderNumber = strings.TrimSpace(req.OrderNumber)
	req.PartNumber = strings.TrimSpace(req.PartNumber)
	req.Comments = strings.TrimSpace(req.Comments)
	if req.OrderNumber == "" || req.PartNumber == "" {
		return nil, apperror.New(apperror.Validation, "order number and part number are required")
	}
	if req.Quantity <= 0 {
		return nil, apperror.New(apperror.Validation, "quantity must be greater than zero")
	}
	if req.ErrorCodeID == 0 {
		return nil, apperror.New(apperror.Validation, "error code is required")
	}

	now := e.opts.Now()
	requestID := e.opts.NewRequestID()

	var result *ScrapResult
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		a, err := resolveActor(tx, req.UserID, req.DeviceID)
		if err != nil {
			return err
		}
		order, unit, err := openUnit(tx, req.OrderNumber, req.PartNumber, true)
		if err != nil {
			return err
		}

		code, err := tx.ActiveErrorCode(req.ErrorCodeID)
		if errors.Is(err, store.ErrNotFound) {
			return apperror.Newf(apperror.ErrorCodeNotFound, "error code %d does not exist or is inactive", req.ErrorCodeID)
		}
		if err != nil {
			return err
		}

		latest, err := tx.LatestExecution(unit.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		case req.Quantity > latest.QtyIn:
			return apperror.Newf(apperror.QuantityExceedsUpstream,
				"quantity %d exceeds the unit's current quantity (%d)", req.Quantity, latest.QtyIn)
		}

		if err := tx.AppendScrapLog(&models.ScrapLog{
			WipItemID:   unit.ID,
			ErrorCodeID: code.ID,
			RouteStepID: unit.CurrentStepID,
			UserID:      a.user.ID,
			DeviceID:    a.device.ID,
			LocationID:  a.device.LocationID,
			Qty:         req.Quantity,
			Comments:    req.Comments,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		if err := tx.SetWipStatus(unit, models.WipScrapped); err != nil {
			return err
		}
		if err := tx.SetWorkOrderStatus(order, models.WorkOrderCancelled); err != nil {
			return err
		}
		if err := tx.AppendScanEvent(audit.ScanOptions{
			WipItemID:   uintPtr(unit.ID),
			RouteStepID: uintPtr(unit.CurrentStepID),
			Type:        models.ScanExit,
			UserID:      a.userID(),
			DeviceID:    a.deviceID(),
			LocationID:  a.locationID(),
			Reason:      "scrap " + code.Code,
			RequestID:   requestID,
			At:          now,
		}); err != nil {
			return err
		}

		result = &ScrapResult{OrderID: order.ID, UnitID: unit.ID, Message: "Unit scrapped."}
		return nil
	})
	if err != nil {
		e.logOutcome("Scrap", err,
			zap.String("wo_number", req.OrderNumber),
			zap.Uint("error_code_id", req.ErrorCodeID),
			zap.Uint("device_id", req.DeviceID),
			zap.String("request_id", requestID),
		)
		return nil, err
	}

	e.logger.Info("Unit scrapped",
		zap.String("wo_number", req.OrderNumber),
		zap.Uint("wip_item_id", result.UnitID),
		zap.Int("quantity", req.Quantity),
		zap.String("request_id", requestID),
	)
	return result, nil
}

// openUnit resolves an order and its unit for scrap and rework. partNumber
// is optional; when given it must be the order's part. requireOpenOrder
// rejects finished and cancelled orders.
func openUnit(tx *store.Tx, orderNumber, partNumber string, requireOpenOrder bool) (*models.WorkOrder, *models.WipItem, error) {
	order, err := tx.WorkOrderByNumber(orderNumber, true)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperror.Newf(apperror.OrderNotFound, "order %s does not exist", orderNumber)
	}
	if err != nil {
		return nil, nil, err
	}
	if partNumber != "" && (order.Product == nil || !strings.EqualFold(order.Product.PartNumber, partNumber)) {
		return nil, nil, apperror.Newf(apperror.PartMismatch, "part %s does not belong to order %s", partNumber, orderNumber)
	}
	if requireOpenOrder && order.Status.IsClosed() {
		return nil, nil, apperror.Newf(apperror.OrderClosed, "order %s is %s", order.WoNumber, order.Status)
	}

	unit, err := tx.WipItemByWorkOrder(order.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperror.Newf(apperror.UnitNotFound, "order %s has no unit in production", orderNumber)
	}
	if err != nil {
		return nil, nil, err
	}
	if unit.Status.IsTerminal() {
		return nil, nil, apperror.Newf(apperror.UnitClosed, "the unit is %s", unit.Status)
	}
	return order, unit, nil
}
