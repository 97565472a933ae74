package tracking

import (
	"context"
	"errors"
	"strings"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"
)

// UnitState is what the rework screen shows before asking for a quantity.
// CanHold means a rework request applies; CanRelease means the unit is on
// hold and a completion would release it.
type UnitState struct {
	OrderID     uint                   `json:"order_id"`
	OrderNumber string                 `json:"wo_number"`
	OrderStatus models.WorkOrderStatus `json:"order_status"`
	UnitID      uint                   `json:"unit_id"`
	UnitStatus  models.WipStatus       `json:"unit_status"`
	RouteID     uint                   `json:"route_id"`
	CurrentStep StepView               `json:"current_step"`

	CanHold    bool `json:"can_hold"`
	CanRelease bool `json:"can_release"`
}

// ValidateUnit looks up the unit of an order without changing anything.
// Orders without a unit give UnitNotFound.
func (e *Engine) ValidateUnit(ctx context.Context, orderNumber string) (*UnitState, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, apperror.New(apperror.Validation, "order number is required")
	}

	var out *UnitState
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		order, err := tx.WorkOrderByNumber(orderNumber, false)
		if errors.Is(err, store.ErrNotFound) {
			return apperror.Newf(apperror.OrderNotFound, "order %s does not exist", orderNumber)
		}
		if err != nil {
			return err
		}
		unit, err := tx.WipItemByWorkOrder(order.ID)
		if errors.Is(err, store.ErrNotFound) {
			return apperror.Newf(apperror.UnitNotFound, "order %s has no unit in production", orderNumber)
		}
		if err != nil {
			return err
		}

		out = &UnitState{
			OrderID:     order.ID,
			OrderNumber: order.WoNumber,
			OrderStatus: order.Status,
			UnitID:      unit.ID,
			UnitStatus:  unit.Status,
			RouteID:     unit.RouteID,
			CanHold:     unit.Status == models.WipActive,
			CanRelease:  unit.Status == models.WipHold,
		}
		if unit.CurrentStep != nil {
			out.CurrentStep = stepView(*unit.CurrentStep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
