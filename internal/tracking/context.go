package tracking

import (
	"context"
	"errors"
	"strings"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"
)

type StepView struct {
	StepID       uint   `json:"step_id"`
	StepNumber   int    `json:"step_number"`
	StepName     string `json:"step_name"`
	LocationID   uint   `json:"location_id"`
	LocationName string `json:"location_name"`
}

// OrderContext is what a scanner shows before registering a scan. For an
// order that does not exist yet it describes the step a first scan would
// land on.
type OrderContext struct {
	IsNew            bool                   `json:"is_new"`
	OrderID          *uint                  `json:"order_id,omitempty"`
	OrderStatus      models.WorkOrderStatus `json:"order_status,omitempty"`
	UnitID           *uint                  `json:"unit_id,omitempty"`
	UnitStatus       models.WipStatus       `json:"unit_status,omitempty"`
	PreviousQuantity *int                   `json:"previous_quantity,omitempty"`
	CurrentStep      *StepView              `json:"current_step,omitempty"`
	RouteName        string                 `json:"route_name"`
	NextSteps        []StepView             `json:"next_steps"`
}

// WorkOrderContext projects the current position of an order on its route.
// It never writes, not even for unknown part numbers.
func (e *Engine) WorkOrderContext(ctx context.Context, orderNumber, partNumber string) (*OrderContext, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	partNumber = strings.TrimSpace(partNumber)
	if orderNumber == "" {
		return nil, apperror.New(apperror.Validation, "order number is required")
	}

	var out *OrderContext
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		order, err := tx.WorkOrderByNumber(orderNumber, false)
		if errors.Is(err, store.ErrNotFound) {
			out, err = newOrderContext(tx, orderNumber, partNumber)
			return err
		}
		if err != nil {
			return err
		}
		out, err = existingOrderContext(tx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func newOrderContext(tx *store.Tx, orderNumber, partNumber string) (*OrderContext, error) {
	if partNumber == "" {
		return nil, apperror.Newf(apperror.OrderNotFound, "order %s does not exist", orderNumber)
	}
	_, routeID, err := resolveProductRoute(tx, partNumber)
	if err != nil {
		return nil, err
	}
	steps, err := loadRoute(tx, routeID)
	if err != nil {
		return nil, err
	}
	route, err := tx.Route(routeID)
	if err != nil {
		return nil, err
	}

	first := stepView(steps.first())
	return &OrderContext{
		IsNew:       true,
		CurrentStep: &first,
		RouteName:   route.Name,
		NextSteps:   steps.after(first.StepNumber),
	}, nil
}

func existingOrderContext(tx *store.Tx, order *models.WorkOrder) (*OrderContext, error) {
	out := &OrderContext{
		OrderID:     uintPtr(order.ID),
		OrderStatus: order.Status,
	}

	unit, err := tx.WipItemByWorkOrder(order.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var routeID uint
	switch {
	case unit != nil:
		routeID = unit.RouteID
	case order.Product != nil && order.Product.Subfamily != nil && order.Product.Subfamily.ActiveRouteID != nil:
		routeID = *order.Product.Subfamily.ActiveRouteID
	default:
		return nil, apperror.Newf(apperror.RouteNotConfigured, "order %s has no route", order.WoNumber)
	}

	steps, err := loadRoute(tx, routeID)
	if err != nil {
		return nil, err
	}
	route, err := tx.Route(routeID)
	if err != nil {
		return nil, err
	}
	out.RouteName = route.Name

	if unit == nil {
		out.NextSteps = steps.after(0)
		return out, nil
	}

	out.UnitID = uintPtr(unit.ID)
	out.UnitStatus = unit.Status
	if n := len(unit.StepExecutions); n > 0 {
		qty := unit.StepExecutions[n-1].QtyIn
		out.PreviousQuantity = &qty
	}
	current, ok := steps.byID(unit.CurrentStepID)
	if !ok {
		return nil, apperror.New(apperror.Conflict, "the unit's current step is not part of its route")
	}
	view := stepView(current)
	out.CurrentStep = &view
	out.NextSteps = steps.after(current.StepNumber)
	return out, nil
}
