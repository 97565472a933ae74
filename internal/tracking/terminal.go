package tracking

import (
	"time"

	"trackii-backend/internal/audit"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"
)

type terminalInput struct {
	order           *models.WorkOrder
	unit            *models.WipItem
	target          models.RouteStep
	steps           routeSteps
	firstTransition bool
	actor           *actor
	requestID       string
	at              time.Time
}

// resolveTerminal applies the status changes that follow a committed step
// transition and reports whether the unit reached the end of its route.
// Unit and order always finish together.
func resolveTerminal(tx *store.Tx, in terminalInput) (bool, error) {
	if in.target.StepNumber == in.steps.maxNumber() {
		if err := tx.SetWipStatus(in.unit, models.WipFinished); err != nil {
			return false, err
		}
		if err := tx.SetWorkOrderStatus(in.order, models.WorkOrderFinished); err != nil {
			return false, err
		}
		err := tx.AppendScanEvent(audit.ScanOptions{
			WipItemID:   uintPtr(in.unit.ID),
			RouteStepID: uintPtr(in.target.ID),
			Type:        models.ScanExit,
			UserID:      in.actor.userID(),
			DeviceID:    in.actor.deviceID(),
			LocationID:  in.actor.locationID(),
			RequestID:   in.requestID,
			At:          in.at,
		})
		return err == nil, err
	}

	if !in.firstTransition && in.order.Status == models.WorkOrderOpen {
		if err := tx.SetWorkOrderStatus(in.order, models.WorkOrderInProgress); err != nil {
			return false, err
		}
	}
	return false, nil
}
