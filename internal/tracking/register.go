package tracking

import (
	"context"
	"errors"
	"strings"
	"time"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/audit"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"

	"go.uber.org/zap"
)

type ScanRequest struct {
	OrderNumber string
	PartNumber  string
	Quantity    int
	UserID      uint
	DeviceID    uint
}

type ScanResult struct {
	OrderID     uint
	UnitID      uint
	StepID      uint
	StepNumber  int
	IsFinalStep bool
	Message     string
}

// RegisterScan advances the order's unit to its next route step, creating
// the order and the unit on the first scan.
func (e *Engine) RegisterScan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	req.OrderNumber = strings.TrimSpace(req.OrderNumber)
	req.PartNumber = strings.TrimSpace(req.PartNumber)
	if req.OrderNumber == "" || req.PartNumber == "" {
		return nil, apperror.New(apperror.Validation, "order number and part number are required")
	}
	if req.Quantity <= 0 {
		return nil, apperror.New(apperror.Validation, "quantity must be greater than zero")
	}

	sc := &scan{
		req:                 req,
		now:                 e.opts.Now(),
		requestID:           e.opts.NewRequestID(),
		allowRemoteCreation: e.opts.AllowRemoteOrderCreation,
	}
	sc.pending.at = sc.now

	var result *ScanResult
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		r, err := sc.run(tx)
		result = r
		return err
	})
	if err != nil {
		e.flush(ctx, &sc.pending)
		e.logOutcome("Scan", err,
			zap.String("wo_number", req.OrderNumber),
			zap.String("part_number", req.PartNumber),
			zap.Int("quantity", req.Quantity),
			zap.Uint("device_id", req.DeviceID),
			zap.String("request_id", sc.requestID),
		)
		return nil, err
	}

	e.logger.Info("Scan registered",
		zap.String("wo_number", req.OrderNumber),
		zap.Uint("wip_item_id", result.UnitID),
		zap.Int("step_number", result.StepNumber),
		zap.Bool("final_step", result.IsFinalStep),
		zap.String("request_id", sc.requestID),
	)
	return result, nil
}

// scan holds the state of one RegisterScan call while its transaction runs.
type scan struct {
	req                 ScanRequest
	now                 time.Time
	requestID           string
	allowRemoteCreation bool
	pending             sideEffects

	actor   *actor
	product *models.Product
	steps   routeSteps
	order   *models.WorkOrder // nil: order does not exist yet
	unit    *models.WipItem   // nil: first scan of the unit
	target  models.RouteStep
}

func (sc *scan) run(tx *store.Tx) (*ScanResult, error) {
	var err error
	if sc.actor, err = resolveActor(tx, sc.req.UserID, sc.req.DeviceID); err != nil {
		return nil, err
	}

	if err := sc.resolveOrder(tx); err != nil {
		return nil, err
	}
	if err := sc.resolveTarget(); err != nil {
		return nil, err
	}

	// From here on every rejection is audited.
	if err := sc.checkLocation(); err != nil {
		return nil, err
	}
	if err := sc.checkNotExecuted(tx); err != nil {
		return nil, err
	}
	if err := sc.checkQuantity(); err != nil {
		return nil, err
	}

	firstTransition := sc.unit == nil
	if err := sc.commitTransition(tx); err != nil {
		return nil, err
	}
	final, err := resolveTerminal(tx, terminalInput{
		order:           sc.order,
		unit:            sc.unit,
		target:          sc.target,
		steps:           sc.steps,
		firstTransition: firstTransition,
		actor:           sc.actor,
		requestID:       sc.requestID,
		at:              sc.now,
	})
	if err != nil {
		return nil, err
	}

	msg := "Scan registered."
	if final {
		msg = "Route completed."
	}
	return &ScanResult{
		OrderID:     sc.order.ID,
		UnitID:      sc.unit.ID,
		StepID:      sc.target.ID,
		StepNumber:  sc.target.StepNumber,
		IsFinalStep: final,
		Message:     msg,
	}, nil
}

// resolveRoute loads the part's current active route. Only units that do
// not exist yet depend on it.
func (sc *scan) resolveRoute(tx *store.Tx) error {
	product, routeID, err := resolveProductRoute(tx, sc.req.PartNumber)
	if apperror.HasKind(err, apperror.PartNotRegistered) {
		sc.pending.unregisteredParts = append(sc.pending.unregisteredParts, sc.req.PartNumber)
		sc.pending.scans = append(sc.pending.scans, sc.errorEvent(err))
		return err
	}
	if err != nil {
		return err
	}
	sc.product = product

	sc.steps, err = loadRoute(tx, routeID)
	return err
}

func (sc *scan) resolveOrder(tx *store.Tx) error {
	order, err := tx.WorkOrderByNumber(sc.req.OrderNumber, true)
	if errors.Is(err, store.ErrNotFound) {
		return sc.resolveNewOrder(tx)
	}
	if err != nil {
		return err
	}

	if order.Product == nil || !strings.EqualFold(order.Product.PartNumber, sc.req.PartNumber) {
		// An unknown part number is reported as unregistered, not as a mismatch.
		if err := sc.resolveRoute(tx); err != nil {
			return err
		}
		return apperror.Newf(apperror.PartMismatch, "part %s does not belong to order %s", sc.req.PartNumber, sc.req.OrderNumber)
	}
	if order.Status.IsClosed() {
		return apperror.Newf(apperror.OrderClosed, "order %s is %s and cannot advance", order.WoNumber, order.Status)
	}
	sc.order = order
	return sc.resolveUnit(tx)
}

// resolveNewOrder applies the creation policy: new orders are opened at the
// first step's location unless remote creation is allowed.
func (sc *scan) resolveNewOrder(tx *store.Tx) error {
	if err := sc.resolveRoute(tx); err != nil {
		return err
	}
	intake := sc.steps.first()
	if !sc.allowRemoteCreation && intake.LocationID != sc.actor.device.LocationID {
		return apperror.Newf(apperror.OrderNotFound,
			"order %s does not exist; new orders must be opened at %s", sc.req.OrderNumber, intake.Name())
	}
	return nil
}

func (sc *scan) resolveUnit(tx *store.Tx) error {
	unit, err := tx.WipItemByWorkOrder(sc.order.ID)
	if errors.Is(err, store.ErrNotFound) {
		return sc.resolveRoute(tx)
	}
	if err != nil {
		return err
	}

	switch unit.Status {
	case models.WipHold:
		return apperror.New(apperror.UnitOnHold, "the unit is on hold for rework")
	case models.WipFinished, models.WipScrapped:
		return apperror.Newf(apperror.UnitClosed, "the unit is %s", unit.Status)
	}

	// A unit keeps following the route it started on, whatever the
	// subfamily points at today.
	if sc.steps, err = loadRoute(tx, unit.RouteID); err != nil {
		return err
	}
	sc.unit = unit
	return nil
}

func (sc *scan) resolveTarget() error {
	if sc.unit == nil {
		sc.target = sc.steps.first()
		return nil
	}

	current, ok := sc.steps.byID(sc.unit.CurrentStepID)
	if !ok {
		return apperror.New(apperror.Conflict, "the unit's current step is not part of its route")
	}
	next, ok := sc.steps.byNumber(current.StepNumber + 1)
	if !ok {
		return apperror.New(apperror.AlreadyAtFinalStep, "the order is already at the last step")
	}
	sc.target = next
	return nil
}

func (sc *scan) checkLocation() error {
	if sc.target.LocationID == sc.actor.device.LocationID {
		return nil
	}
	deviceLocation := "another location"
	if sc.actor.device.Location != nil {
		deviceLocation = sc.actor.device.Location.Name
	}
	return sc.reject(apperror.Newf(apperror.DeviceLocationMismatch,
		"step %d is done at %s, this device is at %s", sc.target.StepNumber, sc.target.Name(), deviceLocation))
}

func (sc *scan) checkNotExecuted(tx *store.Tx) error {
	if sc.unit == nil {
		return nil
	}
	_, err := tx.Execution(sc.unit.ID, sc.target.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return sc.reject(apperror.Newf(apperror.StepAlreadyExecuted, "step %d was already registered for this unit", sc.target.StepNumber))
}

// checkQuantity compares with the execution of the step right before the
// target; quantity never grows along the route.
func (sc *scan) checkQuantity() error {
	if sc.unit == nil {
		return nil
	}
	upstream, ok := sc.upstreamExecution()
	if !ok {
		return nil
	}
	if sc.req.Quantity > upstream.QtyIn {
		return sc.reject(apperror.Newf(apperror.QuantityExceedsUpstream,
			"quantity %d exceeds the previous step (%d)", sc.req.Quantity, upstream.QtyIn))
	}
	return nil
}

func (sc *scan) upstreamExecution() (models.StepExecution, bool) {
	if prev, ok := sc.steps.byNumber(sc.target.StepNumber - 1); ok {
		if exec, ok := sc.executionFor(prev.ID); ok {
			return exec, true
		}
	}
	// Executions are ordered oldest first.
	if n := len(sc.unit.StepExecutions); n > 0 {
		return sc.unit.StepExecutions[n-1], true
	}
	return models.StepExecution{}, false
}

func (sc *scan) executionFor(stepID uint) (models.StepExecution, bool) {
	for _, exec := range sc.unit.StepExecutions {
		if exec.RouteStepID == stepID {
			return exec, true
		}
	}
	return models.StepExecution{}, false
}

func (sc *scan) commitTransition(tx *store.Tx) error {
	if sc.order == nil {
		sc.order = &models.WorkOrder{
			WoNumber:  sc.req.OrderNumber,
			ProductID: sc.product.ID,
			Status:    models.WorkOrderOpen,
		}
		if err := tx.CreateWorkOrder(sc.order); err != nil {
			return err
		}
	}

	if sc.unit == nil {
		sc.unit = &models.WipItem{
			WorkOrderID:   sc.order.ID,
			RouteID:       sc.target.RouteID,
			CurrentStepID: sc.target.ID,
			Status:        models.WipActive,
		}
		if err := tx.CreateWipItem(sc.unit); err != nil {
			return err
		}
	} else if err := tx.AdvanceWip(sc.unit, sc.target.ID); err != nil {
		return err
	}

	if err := tx.CreateStepExecution(&models.StepExecution{
		WipItemID:   sc.unit.ID,
		RouteStepID: sc.target.ID,
		UserID:      sc.actor.user.ID,
		DeviceID:    sc.actor.device.ID,
		LocationID:  sc.actor.device.LocationID,
		QtyIn:       sc.req.Quantity,
		QtyScrap:    0,
		CreatedAt:   sc.now,
	}); err != nil {
		return err
	}

	return tx.AppendScanEvent(audit.ScanOptions{
		WipItemID:   uintPtr(sc.unit.ID),
		RouteStepID: uintPtr(sc.target.ID),
		Type:        models.ScanEntry,
		UserID:      sc.actor.userID(),
		DeviceID:    sc.actor.deviceID(),
		LocationID:  sc.actor.locationID(),
		RequestID:   sc.requestID,
		At:          sc.now,
	})
}

// reject queues an ERROR scan event for err and returns it.
func (sc *scan) reject(err *apperror.Error) error {
	event := sc.errorEvent(err)
	event.RouteStepID = uintPtr(sc.target.ID)
	if sc.unit != nil {
		event.WipItemID = uintPtr(sc.unit.ID)
	}
	sc.pending.scans = append(sc.pending.scans, event)
	return err
}

func (sc *scan) errorEvent(err error) audit.ScanOptions {
	opts := audit.ScanOptions{
		Type:      models.ScanError,
		Reason:    err.Error(),
		RequestID: sc.requestID,
		At:        sc.now,
	}
	if sc.actor != nil {
		opts.UserID = sc.actor.userID()
		opts.DeviceID = sc.actor.deviceID()
		opts.LocationID = sc.actor.locationID()
	}
	return opts
}
