// Package tracking is the scan-registration core: it moves work-order units
// through their route steps, scraps and reworks them, and keeps the scan
// audit trail.
//
// Every operation runs in one store transaction. A failed operation leaves no
// business state behind; the only records that outlive a rollback are the
// audit side effects collected in sideEffects, which are written afterwards
// in their own transaction.
package tracking

import (
	"context"
	"errors"
	"time"

	"trackii-backend/internal/apperror"
	"trackii-backend/internal/audit"
	"trackii-backend/internal/models"
	"trackii-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	// AllowRemoteOrderCreation lets a device outside the route's first
	// location open a new work order.
	AllowRemoteOrderCreation bool

	Now          func() time.Time
	NewRequestID func() string
}

type Engine struct {
	store  *store.Store
	logger *zap.Logger
	opts   Options
}

func NewEngine(st *store.Store, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = uuid.NewString
	}
	return &Engine{store: st, logger: logger, opts: opts}
}

// sideEffects are audit records that must persist even when the business
// transaction that produced them rolls back.
type sideEffects struct {
	scans             []audit.ScanOptions
	unregisteredParts []string
	at                time.Time
}

func (s *sideEffects) empty() bool {
	return len(s.scans) == 0 && len(s.unregisteredParts) == 0
}

// flush writes pending side effects. Failing to write them is logged and
// never replaces the business failure the caller is about to return.
func (e *Engine) flush(ctx context.Context, pending *sideEffects) {
	if pending.empty() {
		return
	}
	err := e.store.Transaction(ctx, func(tx *store.Tx) error {
		for _, part := range pending.unregisteredParts {
			if err := tx.AppendUnregisteredPart(part, pending.at); err != nil {
				return err
			}
		}
		for _, scan := range pending.scans {
			if err := tx.AppendScanEvent(scan); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to write audit side effects",
			zap.Int("scan_events", len(pending.scans)),
			zap.Strings("unregistered_parts", pending.unregisteredParts),
			zap.Error(err),
		)
	}
}

// logOutcome logs typed rejections at info and store faults at error.
func (e *Engine) logOutcome(op string, err error, fields ...zap.Field) {
	if kind, ok := apperror.KindOf(err); ok {
		e.logger.Info(op+" rejected", append(fields, zap.String("kind", string(kind)), zap.String("reason", err.Error()))...)
		return
	}
	e.logger.Error(op+" failed", append(fields, zap.Error(err))...)
}

// actor is the user/device pair a request acts as.
type actor struct {
	user   *models.User
	device *models.Device
}

func (a *actor) userID() *uint     { return &a.user.ID }
func (a *actor) deviceID() *uint   { return &a.device.ID }
func (a *actor) locationID() *uint { return &a.device.LocationID }

// resolveActor checks that the user is active and that the device is active
// and registered to that user.
func resolveActor(tx *store.Tx, userID, deviceID uint) (*actor, error) {
	user, err := tx.ActiveUser(userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.New(apperror.Unauthorized, "invalid user")
	}
	if err != nil {
		return nil, err
	}

	device, err := tx.ActiveDevice(deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.New(apperror.Unauthorized, "invalid device")
	}
	if err != nil {
		return nil, err
	}
	if device.UserID == nil || *device.UserID != user.ID {
		return nil, apperror.New(apperror.Unauthorized, "device is not registered to this user")
	}
	return &actor{user: user, device: device}, nil
}

func uintPtr(v uint) *uint { return &v }
