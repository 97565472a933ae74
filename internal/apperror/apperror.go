// Package apperror is the closed set of failures the tracking core reports.
// Every failure carries a Kind; the HTTP layer maps kinds to status codes
// through StatusCode and nothing else.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Validation              Kind = "VALIDATION"
	Unauthorized            Kind = "UNAUTHORIZED"
	PartNotRegistered       Kind = "PART_NOT_REGISTERED"
	RouteNotConfigured      Kind = "ROUTE_NOT_CONFIGURED"
	OrderNotFound           Kind = "ORDER_NOT_FOUND"
	OrderClosed             Kind = "ORDER_CLOSED"
	PartMismatch            Kind = "PART_MISMATCH"
	UnitNotFound            Kind = "UNIT_NOT_FOUND"
	UnitOnHold              Kind = "UNIT_ON_HOLD"
	UnitClosed              Kind = "UNIT_CLOSED"
	AlreadyAtFinalStep      Kind = "ALREADY_AT_FINAL_STEP"
	DeviceLocationMismatch  Kind = "DEVICE_LOCATION_MISMATCH"
	StepAlreadyExecuted     Kind = "STEP_ALREADY_EXECUTED"
	QuantityExceedsUpstream Kind = "QUANTITY_EXCEEDS_UPSTREAM"
	ErrorCodeNotFound       Kind = "ERROR_CODE_NOT_FOUND"
	Conflict                Kind = "CONFLICT"
)

var statusByKind = map[Kind]int{
	Validation:              http.StatusBadRequest,
	Unauthorized:            http.StatusUnauthorized,
	PartNotRegistered:       http.StatusNotFound,
	OrderNotFound:           http.StatusNotFound,
	UnitNotFound:            http.StatusNotFound,
	ErrorCodeNotFound:       http.StatusNotFound,
	RouteNotConfigured:      http.StatusConflict,
	OrderClosed:             http.StatusConflict,
	PartMismatch:            http.StatusConflict,
	UnitOnHold:              http.StatusConflict,
	UnitClosed:              http.StatusConflict,
	AlreadyAtFinalStep:      http.StatusConflict,
	DeviceLocationMismatch:  http.StatusConflict,
	StepAlreadyExecuted:     http.StatusConflict,
	QuantityExceedsUpstream: http.StatusConflict,
	Conflict:                http.StatusConflict,
}

// StatusCode returns the HTTP status for a kind. Unknown kinds are server
// errors.
func (k Kind) StatusCode() int {
	if code, ok := statusByKind[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error is a typed failure. Message is safe to show to the operator.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on Kind so callers can write errors.Is(err, apperror.New(kind, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a typed failure anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HasKind reports whether err is a typed failure of the given kind.
func HasKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
