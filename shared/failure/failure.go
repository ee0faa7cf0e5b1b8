package failure

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ReasonValidation          = "VALIDATION_ERROR"
	ReasonNotFound            = "NOT_FOUND"
	ReasonGuestNotFound       = "GUEST_NOT_FOUND"
	ReasonInvalidTransition   = "INVALID_TRANSITION"
	ReasonResourceUnavailable = "RESOURCE_UNAVAILABLE"
	ReasonConflict            = "CONFLICT"
	ReasonForbidden           = "FORBIDDEN"
	ReasonUnauthorized        = "UNAUTHORIZED"
	ReasonServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ReasonInternal            = "INTERNAL_ERROR"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
// State carries the current state of the entity for InvalidTransition failures.
type Failure struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	State   string `json:"state,omitempty"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Reason: ReasonValidation, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Reason: ReasonValidation, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Reason: ReasonForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Reason: ReasonForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Reason:  ReasonValidation,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Reason:  ReasonValidation,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Reason:  ReasonUnauthorized,
		Message: msg,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Reason:  ReasonNotFound,
		Message: entityName,
	}
}

// GuestNotFound is returned when a loose guest identifier cannot be resolved.
func GuestNotFound(identifier string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Reason:  ReasonGuestNotFound,
		Message: fmt.Sprintf("guest %q not found", identifier),
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Reason:  ReasonConflict,
		Message: message,
	}
}

// InvalidTransition reports a state machine violation together with the current state.
func InvalidTransition(entityName, currentState, attempted string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Reason:  ReasonInvalidTransition,
		Message: fmt.Sprintf("%s cannot be %s while %s", entityName, attempted, currentState),
		State:   currentState,
	}
}

// ResourceUnavailable reports a booking conflict. Callers re-query availability and retry with new dates.
func ResourceUnavailable(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Reason:  ReasonResourceUnavailable,
		Message: msg,
	}
}

// ServiceUnavailable is surfaced after transient store failures exhausted their retries.
func ServiceUnavailable(msg string) error {
	return &Failure{
		Code:    http.StatusServiceUnavailable,
		Reason:  ReasonServiceUnavailable,
		Message: msg,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Reason:  ReasonForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetReason returns the machine readable reason of an error interface.
func GetReason(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Reason
	}

	return ReasonInternal
}

// GetState returns the entity state carried by an InvalidTransition failure.
func GetState(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.State
	}

	return ""
}

// Is reports whether err is a Failure with the given reason.
func Is(err error, reason string) bool {
	return GetReason(err) == reason
}
