package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"hotelops/shared/failure"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want failure.Failure
	}{
		{
			name: "validation",
			err:  failure.BadRequestFromString("check_out must be after check_in"),
			want: failure.Failure{Code: http.StatusBadRequest, Reason: failure.ReasonValidation, Message: "check_out must be after check_in"},
		},
		{
			name: "validation from error",
			err:  failure.BadRequest(errors.New("quantity must be greater than 0")),
			want: failure.Failure{Code: http.StatusBadRequest, Reason: failure.ReasonValidation, Message: "quantity must be greater than 0"},
		},
		{
			name: "unauthorized",
			err:  failure.Unauthorized("token expired"),
			want: failure.Failure{Code: http.StatusUnauthorized, Reason: failure.ReasonUnauthorized, Message: "token expired"},
		},
		{
			name: "not found",
			err:  failure.NotFound("booking not found"),
			want: failure.Failure{Code: http.StatusNotFound, Reason: failure.ReasonNotFound, Message: "booking not found"},
		},
		{
			name: "guest not found",
			err:  failure.GuestNotFound("ghost@example.com"),
			want: failure.Failure{Code: http.StatusNotFound, Reason: failure.ReasonGuestNotFound, Message: `guest "ghost@example.com" not found`},
		},
		{
			name: "conflict",
			err:  failure.Conflict(`inventory item "towel" already exists`),
			want: failure.Failure{Code: http.StatusConflict, Reason: failure.ReasonConflict, Message: `inventory item "towel" already exists`},
		},
		{
			name: "invalid transition carries the current state",
			err:  failure.InvalidTransition("booking", "cancelled", "cancelled"),
			want: failure.Failure{Code: http.StatusConflict, Reason: failure.ReasonInvalidTransition, Message: "booking cannot be cancelled while cancelled", State: "cancelled"},
		},
		{
			name: "resource unavailable",
			err:  failure.ResourceUnavailable("room 101 is not available"),
			want: failure.Failure{Code: http.StatusConflict, Reason: failure.ReasonResourceUnavailable, Message: "room 101 is not available"},
		},
		{
			name: "service unavailable",
			err:  failure.ServiceUnavailable("store unavailable"),
			want: failure.Failure{Code: http.StatusServiceUnavailable, Reason: failure.ReasonServiceUnavailable, Message: "store unavailable"},
		},
		{
			name: "forbidden",
			err:  failure.Forbidden("task is assigned to another staff member"),
			want: failure.Failure{Code: http.StatusForbidden, Reason: failure.ReasonForbidden, Message: "task is assigned to another staff member"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *failure.Failure
			if !assert.ErrorAs(t, tt.err, &got) {
				return
			}

			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("failure mismatch (-want +got):\n%s", diff)
			}

			assert.Equal(t, tt.want.Message, tt.err.Error())
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestPredefinedFailures(t *testing.T) {
	for _, f := range []*failure.Failure{failure.InvalidPageParam, failure.InvalidLimitParam} {
		assert.Equal(t, http.StatusBadRequest, f.Code)
		assert.Equal(t, failure.ReasonValidation, f.Reason)
	}

	for _, f := range []*failure.Failure{failure.ForbiddenError, failure.ResourceRestrictedError} {
		assert.Equal(t, http.StatusForbidden, f.Code)
		assert.True(t, failure.Is(f, failure.ReasonForbidden))
	}
}

func TestAccessors(t *testing.T) {
	transition := failure.InvalidTransition("task", "completed", "completed")

	tests := []struct {
		name   string
		err    error
		code   int
		reason string
		state  string
	}{
		{
			name:   "failure",
			err:    transition,
			code:   http.StatusConflict,
			reason: failure.ReasonInvalidTransition,
			state:  "completed",
		},
		{
			name:   "wrapped failure",
			err:    fmt.Errorf("failed to complete task: %w", transition),
			code:   http.StatusConflict,
			reason: failure.ReasonInvalidTransition,
			state:  "completed",
		},
		{
			name:   "failure without state",
			err:    fmt.Errorf("create: %w", failure.ResourceUnavailable("room 101 is not available")),
			code:   http.StatusConflict,
			reason: failure.ReasonResourceUnavailable,
		},
		{
			name:   "plain error",
			err:    errors.New("connection reset"),
			code:   http.StatusInternalServerError,
			reason: failure.ReasonInternal,
		},
		{
			name:   "nil",
			code:   http.StatusInternalServerError,
			reason: failure.ReasonInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.reason, failure.GetReason(tt.err))
			assert.Equal(t, tt.state, failure.GetState(tt.err))
			assert.True(t, failure.Is(tt.err, tt.reason))
		})
	}
}
