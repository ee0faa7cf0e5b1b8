package retry_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"hotelops/shared/failure"
	"hotelops/shared/retry"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var fastPolicy = retry.Policy{
	MaxAttempts:     3,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01"}, want: true},
		{name: "connection failure class", err: &pq.Error{Code: "08006"}, want: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: false},
		{name: "exclusion violation", err: &pq.Error{Code: "23P01"}, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "validation", err: failure.BadRequestFromString("bad"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.IsTransient(tt.err))
		})
	}
}

func TestDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantCode  int
		wantErr   bool
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "recovers from transient failures",
			failures:  []error{&pq.Error{Code: "40001"}, &pq.Error{Code: "40P01"}},
			wantCalls: 3,
		},
		{
			name:      "validation failure is never retried",
			failures:  []error{failure.BadRequestFromString("check_out must be after check_in")},
			wantCalls: 1,
			wantCode:  http.StatusBadRequest,
			wantErr:   true,
		},
		{
			name:      "exhausted retries surface as service unavailable",
			failures:  []error{context.DeadlineExceeded, context.DeadlineExceeded, context.DeadlineExceeded},
			wantCalls: 3,
			wantCode:  http.StatusServiceUnavailable,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0

			err := retry.Do(context.Background(), fastPolicy, func(_ context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}

				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDoValue_ReturnsUnwrappedPermanentError(t *testing.T) {
	sentinel := errors.New("boom")

	_, err := retry.DoValue(context.Background(), fastPolicy, func(_ context.Context) (int, error) {
		return 0, sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}
