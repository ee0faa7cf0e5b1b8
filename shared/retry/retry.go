package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"hotelops/shared/failure"

	"github.com/cenkalti/backoff/v5"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	pqClassConnectionException = "08"
	pqCodeSerializationFailure = "40001"
	pqCodeDeadlockDetected     = "40P01"
	pqCodeAdminShutdown        = "57P01"
)

const (
	defaultInitialInterval = 50 * time.Millisecond
	defaultMaxInterval     = time.Second
)

// Policy bounds a retried store call. MaxAttempts counts the first try.
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()

	b.InitialInterval = defaultInitialInterval
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}

	b.MaxInterval = defaultMaxInterval
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	return b
}

// IsTransient reports whether err is worth another attempt: lost connections,
// serialization failures, deadlocks, admin shutdowns and per-call timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqCodeSerializationFailure, pqCodeDeadlockDetected, pqCodeAdminShutdown:
			return true
		}

		return pqErr.Code.Class() == pqClassConnectionException
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// Do runs op until it succeeds, fails with a non-transient error or the policy
// is exhausted. Exhausted transient failures surface as ServiceUnavailable.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})

	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++

		res, err := op(ctx)
		if err != nil && !IsTransient(err) {
			return res, backoff.Permanent(err)
		}

		return res, err
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(max(policy.MaxAttempts, 1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next", next).Msg("transient store failure, retrying")
		}),
	)
	if err == nil {
		return res, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return res, permanent.Err
	}

	if IsTransient(err) {
		log.Error().Err(err).Int("attempts", attempt).Msg("store unavailable after retries")

		return res, fmt.Errorf("%w: %w", failure.ServiceUnavailable("store temporarily unavailable"), err)
	}

	return res, err
}
