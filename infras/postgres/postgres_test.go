package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hotelops/infras/postgres"
	"hotelops/shared/constant"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsErrorCode(t *testing.T) {
	exclusion := &pq.Error{Code: constant.PqErrorCodeExclusionViolation, Constraint: "bookings_no_overlap"}
	wrapped := fmt.Errorf("failed to insert data (booking): %w", exclusion)

	assert.True(t, postgres.IsErrorCode(wrapped, constant.PqErrorCodeExclusionViolation))
	assert.False(t, postgres.IsErrorCode(wrapped, constant.PqErrorCodeUniqueViolation))
	assert.False(t, postgres.IsErrorCode(errors.New("plain"), constant.PqErrorCodeExclusionViolation))
	assert.Equal(t, "bookings_no_overlap", postgres.ConstraintName(wrapped))
	assert.Empty(t, postgres.ConstraintName(nil))
}

func TestTxFromContext(t *testing.T) {
	_, ok := postgres.TxFromContext(context.Background())
	assert.False(t, ok)
}
