package repository_test

import (
	"testing"
	"time"

	"hotelops/internal/domains/availability/repository"
	bookingModel "hotelops/internal/domains/booking/model"

	"github.com/stretchr/testify/assert"
)

func TestOverlapFilter(t *testing.T) {
	checkIn := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	filter := repository.OverlapFilter("room-101", checkIn, checkOut, "")
	where, args := filter.GetWhereClause()

	assert.Equal(t,
		"(bookings.resource_id = :resource_id AND bookings.status = :status AND bookings.check_in < :range_end AND bookings.check_out > :range_start)",
		where,
	)
	assert.Equal(t, map[string]any{
		"resource_id": "room-101",
		"status":      bookingModel.StatusConfirmed,
		"range_end":   checkOut,
		"range_start": checkIn,
	}, args)

	filter = repository.OverlapFilter("room-101", checkIn, checkOut, "booking-1")
	where, args = filter.GetWhereClause()

	assert.Contains(t, where, "bookings.id != :excluding_id")
	assert.Equal(t, "booking-1", args["excluding_id"])
}
