package model_test

import (
	"testing"

	"hotelops/internal/domains/booking/model"
	guestModel "hotelops/internal/domains/guest/model"

	"github.com/stretchr/testify/assert"
)

func TestBooking_GuestRef(t *testing.T) {
	var booking model.Booking

	booking.SetGuestRef(guestModel.Unresolved{Raw: "Walk-In@Hotel.Test"})
	assert.Nil(t, booking.GuestID)
	assert.Equal(t, guestModel.Unresolved{Raw: "Walk-In@Hotel.Test"}, booking.GuestRef())
	assert.False(t, booking.OwnedBy("guest-1"))

	booking.SetGuestRef(guestModel.Resolved{ID: "guest-1"})
	assert.Nil(t, booking.GuestRaw)
	assert.Equal(t, guestModel.Resolved{ID: "guest-1"}, booking.GuestRef())
	assert.True(t, booking.OwnedBy("guest-1"))
}

func TestRepairPolicy_IsValid(t *testing.T) {
	assert.True(t, model.RepairPolicyDelete.IsValid())
	assert.True(t, model.RepairPolicyArchive.IsValid())
	assert.False(t, model.RepairPolicy("keep").IsValid())
}
