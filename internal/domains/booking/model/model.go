package model

import (
	"time"

	guestModel "hotelops/internal/domains/guest/model"
	"hotelops/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldResourceID  = "resource_id"
	FieldGuestID     = "guest_id"
	FieldGuestRaw    = "guest_raw"
	FieldCheckIn     = "check_in"
	FieldCheckOut    = "check_out"
	FieldStatus      = "status"
	FieldSource      = "source"
	FieldExternalRef = "external_ref"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusArchived  Status = "archived"
)

type Source string

const (
	SourceDirect   Source = "direct"
	SourceExternal Source = "external"
)

type Booking struct {
	ID          string    `db:"id"`
	ResourceID  string    `db:"resource_id"`
	GuestID     *string   `db:"guest_id"`
	GuestRaw    *string   `db:"guest_raw"`
	CheckIn     time.Time `db:"check_in"`
	CheckOut    time.Time `db:"check_out"`
	Status      Status    `db:"status"`
	Source      Source    `db:"source"`
	ExternalRef *string   `db:"external_ref"`
	model.Metadata
}

// GuestRef reads the persisted pair back into the sum type.
func (b Booking) GuestRef() guestModel.Ref {
	if b.GuestID != nil && *b.GuestID != "" {
		return guestModel.Resolved{ID: *b.GuestID}
	}

	raw := ""
	if b.GuestRaw != nil {
		raw = *b.GuestRaw
	}

	return guestModel.Unresolved{Raw: raw}
}

// SetGuestRef stores ref so exactly one of guest_id and guest_raw is set.
func (b *Booking) SetGuestRef(ref guestModel.Ref) {
	switch r := ref.(type) {
	case guestModel.Resolved:
		id := r.ID
		b.GuestID = &id
		b.GuestRaw = nil
	case guestModel.Unresolved:
		raw := r.Raw
		b.GuestID = nil
		b.GuestRaw = &raw
	}
}

// OwnedBy reports whether the booking is linked to guestID.
func (b Booking) OwnedBy(guestID string) bool {
	return b.GuestID != nil && *b.GuestID == guestID
}

// RepairPolicy decides what happens to a booking whose guest stays unresolved.
type RepairPolicy string

const (
	RepairPolicyDelete  RepairPolicy = "delete"
	RepairPolicyArchive RepairPolicy = "archive"
)

func (p RepairPolicy) IsValid() bool {
	return p == RepairPolicyDelete || p == RepairPolicyArchive
}

// Disposition is the outcome of repairing one booking.
type Disposition string

const (
	DispositionLinked   Disposition = "linked"
	DispositionDeleted  Disposition = "deleted"
	DispositionArchived Disposition = "archived"
	DispositionSkipped  Disposition = "skipped"
)
