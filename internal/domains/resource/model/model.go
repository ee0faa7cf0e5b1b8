package model

import (
	"hotelops/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "resources"
	EntityName = "resource"

	FieldID               = "id"
	FieldNumber           = "number"
	FieldKind             = "kind"
	FieldCapacity         = "capacity"
	FieldPrice            = "price"
	FieldUnderMaintenance = "under_maintenance"
	FieldFacilities       = "facilities"
)

type Kind string

const (
	KindRoom Kind = "room"
	KindHall Kind = "hall"
)

func (k Kind) IsValid() bool {
	return k == KindRoom || k == KindHall
}

// Status is derived on read and never stored.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBooked      Status = "booked"
	StatusMaintenance Status = "maintenance"
)

type Resource struct {
	ID               string         `db:"id"`
	Number           string         `db:"number"`
	Kind             Kind           `db:"kind"`
	Capacity         int            `db:"capacity"`
	Price            float64        `db:"price"`
	UnderMaintenance bool           `db:"under_maintenance"`
	Facilities       pq.StringArray `db:"facilities"`
	model.Metadata
}

// DeriveStatus applies maintenance first, then occupancy.
func (r Resource) DeriveStatus(occupied bool) Status {
	switch {
	case r.UnderMaintenance:
		return StatusMaintenance
	case occupied:
		return StatusBooked
	default:
		return StatusAvailable
	}
}
