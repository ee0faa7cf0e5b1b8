package model

import (
	"strings"

	"hotelops/shared/model"
)

const (
	TableName  = "guests"
	EntityName = "guest"

	FieldID       = "id"
	FieldEmail    = "email"
	FieldFullName = "full_name"
	FieldRole     = "role"
	FieldStatus   = "status"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleStaff, RoleAdmin:
		return true
	}

	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusSuspended
}

type Guest struct {
	ID       string  `db:"id"`
	Email    string  `db:"email"`
	FullName *string `db:"full_name"`
	Role     Role    `db:"role"`
	Status   Status  `db:"status"`
	model.Metadata
}

func (g Guest) Active() bool {
	return g.Status == StatusActive
}

// NormalizeEmail is the canonical form every identifier is matched on.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Ref is the link a booking holds to its guest: either a canonical guest id or
// the raw identifier that could not be matched yet.
type Ref interface {
	isRef()
}

type Resolved struct {
	ID string
}

type Unresolved struct {
	Raw string
}

func (Resolved) isRef()   {}
func (Unresolved) isRef() {}
