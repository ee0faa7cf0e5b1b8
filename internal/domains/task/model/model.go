package model

import (
	"time"

	"hotelops/shared/model"
)

const (
	TableName  = "tasks"
	EntityName = "task"

	FieldID            = "id"
	FieldSeq           = "seq"
	FieldResourceID    = "resource_id"
	FieldType          = "type"
	FieldStatus        = "status"
	FieldScheduledDate = "scheduled_date"
	FieldBookingID     = "booking_id"
	FieldRequestID     = "request_id"
	FieldAssigneeID    = "assignee_id"
	FieldCompletedBy   = "completed_by"
	FieldCompletedAt   = "completed_at"
)

type Type string

const (
	TypeCleaning    Type = "cleaning"
	TypeInspection  Type = "inspection"
	TypeRestock     Type = "restock"
	TypeReplacement Type = "replacement"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is a unit of staff work. Seq is assigned by the database and orders
// tasks scheduled on the same day by creation.
type Task struct {
	ID            string     `db:"id"`
	Seq           int64      `db:"seq"            insert:"-"`
	Description   string     `db:"description"`
	ResourceID    string     `db:"resource_id"`
	Type          Type       `db:"type"`
	Status        Status     `db:"status"`
	ScheduledDate time.Time  `db:"scheduled_date"`
	BookingID     *string    `db:"booking_id"`
	RequestID     *string    `db:"request_id"`
	AssigneeID    *string    `db:"assignee_id"`
	CompletedBy   *string    `db:"completed_by"`
	CompletedAt   *time.Time `db:"completed_at"`
	model.Metadata
}

// AssignedToOther reports whether the task belongs to someone other than staffID.
func (t Task) AssignedToOther(staffID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID != staffID
}
