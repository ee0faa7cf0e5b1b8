package model

import (
	"time"

	"hotelops/shared/model"
)

const (
	ItemTableName     = "inventory_items"
	ItemEntityName    = "inventory_item"
	RequestTableName  = "inventory_requests"
	RequestEntityName = "inventory_request"

	FieldID            = "id"
	FieldName          = "name"
	FieldCategory      = "category"
	FieldStock         = "stock"
	FieldLastUpdated   = "last_updated"
	FieldLastUpdatedBy = "last_updated_by"

	FieldResourceID  = "resource_id"
	FieldItemID      = "item_id"
	FieldRequestedBy = "requested_by"
	FieldAction      = "action"
	FieldQuantity    = "quantity"
	FieldReason      = "reason"
	FieldStatus      = "status"
	FieldDecidedBy   = "decided_by"
	FieldDecidedAt   = "decided_at"
)

type Category string

const (
	CategoryLinen          Category = "linen"
	CategoryToiletry       Category = "toiletry"
	CategoryMinibar        Category = "minibar"
	CategoryCleaningSupply Category = "cleaning_supply"
	CategoryFurniture      Category = "furniture"
	CategoryElectronics    Category = "electronics"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryLinen, CategoryToiletry, CategoryMinibar, CategoryCleaningSupply, CategoryFurniture, CategoryElectronics:
		return true
	default:
		return false
	}
}

type Action string

const (
	ActionRestock     Action = "restock"
	ActionReplacement Action = "replacement"
)

func (a Action) IsValid() bool {
	return a == ActionRestock || a == ActionReplacement
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is the target state of a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}

	return StatusRejected
}

type Item struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Category      Category  `db:"category"`
	Stock         int       `db:"stock"`
	LastUpdated   time.Time `db:"last_updated"`
	LastUpdatedBy *string   `db:"last_updated_by"`
	model.Metadata
}

type Request struct {
	ID          string     `db:"id"`
	ResourceID  string     `db:"resource_id"`
	ItemID      string     `db:"item_id"`
	RequestedBy string     `db:"requested_by"`
	Action      Action     `db:"action"`
	Quantity    int        `db:"quantity"`
	Reason      *string    `db:"reason"`
	Status      Status     `db:"status"`
	DecidedBy   *string    `db:"decided_by"`
	DecidedAt   *time.Time `db:"decided_at"`
	model.Metadata
}

func (r Request) Pending() bool {
	return r.Status == StatusPending
}
