package dto

import (
	"strings"

	"hotelops/internal/domains/inventory/model"
	"hotelops/shared"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	gModel "hotelops/shared/model"
	"hotelops/shared/timezone"

	"github.com/google/uuid"
)

type CreateItemRequest struct {
	Name     string         `json:"name"     validate:"required,notblank,max=100"`
	Category model.Category `json:"category" validate:"required,enum"`
	Stock    int            `json:"stock"    validate:"min=0"`
}

func (c *CreateItemRequest) ToModel(actor string) model.Item {
	now := timezone.Now()

	return model.Item{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(c.Name),
		Category:      c.Category,
		Stock:         c.Stock,
		LastUpdated:   now,
		LastUpdatedBy: &actor,
		Metadata:      gModel.NewMetadata(actor, now),
	}
}

type ItemResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Stock         int    `json:"stock"`
	LastUpdated   string `json:"last_updated"`
	LastUpdatedBy string `json:"last_updated_by,omitempty"`
	gDto.Metadata
}

func (r *ItemResponse) FromModel(m model.Item) {
	r.ID = m.ID
	r.Name = m.Name
	r.Category = string(m.Category)
	r.Stock = m.Stock
	r.LastUpdated = timezone.Format(m.LastUpdated, constant.DateFormat)

	if m.LastUpdatedBy != nil {
		r.LastUpdatedBy = *m.LastUpdatedBy
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetItemsResponse struct {
	Items     []ItemResponse `json:"items"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetItemsResponse) FromModels(models []model.Item, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Items = make([]ItemResponse, len(models))
	for i, mod := range models {
		r.Items[i].FromModel(mod)
	}
}

type SubmitRequest struct {
	ResourceID string       `json:"resource_id" validate:"required,notblank"`
	ItemID     string       `json:"item_id"     validate:"required,notblank"`
	Action     model.Action `json:"action"      validate:"required,enum"`
	Quantity   int          `json:"quantity"    validate:"min=0"`
	Reason     string       `json:"reason"      validate:"omitempty,max=500"`
}

func (s *SubmitRequest) ToModel(actor string) model.Request {
	req := model.Request{
		ID:          uuid.NewString(),
		ResourceID:  s.ResourceID,
		ItemID:      s.ItemID,
		RequestedBy: actor,
		Action:      s.Action,
		Quantity:    s.Quantity,
		Status:      model.StatusPending,
		Metadata:    gModel.NewMetadata(actor, timezone.Now()),
	}

	if reason := strings.TrimSpace(s.Reason); reason != constant.Empty {
		req.Reason = &reason
	}

	return req
}

type DecideRequest struct {
	Decision model.Decision `json:"decision" validate:"required,enum"`
}

type RequestResponse struct {
	ID          string `json:"id"`
	ResourceID  string `json:"resource_id"`
	ItemID      string `json:"item_id"`
	RequestedBy string `json:"requested_by"`
	Action      string `json:"action"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	DecidedBy   string `json:"decided_by,omitempty"`
	DecidedAt   string `json:"decided_at,omitempty"`
	TaskID      string `json:"task_id,omitempty"`
	gDto.Metadata
}

func (r *RequestResponse) FromModel(m model.Request) {
	r.ID = m.ID
	r.ResourceID = m.ResourceID
	r.ItemID = m.ItemID
	r.RequestedBy = m.RequestedBy
	r.Action = string(m.Action)
	r.Quantity = m.Quantity
	r.Status = string(m.Status)

	if m.Reason != nil {
		r.Reason = *m.Reason
	}

	if m.DecidedBy != nil {
		r.DecidedBy = *m.DecidedBy
	}

	if m.DecidedAt != nil {
		r.DecidedAt = timezone.Format(*m.DecidedAt, constant.DateFormat)
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetRequestsResponse struct {
	Requests  []RequestResponse `json:"requests"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetRequestsResponse) FromModels(models []model.Request, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Requests = make([]RequestResponse, len(models))
	for i, mod := range models {
		r.Requests[i].FromModel(mod)
	}
}
