package dto

import (
	"hotelops/internal/domains/task/model"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/timezone"
)

type TaskResponse struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Description   string `json:"description"`
	ResourceID    string `json:"resource_id"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	ScheduledDate string `json:"scheduled_date"`
	BookingID     string `json:"booking_id,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	AssigneeID    string `json:"assignee_id,omitempty"`
	CompletedBy   string `json:"completed_by,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
	gDto.Metadata
}

func (r *TaskResponse) FromModel(m model.Task) {
	r.ID = m.ID
	r.Seq = m.Seq
	r.Description = m.Description
	r.ResourceID = m.ResourceID
	r.Type = string(m.Type)
	r.Status = string(m.Status)
	r.ScheduledDate = timezone.FormatDay(m.ScheduledDate)
	r.BookingID = deref(m.BookingID)
	r.RequestID = deref(m.RequestID)
	r.AssigneeID = deref(m.AssigneeID)
	r.CompletedBy = deref(m.CompletedBy)

	if m.CompletedAt != nil {
		r.CompletedAt = timezone.Format(*m.CompletedAt, constant.DateFormat)
	}

	r.Metadata.FromModel(m.Metadata)
}

type ListTasksResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	TotalData  int            `json:"total_data"`
}

func (r *ListTasksResponse) FromModels(models []model.Task, page, totalPages, totalData int) {
	r.Page = page
	r.TotalPages = totalPages
	r.TotalData = totalData

	r.Tasks = make([]TaskResponse, len(models))
	for i, mod := range models {
		r.Tasks[i].FromModel(mod)
	}
}

type AssignTaskRequest struct {
	StaffID string `json:"staff_id" validate:"required,notblank"`
}

func deref(s *string) string {
	if s == nil {
		return constant.Empty
	}

	return *s
}
