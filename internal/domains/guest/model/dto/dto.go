package dto

import (
	"hotelops/internal/domains/guest/model"
	"hotelops/shared"
	gDto "hotelops/shared/dto"
)

type GuestResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	gDto.Metadata
}

func (r *GuestResponse) FromModel(m model.Guest) {
	r.ID = m.ID
	r.Email = m.Email
	r.Role = string(m.Role)
	r.Status = string(m.Status)

	if m.FullName != nil {
		r.FullName = *m.FullName
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetGuestsResponse struct {
	Guests    []GuestResponse `json:"guests"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetGuestsResponse) FromModels(models []model.Guest, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Guests = make([]GuestResponse, len(models))
	for i, mod := range models {
		r.Guests[i].FromModel(mod)
	}
}

type UpdateProfileRequest struct {
	Email    string  `json:"email"     validate:"omitempty,email,max=254"`
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
}

type ChangeRoleRequest struct {
	Role model.Role `json:"role" validate:"required,enum"`
}

type SetStatusRequest struct {
	Status model.Status `json:"status" validate:"required,enum"`
}

type ResolveResponse struct {
	Identifier string `json:"identifier"`
	Resolved   bool   `json:"resolved"`
	GuestID    string `json:"guest_id,omitempty"`
}

func (r *ResolveResponse) FromRef(identifier string, ref model.Ref) {
	r.Identifier = identifier

	if resolved, ok := ref.(model.Resolved); ok {
		r.Resolved = true
		r.GuestID = resolved.ID
	}
}
