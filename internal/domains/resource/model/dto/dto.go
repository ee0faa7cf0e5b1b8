package dto

import (
	"strings"

	"hotelops/internal/domains/resource/model"
	"hotelops/shared"
	gDto "hotelops/shared/dto"
	gModel "hotelops/shared/model"
	"hotelops/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateResourceRequest struct {
	Number     string     `json:"number"     validate:"required,notblank,max=20"`
	Kind       model.Kind `json:"kind"       validate:"required,enum"`
	Capacity   int        `json:"capacity"   validate:"required,gt=0"`
	Price      float64    `json:"price"      validate:"min=0"`
	Facilities []string   `json:"facilities" validate:"omitempty,dive,notblank,max=60"`
}

func (c *CreateResourceRequest) ToModel(actor string) model.Resource {
	return model.Resource{
		ID:         uuid.NewString(),
		Number:     strings.TrimSpace(c.Number),
		Kind:       c.Kind,
		Capacity:   c.Capacity,
		Price:      c.Price,
		Facilities: pq.StringArray(normalizeFacilities(c.Facilities)),
		Metadata:   gModel.NewMetadata(actor, timezone.Now()),
	}
}

type UpdateResourceRequest struct {
	Capacity   *int           `db:"capacity"   json:"capacity"   validate:"omitempty,gt=0"`
	Price      *float64       `db:"price"      json:"price"      validate:"omitempty,min=0"`
	Facilities pq.StringArray `db:"facilities" json:"facilities" validate:"omitempty,dive,notblank,max=60" swaggertype:"array,string"`
}

func (u *UpdateResourceRequest) Normalize() {
	if u.Facilities != nil {
		u.Facilities = normalizeFacilities(u.Facilities)
	}
}

type SetMaintenanceRequest struct {
	UnderMaintenance *bool `json:"under_maintenance" validate:"required"`
}

type ResourceResponse struct {
	ID               string   `json:"id"`
	Number           string   `json:"number"`
	Kind             string   `json:"kind"`
	Capacity         int      `json:"capacity"`
	Price            float64  `json:"price"`
	UnderMaintenance bool     `json:"under_maintenance"`
	Status           string   `json:"status"`
	Facilities       []string `json:"facilities"`
	gDto.Metadata
}

func (r *ResourceResponse) FromModel(m model.Resource, occupied bool) {
	r.ID = m.ID
	r.Number = m.Number
	r.Kind = string(m.Kind)
	r.Capacity = m.Capacity
	r.Price = m.Price
	r.UnderMaintenance = m.UnderMaintenance
	r.Status = string(m.DeriveStatus(occupied))

	r.Facilities = []string(m.Facilities)
	if r.Facilities == nil {
		r.Facilities = []string{}
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetResourcesResponse struct {
	Resources []ResourceResponse `json:"resources"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetResourcesResponse) FromModels(models []model.Resource, occupied map[string]bool, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Resources = make([]ResourceResponse, len(models))
	for i, mod := range models {
		r.Resources[i].FromModel(mod, occupied[mod.ID])
	}
}

// ResourcePage is the cached form of a resource listing. Status is derived
// after the cache read so it never goes stale.
type ResourcePage struct {
	Resources []model.Resource `json:"resources"`
	Total     int              `json:"total"`
}

type AvailabilityResponse struct {
	ResourceID string `json:"resource_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Available  bool   `json:"available"`
}

func normalizeFacilities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if _, ok := seen[f]; ok || f == "" {
			continue
		}

		seen[f] = struct{}{}
		out = append(out, f)
	}

	return out
}
