package dto

import (
	"strings"
	"time"

	"hotelops/internal/domains/booking/model"
	"hotelops/shared"
	gDto "hotelops/shared/dto"
	"hotelops/shared/timezone"
)

type CreateBookingRequest struct {
	ResourceID string `json:"resource_id" validate:"required,notblank"`
	// GuestIdentifier is the guest's email. Guests booking for themselves may omit it.
	GuestIdentifier string `json:"guest"     validate:"omitempty,max=254"`
	CheckIn         string `json:"check_in"  validate:"required,day"`
	CheckOut        string `json:"check_out" validate:"required,day"`
}

// Dates parses the stay as calendar days.
func (c *CreateBookingRequest) Dates() (checkIn, checkOut time.Time, err error) {
	checkIn, err = timezone.ParseDay(strings.TrimSpace(c.CheckIn))
	if err != nil {
		return checkIn, checkOut, err //nolint:wrapcheck
	}

	checkOut, err = timezone.ParseDay(strings.TrimSpace(c.CheckOut))

	return checkIn, checkOut, err //nolint:wrapcheck
}

type CancelBookingRequest struct {
	// Purge removes the row after cancelling. Administrators only.
	Purge bool `json:"purge"`
}

// ExternalBookingMessage is one reservation from the channel manager feed.
type ExternalBookingMessage struct {
	ExternalRef    string `json:"external_ref"    validate:"required,notblank,max=100"`
	ResourceNumber string `json:"resource_number" validate:"required,notblank"`
	Guest          string `json:"guest"           validate:"omitempty,max=254"`
	CheckIn        string `json:"check_in"        validate:"required,day"`
	CheckOut       string `json:"check_out"       validate:"required,day"`
}

func (m *ExternalBookingMessage) Dates() (checkIn, checkOut time.Time, err error) {
	req := CreateBookingRequest{CheckIn: m.CheckIn, CheckOut: m.CheckOut}

	return req.Dates()
}

type BookingResponse struct {
	ID          string `json:"id"`
	ResourceID  string `json:"resource_id"`
	GuestID     string `json:"guest_id,omitempty"`
	GuestRaw    string `json:"guest_raw,omitempty"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Status      string `json:"status"`
	Source      string `json:"source"`
	ExternalRef string `json:"external_ref,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.ResourceID = m.ResourceID
	r.CheckIn = timezone.FormatDay(m.CheckIn)
	r.CheckOut = timezone.FormatDay(m.CheckOut)
	r.Status = string(m.Status)
	r.Source = string(m.Source)

	if m.GuestID != nil {
		r.GuestID = *m.GuestID
	}

	if m.GuestRaw != nil {
		r.GuestRaw = *m.GuestRaw
	}

	if m.ExternalRef != nil {
		r.ExternalRef = *m.ExternalRef
	}

	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type RepairOptions struct {
	DryRun bool
	// Policy overrides the configured policy when set.
	Policy model.RepairPolicy
}

type RepairEntry struct {
	BookingID   string            `json:"booking_id"`
	GuestRaw    string            `json:"guest_raw"`
	GuestID     string            `json:"guest_id,omitempty"`
	Disposition model.Disposition `json:"disposition"`
}

type RepairSummary struct {
	DryRun    bool               `json:"dry_run"`
	Policy    model.RepairPolicy `json:"policy"`
	Updated   int                `json:"updated"`
	Deleted   int                `json:"deleted"`
	Archived  int                `json:"archived"`
	Entries   []RepairEntry      `json:"entries"`
	ReportURL string             `json:"report_url,omitempty"`
}

// Record tallies one entry.
func (s *RepairSummary) Record(entry RepairEntry) {
	switch entry.Disposition {
	case model.DispositionLinked:
		s.Updated++
	case model.DispositionDeleted:
		s.Deleted++
	case model.DispositionArchived:
		s.Archived++
	case model.DispositionSkipped:
	}

	s.Entries = append(s.Entries, entry)
}

// Changes is the number of bookings the pass touched.
func (s *RepairSummary) Changes() int {
	return s.Updated + s.Deleted + s.Archived
}
