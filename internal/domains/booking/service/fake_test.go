package service_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	availability "hotelops/internal/domains/availability/service"
	"hotelops/internal/domains/booking/model"
	gDto "hotelops/shared/dto"
)

// memoryStore keeps bookings in memory and evaluates the filter groups the
// service and the availability checker build.
type memoryStore struct {
	mu       sync.Mutex
	bookings []model.Booking
}

func column(b model.Booking, field string) any {
	switch field {
	case model.FieldID:
		return b.ID
	case model.FieldResourceID:
		return b.ResourceID
	case model.FieldGuestID:
		if b.GuestID == nil {
			return nil
		}

		return *b.GuestID
	case model.FieldStatus:
		return string(b.Status)
	case model.FieldExternalRef:
		if b.ExternalRef == nil {
			return nil
		}

		return *b.ExternalRef
	case model.FieldCheckIn:
		return b.CheckIn
	case model.FieldCheckOut:
		return b.CheckOut
	}

	panic("unsupported column " + field)
}

func compare(a, b any) int {
	if at, ok := a.(time.Time); ok {
		return at.Compare(b.(time.Time)) //nolint:forcetypeassert
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func matches(b model.Booking, clause any) bool {
	switch c := clause.(type) {
	case gDto.FilterGroup:
		or := c.Operator == gDto.FilterGroupOperatorOr
		for _, f := range c.Filters {
			ok := matches(b, f)
			if or && ok {
				return true
			}

			if !or && !ok {
				return false
			}
		}

		return !or || len(c.Filters) == 0
	case gDto.Filter:
		value := column(b, c.Field)

		switch c.Operator {
		case gDto.FilterIsNull:
			return value == nil
		case gDto.FilterIsNotNull:
			return value != nil
		}

		if value == nil {
			return false
		}

		switch c.Operator {
		case gDto.FilterOperatorEq:
			return compare(value, c.Value) == 0
		case gDto.FilterOperatorNotEq:
			return compare(value, c.Value) != 0
		case gDto.FilterOperatorLess:
			return compare(value, c.Value) < 0
		case gDto.FilterOperatorGreater:
			return compare(value, c.Value) > 0
		case gDto.FilterOperatorLessEq:
			return compare(value, c.Value) <= 0
		case gDto.FilterOperatorGreaterEq:
			return compare(value, c.Value) >= 0
		}
	}

	panic(fmt.Sprintf("unsupported clause %#v", clause))
}

func (s *memoryStore) find(filter gDto.FilterGroup) []model.Booking {
	out := []model.Booking{}

	for _, b := range s.bookings {
		if matches(b, filter) {
			out = append(out, b)
		}
	}

	return out
}

func (s *memoryStore) Insert(_ context.Context, booking model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = append(s.bookings, booking)

	return nil
}

func (s *memoryStore) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.find(filter)
	if len(found) == 0 {
		return model.Booking{}, nil
	}

	return found[0], nil
}

func (s *memoryStore) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.find(filter), nil
}

func (s *memoryStore) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.find(filter)), nil
}

func (s *memoryStore) UpdateCount(_ context.Context, update map[string]any, filter gDto.FilterGroup) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows int64

	for i, b := range s.bookings {
		if !matches(b, filter) {
			continue
		}

		if status, ok := update[model.FieldStatus].(model.Status); ok {
			b.Status = status
		}

		if id, ok := update[model.FieldGuestID].(string); ok {
			b.GuestID = &id
		}

		if raw, ok := update[model.FieldGuestRaw]; ok && raw == nil {
			b.GuestRaw = nil
		}

		s.bookings[i] = b
		rows++
	}

	return rows, nil
}

func (s *memoryStore) DeleteCount(_ context.Context, filter gDto.FilterGroup) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.bookings)
	s.bookings = slices.DeleteFunc(s.bookings, func(b model.Booking) bool { return matches(b, filter) })

	return int64(before - len(s.bookings)), nil
}

func (s *memoryStore) byID(id string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}

	return model.Booking{}, false
}

// memoryAvailability answers overlap queries from the same store.
type memoryAvailability struct {
	store *memoryStore
}

func (a memoryAvailability) CountOverlapping(_ context.Context, resourceID string, checkIn, checkOut time.Time, excludingID string) (int, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	count := 0

	for _, b := range a.store.bookings {
		if b.ResourceID != resourceID || b.Status != model.StatusConfirmed || b.ID == excludingID {
			continue
		}

		if availability.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			count++
		}
	}

	return count, nil
}

func (a memoryAvailability) OccupiedResourceIDs(_ context.Context, resourceIDs []string, day time.Time) ([]string, error) {
	ids := []string{}

	for _, id := range resourceIDs {
		n, _ := a.CountOverlapping(context.Background(), id, day, day.AddDate(0, 0, 1), "")
		if n > 0 {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
