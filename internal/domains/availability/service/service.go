package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"hotelops/infras/otel"
	"hotelops/internal/domains/availability/repository"
	"hotelops/shared/constant"
	"hotelops/shared/failure"

	"github.com/rs/zerolog/log"
)

// Checker answers whether a resource is free for a date range. Only confirmed
// bookings occupy a resource.
type Checker interface {
	IsAvailable(ctx context.Context, resourceID string, checkIn, checkOut time.Time, excludingBookingID string) (available bool, err error)
	OccupiedAt(ctx context.Context, resourceIDs []string, day time.Time) (occupied map[string]bool, err error)
}

type serviceImpl struct {
	repo repository.Availability
	otel otel.Otel
}

func New(repo repository.Availability, otel otel.Otel) Checker {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

// Overlaps reports whether [a, b) and [c, d) intersect. Touching ranges, where
// one ends on the day the other starts, do not.
func Overlaps(a, b, c, d time.Time) bool {
	return a.Before(d) && c.Before(b)
}

func (s *serviceImpl) IsAvailable(ctx context.Context, resourceID string, checkIn, checkOut time.Time, excludingBookingID string) (available bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.IsAvailable")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !checkOut.After(checkIn) {
		return false, failure.BadRequestFromString("check_out must be after check_in") // nolint:wrapcheck
	}

	count, err := s.repo.CountOverlapping(ctx, resourceID, checkIn, checkOut, excludingBookingID)
	if err != nil {
		log.Error().Err(err).Str("resource", resourceID).Msg("failed to check availability")

		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	return count == 0, nil
}

func (s *serviceImpl) OccupiedAt(ctx context.Context, resourceIDs []string, day time.Time) (occupied map[string]bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.OccupiedAt")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ids, err := s.repo.OccupiedResourceIDs(ctx, resourceIDs, day)
	if err != nil {
		log.Error().Err(err).Msg("failed to get occupied resources")

		return nil, fmt.Errorf("failed to get occupied resources: %w", err)
	}

	occupied = make(map[string]bool, len(resourceIDs))
	for _, id := range resourceIDs {
		occupied[id] = false
	}

	for _, id := range ids {
		occupied[id] = true
	}

	return occupied, nil
}
