package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	bookingModel "hotelops/internal/domains/booking/model"
	"hotelops/shared"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/logger"
)

const entityName = "availability"

type Availability interface {
	CountOverlapping(ctx context.Context, resourceID string, checkIn, checkOut time.Time, excludingID string) (count int, err error)
	OccupiedResourceIDs(ctx context.Context, resourceIDs []string, day time.Time) (ids []string, err error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Availability {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

// OverlapFilter selects confirmed bookings of resourceID intersecting the
// half-open range [checkIn, checkOut).
func OverlapFilter(resourceID string, checkIn, checkOut time.Time, excludingID string) gDto.FilterGroup {
	filters := []any{
		shared.FilterEq(bookingModel.FieldResourceID, resourceID, bookingModel.TableName),
		shared.FilterEq(bookingModel.FieldStatus, bookingModel.StatusConfirmed, bookingModel.TableName),
		gDto.Filter{
			Field:    bookingModel.FieldCheckIn,
			ArgName:  "range_end",
			Value:    checkOut,
			Operator: gDto.FilterOperatorLess,
			Table:    bookingModel.TableName,
		},
		gDto.Filter{
			Field:    bookingModel.FieldCheckOut,
			ArgName:  "range_start",
			Value:    checkIn,
			Operator: gDto.FilterOperatorGreater,
			Table:    bookingModel.TableName,
		},
	}

	if excludingID != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    bookingModel.FieldID,
			ArgName:  "excluding_id",
			Value:    excludingID,
			Operator: gDto.FilterOperatorNotEq,
			Table:    bookingModel.TableName,
		})
	}

	return shared.And(filters...)
}

// CountOverlapping always reads from the primary, joining the caller's
// transaction when one is open, so a check-then-insert sees its own writes.
func (r *repositoryImpl) CountOverlapping(ctx context.Context, resourceID string, checkIn, checkOut time.Time, excludingID string) (count int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+entityName+".CountOverlapping")
	defer scope.End()

	filter := OverlapFilter(resourceID, checkIn, checkOut, excludingID)
	where, args := filter.GetWhereClause()

	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE %s", bookingModel.TableName, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = r.db.Do(ctx, func(ctx context.Context) error {
		stmt, err := r.db.Writer(ctx).PrepareNamedContext(ctx, query)
		if err != nil {
			return err //nolint:wrapcheck
		}
		defer stmt.Close()

		return stmt.GetContext(ctx, &count, args) //nolint:wrapcheck
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}

	return count, nil
}

func (r *repositoryImpl) OccupiedResourceIDs(ctx context.Context, resourceIDs []string, day time.Time) (ids []string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+entityName+".OccupiedResourceIDs")
	defer scope.End()

	if len(resourceIDs) == 0 {
		return []string{}, nil
	}

	filter := shared.And(
		gDto.Filter{
			Field:    bookingModel.FieldResourceID,
			Value:    resourceIDs,
			Operator: gDto.FilterOperatorIn,
			Table:    bookingModel.TableName,
		},
		shared.FilterEq(bookingModel.FieldStatus, bookingModel.StatusConfirmed, bookingModel.TableName),
		gDto.Filter{
			Field:    bookingModel.FieldCheckIn,
			ArgName:  "day_check_in",
			Value:    day,
			Operator: gDto.FilterOperatorLessEq,
			Table:    bookingModel.TableName,
		},
		gDto.Filter{
			Field:    bookingModel.FieldCheckOut,
			ArgName:  "day_check_out",
			Value:    day,
			Operator: gDto.FilterOperatorGreater,
			Table:    bookingModel.TableName,
		},
	)
	where, args := filter.GetWhereClause()

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s", bookingModel.FieldResourceID, bookingModel.TableName, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = r.db.Do(ctx, func(ctx context.Context) error {
		ids = nil

		stmt, err := r.db.Reader(ctx).PrepareNamedContext(ctx, query)
		if err != nil {
			return err //nolint:wrapcheck
		}
		defer stmt.Close()

		return stmt.SelectContext(ctx, &ids, args) //nolint:wrapcheck
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get occupied resources: %w", err)
	}

	return ids, nil
}
