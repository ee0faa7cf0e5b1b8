package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	"hotelops/internal/domains/inventory/model"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/logger"
	gRepo "hotelops/shared/repository"
)

type Item interface {
	Insert(ctx context.Context, model model.Item) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Item, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Item, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	// AddStock increments stock in place and stamps who changed it.
	AddStock(ctx context.Context, id string, quantity int, actor string, at time.Time) (stock int, err error)
}

type Request interface {
	Insert(ctx context.Context, model model.Request) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Request, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Request, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateCount(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type itemRepositoryImpl struct {
	gRepo.Repository[model.Item]
	db   *postgres.Connection
	otel otel.Otel
}

type requestRepositoryImpl struct {
	gRepo.Repository[model.Request]
}

func NewItem(db *postgres.Connection, otel otel.Otel) Item {
	return &itemRepositoryImpl{
		Repository: gRepo.NewRepository[model.Item](model.ItemEntityName, model.ItemTableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func NewRequest(db *postgres.Connection, otel otel.Otel) Request {
	return &requestRepositoryImpl{
		Repository: gRepo.NewRepository[model.Request](model.RequestEntityName, model.RequestTableName, model.FieldID, db, otel),
	}
}

// AddStock returns the stock after the increment. A missing item surfaces as
// a wrapped sql.ErrNoRows.
func (r *itemRepositoryImpl) AddStock(ctx context.Context, id string, quantity int, actor string, at time.Time) (stock int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.ItemEntityName+".AddStock")
	defer scope.End()

	query := fmt.Sprintf(
		"UPDATE %[1]s SET %[2]s = %[2]s + :quantity, %[3]s = :at, %[4]s = :actor, %[5]s = :at, %[6]s = :actor WHERE %[7]s = :id RETURNING %[2]s",
		model.ItemTableName, model.FieldStock, model.FieldLastUpdated, model.FieldLastUpdatedBy,
		constant.FieldModifiedAt, constant.FieldModifiedBy, model.FieldID,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"id":       id,
		"quantity": quantity,
		"actor":    actor,
		"at":       at,
	}

	err = r.db.Do(ctx, func(ctx context.Context) error {
		stmt, err := r.db.Writer(ctx).PrepareNamedContext(ctx, query)
		if err != nil {
			return err //nolint:wrapcheck
		}
		defer stmt.Close()

		return stmt.GetContext(ctx, &stock, args) //nolint:wrapcheck
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to add stock: %w", err)
	}

	return stock, nil
}
