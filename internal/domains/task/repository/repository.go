package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	"hotelops/internal/domains/task/model"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/logger"
	gRepo "hotelops/shared/repository"
)

type Task interface {
	// InsertIfAbsent inserts the task unless one with the same origin and type
	// already exists. It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, task model.Task) (inserted bool, err error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Task, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Task, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateCount(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Task]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Task {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Task](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// InsertIfAbsent relies on ON CONFLICT so a duplicate does not abort the
// surrounding transaction the way a unique violation would.
func (r *repositoryImpl) InsertIfAbsent(ctx context.Context, task model.Task) (inserted bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".InsertIfAbsent")
	defer scope.End()

	placeholders := make([]string, len(r.InsertColumns))
	for i, col := range r.InsertColumns {
		placeholders[i] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		model.TableName, strings.Join(r.InsertColumns, ", "), strings.Join(placeholders, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = r.db.Do(ctx, func(ctx context.Context) error {
		result, err := r.db.Writer(ctx).NamedExecContext(ctx, query, task)
		if err != nil {
			return err //nolint:wrapcheck
		}

		affected, err := result.RowsAffected()
		inserted = affected > 0

		return err //nolint:wrapcheck
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to insert task: %w", err)
	}

	return inserted, nil
}
