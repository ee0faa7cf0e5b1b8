package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Task=MockTaskService

import (
	"context"
	"fmt"

	"hotelops/infras/otel"
	bookingModel "hotelops/internal/domains/booking/model"
	guestModel "hotelops/internal/domains/guest/model"
	guest "hotelops/internal/domains/guest/service"
	inventoryModel "hotelops/internal/domains/inventory/model"
	resourceModel "hotelops/internal/domains/resource/model"
	"hotelops/internal/domains/task/model"
	"hotelops/internal/domains/task/model/dto"
	"hotelops/internal/domains/task/repository"
	"hotelops/shared"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/event"
	"hotelops/shared/failure"
	gModel "hotelops/shared/model"
	"hotelops/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxPageSize = 100

type Task interface {
	DeriveTasksForBooking(ctx context.Context, booking bookingModel.Booking, resource resourceModel.Resource) (tasks []model.Task, err error)
	DeriveTasksForRequest(ctx context.Context, request inventoryModel.Request, item inventoryModel.Item) (task model.Task, err error)
	ListTasks(ctx context.Context, staffID string, page, pageSize int, actor shared.Actor) (res dto.ListTasksResponse, err error)
	Get(ctx context.Context, id string) (res dto.TaskResponse, err error)
	Complete(ctx context.Context, id string, actor shared.Actor) (res dto.TaskResponse, err error)
	Assign(ctx context.Context, id string, req dto.AssignTaskRequest, actor shared.Actor) (res dto.TaskResponse, err error)
	// CloseTasksForBooking completes the pending tasks of a booking that is being removed.
	CloseTasksForBooking(ctx context.Context, bookingID string, actor shared.Actor) (closed int64, err error)
}

type serviceImpl struct {
	repo      repository.Task
	guest     guest.Guest
	publisher event.Publisher
	otel      otel.Otel
}

func New(repo repository.Task, guest guest.Guest, publisher event.Publisher, otel otel.Otel) Task {
	return &serviceImpl{
		repo:      repo,
		guest:     guest,
		publisher: publisher,
		otel:      otel,
	}
}

// DeriveTasksForBooking schedules turnover work for the check-out day. Rooms
// get cleaning and inspection, halls only cleaning. Deriving twice for the
// same booking writes nothing new.
func (s *serviceImpl) DeriveTasksForBooking(ctx context.Context, booking bookingModel.Booking, resource resourceModel.Resource) (tasks []model.Task, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.DeriveTasksForBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	types := []model.Type{model.TypeCleaning}
	if resource.Kind == resourceModel.KindRoom {
		types = append(types, model.TypeInspection)
	}

	now := timezone.Now()
	bookingID := booking.ID

	for _, typ := range types {
		task := model.Task{
			ID:            uuid.NewString(),
			Description:   fmt.Sprintf("%s %s %s after check-out", typ, resource.Kind, resource.Number),
			ResourceID:    resource.ID,
			Type:          typ,
			Status:        model.StatusPending,
			ScheduledDate: booking.CheckOut,
			BookingID:     &bookingID,
			Metadata:      gModel.NewMetadata(booking.CreatedBy, now),
		}

		inserted, err := s.repo.InsertIfAbsent(ctx, task)
		if err != nil {
			log.Error().Err(err).Str("booking", booking.ID).Str("type", string(typ)).Msg("failed to derive booking task")

			return nil, fmt.Errorf("failed to derive booking task: %w", err)
		}

		if inserted {
			tasks = append(tasks, task)
		}
	}

	log.Info().Str("booking", booking.ID).Int("derived", len(tasks)).Msg("booking tasks derived")

	return tasks, nil
}

// DeriveTasksForRequest schedules the follow-up work of an approved inventory
// request for today.
func (s *serviceImpl) DeriveTasksForRequest(ctx context.Context, request inventoryModel.Request, item inventoryModel.Item) (task model.Task, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.DeriveTasksForRequest")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if request.Status != inventoryModel.StatusApproved {
		return task, failure.InvalidTransition(inventoryModel.RequestEntityName, string(request.Status), "scheduled") // nolint:wrapcheck
	}

	typ := model.TypeRestock
	description := fmt.Sprintf("restock %d x %s", request.Quantity, item.Name)

	if request.Action == inventoryModel.ActionReplacement {
		typ = model.TypeReplacement
		description = "replace " + item.Name
	}

	requestID := request.ID
	actor := request.RequestedBy

	if request.DecidedBy != nil {
		actor = *request.DecidedBy
	}

	task = model.Task{
		ID:            uuid.NewString(),
		Description:   description,
		ResourceID:    request.ResourceID,
		Type:          typ,
		Status:        model.StatusPending,
		ScheduledDate: timezone.Today(),
		RequestID:     &requestID,
		Metadata:      gModel.NewMetadata(actor, timezone.Now()),
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, task)
	if err != nil {
		log.Error().Err(err).Str("request", request.ID).Msg("failed to derive request task")

		return task, fmt.Errorf("failed to derive request task: %w", err)
	}

	if !inserted {
		log.Info().Str("request", request.ID).Msg("request task already derived")
	}

	return task, nil
}

// ListTasks returns the tasks a staff member can pick up: their own and the
// unassigned ones, earliest first.
func (s *serviceImpl) ListTasks(ctx context.Context, staffID string, page, pageSize int, actor shared.Actor) (res dto.ListTasksResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.ListTasks")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsStaff() {
		return res, failure.ForbiddenError
	}

	if staffID == constant.Empty {
		staffID = actor.ID
	}

	if staffID != actor.ID && !actor.IsAdmin() {
		return res, failure.Forbidden("staff can only list their own tasks") // nolint:wrapcheck
	}

	if page < 1 || pageSize < 1 || pageSize > maxPageSize {
		return res, failure.BadRequestFromString(fmt.Sprintf("page must be at least 1 and limit between 1 and %d", maxPageSize)) // nolint:wrapcheck
	}

	filter := VisibleTo(staffID)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count tasks")

		return res, fmt.Errorf("failed to count tasks: %w", err)
	}

	params := gDto.QueryParams{
		Page:    page,
		Limit:   pageSize,
		SortBy:  model.FieldScheduledDate,
		SortDir: gDto.SortDirAsc,
		ThenBy:  model.FieldSeq,
	}

	tasks, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get tasks")

		return res, fmt.Errorf("failed to get tasks: %w", err)
	}

	res.FromModels(tasks, page, shared.CalculateTotalPage(total, pageSize), total)

	return res, nil
}

// VisibleTo selects tasks assigned to staffID or to nobody.
func VisibleTo(staffID string) gDto.FilterGroup {
	return shared.And(gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			shared.FilterEq(model.FieldAssigneeID, staffID, model.TableName),
			gDto.Filter{Field: model.FieldAssigneeID, Operator: gDto.FilterIsNull, Table: model.TableName},
		},
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.TaskResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	task, err := s.mustGet(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(task)

	return res, nil
}

// Complete marks a pending task done. The update is keyed on the pending
// state so concurrent completions have exactly one winner.
func (s *serviceImpl) Complete(ctx context.Context, id string, actor shared.Actor) (res dto.TaskResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.Complete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsStaff() {
		return res, failure.ForbiddenError
	}

	task, err := s.mustGet(ctx, id)
	if err != nil {
		return res, err
	}

	if task.AssignedToOther(actor.ID) && !actor.IsAdmin() {
		return res, failure.Forbidden("task is assigned to another staff member") // nolint:wrapcheck
	}

	if task.Status != model.StatusPending {
		return res, failure.InvalidTransition(model.EntityName, string(task.Status), "completed") // nolint:wrapcheck
	}

	now := timezone.Now()
	update := map[string]any{
		model.FieldStatus:        model.StatusCompleted,
		model.FieldCompletedBy:   actor.ID,
		model.FieldCompletedAt:   now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor.ID,
	}

	rows, err := s.repo.UpdateCount(ctx, update, pendingTask(id))
	if err != nil {
		log.Error().Err(err).Str("task", id).Msg("failed to complete task")

		return res, fmt.Errorf("failed to complete task: %w", err)
	}

	if rows == 0 {
		return res, failure.InvalidTransition(model.EntityName, string(model.StatusCompleted), "completed") // nolint:wrapcheck
	}

	task.Status = model.StatusCompleted
	task.CompletedBy = &actor.ID
	task.CompletedAt = &now
	task.ModifiedAt = now
	task.ModifiedBy = actor.ID

	log.Info().Str("task", id).Str("actor", actor.ID).Msg("task completed")

	res.FromModel(task)
	s.publisher.Publish(ctx, event.TopicTaskCompleted, task.ID, actor.ID, res)

	return res, nil
}

func (s *serviceImpl) Assign(ctx context.Context, id string, req dto.AssignTaskRequest, actor shared.Actor) (res dto.TaskResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.Assign")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return res, failure.ForbiddenError
	}

	assignee, err := s.guest.Get(ctx, req.StaffID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if assignee.Role == string(guestModel.RoleGuest) || assignee.Status != string(guestModel.StatusActive) {
		return res, failure.BadRequestFromString("tasks can only be assigned to active staff") // nolint:wrapcheck
	}

	task, err := s.mustGet(ctx, id)
	if err != nil {
		return res, err
	}

	if task.Status != model.StatusPending {
		return res, failure.InvalidTransition(model.EntityName, string(task.Status), "assigned") // nolint:wrapcheck
	}

	now := timezone.Now()
	update := map[string]any{
		model.FieldAssigneeID:    assignee.ID,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor.ID,
	}

	rows, err := s.repo.UpdateCount(ctx, update, pendingTask(id))
	if err != nil {
		log.Error().Err(err).Str("task", id).Msg("failed to assign task")

		return res, fmt.Errorf("failed to assign task: %w", err)
	}

	if rows == 0 {
		return res, failure.InvalidTransition(model.EntityName, string(model.StatusCompleted), "assigned") // nolint:wrapcheck
	}

	task.AssigneeID = &assignee.ID
	task.ModifiedAt = now
	task.ModifiedBy = actor.ID

	log.Info().Str("task", id).Str("assignee", assignee.ID).Str("actor", actor.ID).Msg("task assigned")

	res.FromModel(task)

	return res, nil
}

func (s *serviceImpl) mustGet(ctx context.Context, id string) (model.Task, error) {
	task, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("task", id).Msg("failed to get task")

		return task, fmt.Errorf("failed to get task: %w", err)
	}

	if task.ID == constant.Empty {
		return task, failure.NotFound("task not found") // nolint:wrapcheck
	}

	return task, nil
}

func (s *serviceImpl) CloseTasksForBooking(ctx context.Context, bookingID string, actor shared.Actor) (closed int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".task.CloseTasksForBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := timezone.Now()
	update := map[string]any{
		model.FieldStatus:        model.StatusCompleted,
		model.FieldCompletedBy:   actor.ID,
		model.FieldCompletedAt:   now,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor.ID,
	}

	pending := shared.And(
		shared.FilterEq(model.FieldBookingID, bookingID, model.TableName),
		shared.FilterEq(model.FieldStatus, model.StatusPending, model.TableName),
	)

	closed, err = s.repo.UpdateCount(ctx, update, pending)
	if err != nil {
		log.Error().Err(err).Str("booking", bookingID).Msg("failed to close booking tasks")

		return 0, fmt.Errorf("failed to close booking tasks: %w", err)
	}

	log.Info().Str("booking", bookingID).Int64("closed", closed).Str("actor", actor.ID).Msg("booking tasks closed")

	return closed, nil
}

func pendingTask(id string) gDto.FilterGroup {
	return shared.And(
		shared.FilterEq(model.FieldID, id, model.TableName),
		shared.FilterEq(model.FieldStatus, model.StatusPending, model.TableName),
	)
}
