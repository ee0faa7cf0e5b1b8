package task

import (
	"net/http"
	"strconv"

	"hotelops/infras/otel"
	"hotelops/internal/domains/task/model/dto"
	"hotelops/internal/domains/task/service"
	"hotelops/shared"
	"hotelops/shared/constant"
	"hotelops/shared/failure"
	"hotelops/shared/validator"
	"hotelops/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const queryStaff = "staff"

type Handler struct {
	service service.Task
	otel    otel.Otel
}

func New(service service.Task, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tasks", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.ListTasks)
		routerGroup.Get("/{id}", handler.GetTaskByID)
		routerGroup.Patch("/{id}/complete", handler.CompleteTask)
		routerGroup.Patch("/{id}/assign", handler.AssignTask)
	})
}

func intParam(r *http.Request, name string, fallback int, invalid error) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid
	}

	return value, nil
}

// ListTasks pages through the tasks visible to a staff member.
// @Summary List tasks
// @Description Tasks assigned to the staff member plus unassigned ones, ordered by scheduled date.
// @Tags Task
// @Produce json
// @Param staff query string false "Staff ID, defaults to the caller. Administrators may pass any staff ID."
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size, 1 to 100"
// @Success 200 {object} response.Data[dto.ListTasksResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tasks [get]
// @Security BearerAuth
func (handler *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ListTasks")
	defer scope.End()

	page, err := intParam(r, constant.RequestParamPage, constant.DefaultValuePage, failure.InvalidPageParam)
	if err != nil {
		response.WithError(w, err)

		return
	}

	limit, err := intParam(r, constant.RequestParamLimit, constant.DefaultValueLimit, failure.InvalidLimitParam)
	if err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.ListTasks(ctx, r.URL.Query().Get(queryStaff), page, limit, shared.ActorFromContext(ctx))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list tasks")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetTaskByID retrieves one task.
// @Summary Get a task
// @Tags Task
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Data[dto.TaskResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tasks/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTaskByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get task")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CompleteTask marks a pending task as done.
// @Summary Complete a task
// @Tags Task
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Data[dto.TaskResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "INVALID_TRANSITION"
// @Failure 500 {object} response.Error
// @Router /v1/tasks/{id}/complete [patch]
// @Security BearerAuth
func (handler *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CompleteTask")
	defer scope.End()

	actor := shared.ActorFromContext(ctx)

	res, err := handler.service.Complete(ctx, chi.URLParam(r, constant.RequestParamID), actor)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to complete task")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Task completed by user " + actor.ID)

	response.WithJSON(w, http.StatusOK, res)
}

// AssignTask hands a pending task to a staff member.
// @Summary Assign a task
// @Tags Task
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.AssignTaskRequest true "Assign Task Request"
// @Success 200 {object} response.Data[dto.TaskResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "INVALID_TRANSITION"
// @Failure 500 {object} response.Error
// @Router /v1/tasks/{id}/assign [patch]
// @Security BearerAuth
func (handler *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AssignTask")
	defer scope.End()

	req := dto.AssignTaskRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Assign(ctx, chi.URLParam(r, constant.RequestParamID), req, shared.ActorFromContext(ctx))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to assign task")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
