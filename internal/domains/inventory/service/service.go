package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Inventory=MockInventoryService

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelops/config"
	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	"hotelops/internal/domains/inventory/model"
	"hotelops/internal/domains/inventory/model/dto"
	"hotelops/internal/domains/inventory/repository"
	resourceModel "hotelops/internal/domains/resource/model"
	resource "hotelops/internal/domains/resource/service"
	task "hotelops/internal/domains/task/service"
	"hotelops/shared"
	"hotelops/shared/cache"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/event"
	"hotelops/shared/failure"
	"hotelops/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetItem    = "inventory:item"
	cacheGetAllItem = "inventory:items"
)

type Inventory interface {
	SubmitRequest(ctx context.Context, req dto.SubmitRequest, actor shared.Actor) (res dto.RequestResponse, err error)
	Decide(ctx context.Context, id string, req dto.DecideRequest, actor shared.Actor) (res dto.RequestResponse, err error)
	GetRequests(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRequestsResponse, err error)
	CreateItem(ctx context.Context, req dto.CreateItemRequest, actor shared.Actor) (res dto.ItemResponse, err error)
	GetItems(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetItemsResponse, err error)
	GetItem(ctx context.Context, id string) (res dto.ItemResponse, err error)
}

type serviceImpl struct {
	items     repository.Item
	requests  repository.Request
	resource  resource.Resource
	task      task.Task
	tx        postgres.Transactor
	publisher event.Publisher
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	items repository.Item,
	requests repository.Request,
	resource resource.Resource,
	task task.Task,
	tx postgres.Transactor,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Inventory {
	return &serviceImpl{
		items:     items,
		requests:  requests,
		resource:  resource,
		task:      task,
		tx:        tx,
		publisher: publisher,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func (s *serviceImpl) SubmitRequest(ctx context.Context, req dto.SubmitRequest, actor shared.Actor) (res dto.RequestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.SubmitRequest")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsStaff() {
		return res, failure.ForbiddenError
	}

	request := req.ToModel(actor.ID)

	switch request.Action {
	case model.ActionRestock:
		if request.Quantity <= 0 {
			return res, failure.BadRequestFromString("quantity must be greater than 0 for a restock") // nolint:wrapcheck
		}
	case model.ActionReplacement:
		if request.Reason == nil {
			return res, failure.BadRequestFromString("reason is required for a replacement") // nolint:wrapcheck
		}
	default:
		return res, failure.BadRequestFromString("action must be restock or replacement") // nolint:wrapcheck
	}

	room, err := s.resource.Find(ctx, request.ResourceID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if room.Kind != resourceModel.KindRoom {
		return res, failure.BadRequestFromString("inventory requests can only target rooms") // nolint:wrapcheck
	}

	if _, err = s.mustGetItem(ctx, request.ItemID); err != nil {
		return res, err
	}

	err = s.requests.Insert(ctx, request)
	if postgres.IsErrorCode(err, constant.PqErrorCodeFkViolation) {
		return res, failure.NotFound("room or item not found") // nolint:wrapcheck
	}

	if postgres.IsErrorCode(err, constant.PqErrorCodeCheckViolation) {
		return res, failure.BadRequestFromString("quantity is out of range for this action") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to submit inventory request")

		return res, fmt.Errorf("failed to submit inventory request: %w", err)
	}

	log.Info().Str("request", request.ID).Str("action", string(request.Action)).Str("actor", actor.ID).Msg("inventory request submitted")

	res.FromModel(request)

	return res, nil
}

// Decide moves a pending request to approved or rejected. The state change,
// the stock increment and the derived task commit together.
func (s *serviceImpl) Decide(ctx context.Context, id string, req dto.DecideRequest, actor shared.Actor) (res dto.RequestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Decide")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return res, failure.ForbiddenError
	}

	if !req.Decision.IsValid() {
		return res, failure.BadRequestFromString("decision must be approve or reject") // nolint:wrapcheck
	}

	var (
		request model.Request
		taskID  string
	)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error

		taskID = constant.Empty

		request, err = s.mustGetRequest(ctx, id)
		if err != nil {
			return err
		}

		if !request.Pending() {
			return failure.InvalidTransition(model.RequestEntityName, string(request.Status), string(req.Decision.Status())) // nolint:wrapcheck
		}

		now := timezone.Now()
		update := map[string]any{
			model.FieldStatus:        req.Decision.Status(),
			model.FieldDecidedBy:     actor.ID,
			model.FieldDecidedAt:     now,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: actor.ID,
		}

		pending := shared.And(
			shared.FilterEq(model.FieldID, id, model.RequestTableName),
			shared.FilterEq(model.FieldStatus, model.StatusPending, model.RequestTableName),
		)

		rows, err := s.requests.UpdateCount(ctx, update, pending)
		if err != nil {
			log.Error().Err(err).Str("request", id).Msg("failed to decide inventory request")

			return fmt.Errorf("failed to decide inventory request: %w", err)
		}

		if rows == 0 {
			return s.lostDecision(ctx, id, req.Decision)
		}

		request.Status = req.Decision.Status()
		request.DecidedBy = &actor.ID
		request.DecidedAt = &now
		request.ModifiedAt = now
		request.ModifiedBy = actor.ID

		if request.Status != model.StatusApproved {
			return nil
		}

		item, err := s.mustGetItem(ctx, request.ItemID)
		if err != nil {
			return err
		}

		if request.Action == model.ActionRestock {
			item.Stock, err = s.items.AddStock(ctx, item.ID, request.Quantity, actor.ID, now)
			if errors.Is(err, sql.ErrNoRows) {
				return failure.NotFound("inventory item not found") // nolint:wrapcheck
			}

			if err != nil {
				return fmt.Errorf("failed to restock item: %w", err)
			}
		}

		derived, err := s.task.DeriveTasksForRequest(ctx, request, item)
		if err != nil {
			return fmt.Errorf("failed to derive request task: %w", err)
		}

		taskID = derived.ID

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	log.Info().Str("request", id).Str("status", string(request.Status)).Str("actor", actor.ID).Msg("inventory request decided")

	s.invalidateItem(ctx, request.ItemID)

	res.FromModel(request)
	res.TaskID = taskID

	s.publisher.Publish(ctx, event.TopicInventoryRequestDecided, request.ID, actor.ID, res)

	return res, nil
}

// lostDecision reports the state a concurrent decider left behind.
func (s *serviceImpl) lostDecision(ctx context.Context, id string, decision model.Decision) error {
	current, err := s.mustGetRequest(ctx, id)
	if err != nil {
		return err
	}

	return failure.InvalidTransition(model.RequestEntityName, string(current.Status), string(decision.Status())) // nolint:wrapcheck
}

func (s *serviceImpl) GetRequests(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRequestsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.GetRequests")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.requests.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count inventory requests")

		return res, fmt.Errorf("failed to count inventory requests: %w", err)
	}

	requests, err := s.requests.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventory requests")

		return res, fmt.Errorf("failed to get inventory requests: %w", err)
	}

	res.FromModels(requests, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) CreateItem(ctx context.Context, req dto.CreateItemRequest, actor shared.Actor) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.CreateItem")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return res, failure.ForbiddenError
	}

	item := req.ToModel(actor.ID)

	err = s.items.Insert(ctx, item)
	if postgres.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
		return res, failure.Conflict(fmt.Sprintf("inventory item %q already exists", item.Name)) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create inventory item")

		return res, fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.invalidateItem(ctx, constant.Empty)

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) GetItems(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetItemsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.GetItems")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllItem, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	total, err := s.items.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count inventory items")

		return res, fmt.Errorf("failed to count inventory items: %w", err)
	}

	items, err := s.items.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventory items")

		return res, fmt.Errorf("failed to get inventory items: %w", err)
	}

	res.FromModels(items, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inventory items to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetItem(ctx context.Context, id string) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.GetItem")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetItem, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	item, err := s.mustGetItem(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(item)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inventory item to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) mustGetItem(ctx context.Context, id string) (model.Item, error) {
	item, err := s.items.Get(ctx, shared.FilterByID(id, model.FieldID, model.ItemTableName))
	if err != nil {
		log.Error().Err(err).Str("item", id).Msg("failed to get inventory item")

		return item, fmt.Errorf("failed to get inventory item: %w", err)
	}

	if item.ID == constant.Empty {
		return item, failure.NotFound("inventory item not found") // nolint:wrapcheck
	}

	return item, nil
}

func (s *serviceImpl) mustGetRequest(ctx context.Context, id string) (model.Request, error) {
	request, err := s.requests.Get(ctx, shared.FilterByID(id, model.FieldID, model.RequestTableName))
	if err != nil {
		log.Error().Err(err).Str("request", id).Msg("failed to get inventory request")

		return request, fmt.Errorf("failed to get inventory request: %w", err)
	}

	if request.ID == constant.Empty {
		return request, failure.NotFound("inventory request not found") // nolint:wrapcheck
	}

	return request, nil
}

func (s *serviceImpl) invalidateItem(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetItem, id)); err != nil {
				log.Error().Err(err).Str("item", id).Msg("failed to drop cached inventory item")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllItem)
	}()
}
