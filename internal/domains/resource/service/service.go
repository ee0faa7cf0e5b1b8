package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Resource=MockResourceService

import (
	"context"
	"fmt"
	"strings"

	"hotelops/config"
	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	availability "hotelops/internal/domains/availability/service"
	"hotelops/internal/domains/resource/model"
	"hotelops/internal/domains/resource/model/dto"
	"hotelops/internal/domains/resource/repository"
	"hotelops/shared"
	"hotelops/shared/cache"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/failure"
	"hotelops/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetResource    = "resource:get"
	cacheGetAllResource = "resource:gets"
)

type Resource interface {
	Create(ctx context.Context, req dto.CreateResourceRequest, actor shared.Actor) (res dto.ResourceResponse, err error)
	Get(ctx context.Context, id string) (res dto.ResourceResponse, err error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetResourcesResponse, err error)
	Update(ctx context.Context, id string, req dto.UpdateResourceRequest, actor shared.Actor) (err error)
	SetMaintenance(ctx context.Context, id string, req dto.SetMaintenanceRequest, actor shared.Actor) (err error)
	CheckAvailability(ctx context.Context, id, checkIn, checkOut string) (res dto.AvailabilityResponse, err error)
	// Find loads the stored resource, failing with NotFound.
	Find(ctx context.Context, id string) (resource model.Resource, err error)
	// FindByNumber looks a resource up by the number external channels use.
	FindByNumber(ctx context.Context, number string) (resource model.Resource, err error)
}

type serviceImpl struct {
	repo      repository.Resource
	available availability.Checker
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(repo repository.Resource, available availability.Checker, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Resource {
	return &serviceImpl{
		repo:      repo,
		available: available,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateResourceRequest, actor shared.Actor) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return res, failure.ForbiddenError
	}

	resource := req.ToModel(actor.ID)

	err = s.repo.Insert(ctx, resource)
	if postgres.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
		return res, failure.Conflict(fmt.Sprintf("resource number %s already exists", resource.Number)) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create resource")

		return res, fmt.Errorf("failed to create resource: %w", err)
	}

	log.Info().Str("resource", resource.ID).Str("number", resource.Number).Str("actor", actor.ID).Msg("resource created")

	s.invalidate(ctx, constant.Empty)

	res.FromModel(resource, false)

	return res, nil
}

func (s *serviceImpl) Find(ctx context.Context, id string) (resource model.Resource, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Find")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetResource, id)

	if err := s.cache.Get(ctx, cacheKey, &resource); err == nil && resource.ID != constant.Empty {
		return resource, nil
	}

	resource, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("resource", id).Msg("failed to get resource")

		return resource, fmt.Errorf("failed to get resource: %w", err)
	}

	if resource.ID == constant.Empty {
		return resource, failure.NotFound("resource not found") // nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, resource, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resource to cache")
		}
	}()

	return resource, nil
}

func (s *serviceImpl) FindByNumber(ctx context.Context, number string) (resource model.Resource, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.FindByNumber")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	resource, err = s.repo.Get(ctx, shared.FilterByID(strings.TrimSpace(number), model.FieldNumber, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("number", number).Msg("failed to get resource by number")

		return resource, fmt.Errorf("failed to get resource by number: %w", err)
	}

	if resource.ID == constant.Empty {
		return resource, failure.NotFound(fmt.Sprintf("resource %q not found", number)) // nolint:wrapcheck
	}

	return resource, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	resource, err := s.Find(ctx, id)
	if err != nil {
		return res, err
	}

	occupied, err := s.available.OccupiedAt(ctx, []string{resource.ID}, timezone.Today())
	if err != nil {
		return res, fmt.Errorf("failed to derive resource status: %w", err)
	}

	res.FromModel(resource, occupied[resource.ID])

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetResourcesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	page, err := s.page(ctx, req, filter)
	if err != nil {
		return res, err
	}

	ids := make([]string, len(page.Resources))
	for i, r := range page.Resources {
		ids[i] = r.ID
	}

	occupied, err := s.available.OccupiedAt(ctx, ids, timezone.Today())
	if err != nil {
		return res, fmt.Errorf("failed to derive resource status: %w", err)
	}

	res.FromModels(page.Resources, occupied, page.Total, req.Limit)

	return res, nil
}

func (s *serviceImpl) page(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (page dto.ResourcePage, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllResource, req, filter)

	if err := s.cache.Get(ctx, cacheKey, &page); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for resources")

		return page, nil
	}

	page.Total, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count resources")

		return page, fmt.Errorf("failed to count resources: %w", err)
	}

	page.Resources, err = s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get resources")

		return page, fmt.Errorf("failed to get resources: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, page, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resources to cache")
		}
	}()

	return page, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateResourceRequest, actor shared.Actor) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return failure.ForbiddenError
	}

	req.Normalize()

	return s.update(ctx, id, shared.TransformFields(req, actor.ID))
}

func (s *serviceImpl) SetMaintenance(ctx context.Context, id string, req dto.SetMaintenanceRequest, actor shared.Actor) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.SetMaintenance")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsStaff() {
		return failure.ForbiddenError
	}

	if req.UnderMaintenance == nil {
		return failure.BadRequestFromString("under_maintenance is required") // nolint:wrapcheck
	}

	update := map[string]any{
		model.FieldUnderMaintenance: *req.UnderMaintenance,
		constant.FieldModifiedAt:    timezone.Now(),
		constant.FieldModifiedBy:    actor.ID,
	}

	if err = s.update(ctx, id, update); err != nil {
		return err
	}

	log.Info().Str("resource", id).Bool("under_maintenance", *req.UnderMaintenance).Str("actor", actor.ID).Msg("resource maintenance changed")

	return nil
}

func (s *serviceImpl) update(ctx context.Context, id string, update map[string]any) error {
	rows, err := s.repo.UpdateCount(ctx, update, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("resource", id).Msg("failed to update resource")

		return fmt.Errorf("failed to update resource: %w", err)
	}

	if rows == 0 {
		return failure.NotFound("resource not found") // nolint:wrapcheck
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, id, checkIn, checkOut string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.CheckAvailability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	from, err := timezone.ParseDay(checkIn)
	if err != nil {
		return res, failure.BadRequestFromString("check_in must be a date formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	to, err := timezone.ParseDay(checkOut)
	if err != nil {
		return res, failure.BadRequestFromString("check_out must be a date formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	resource, err := s.Find(ctx, id)
	if err != nil {
		return res, err
	}

	available, err := s.available.IsAvailable(ctx, resource.ID, from, to, constant.Empty)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res = dto.AvailabilityResponse{
		ResourceID: resource.ID,
		CheckIn:    timezone.FormatDay(from),
		CheckOut:   timezone.FormatDay(to),
		Available:  available && !resource.UnderMaintenance,
	}

	return res, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetResource, id)); err != nil {
				log.Error().Err(err).Str("resource", id).Msg("failed to drop cached resource")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllResource)
	}()
}
