package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Guest=MockGuestService

import (
	"context"
	"fmt"

	"hotelops/config"
	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	"hotelops/internal/domains/guest/model"
	"hotelops/internal/domains/guest/model/dto"
	"hotelops/internal/domains/guest/repository"
	"hotelops/shared"
	"hotelops/shared/cache"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/failure"
	gModel "hotelops/shared/model"
	"hotelops/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheResolveGuest = "guest:resolve"
	cacheGetGuest     = "guest:get"
	cacheGetAllGuest  = "guest:gets"
)

type Guest interface {
	Resolve(ctx context.Context, looseID string) (ref model.Ref, err error)
	MustResolve(ctx context.Context, looseID string) (guest model.Guest, err error)
	EnsureFromClaims(ctx context.Context, email, role string) (guest model.Guest, err error)
	Get(ctx context.Context, id string) (res dto.GuestResponse, err error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetGuestsResponse, err error)
	ChangeRole(ctx context.Context, id string, req dto.ChangeRoleRequest, actor shared.Actor) (err error)
	SetStatus(ctx context.Context, id string, req dto.SetStatusRequest, actor shared.Actor) (err error)
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest, actor shared.Actor) (res dto.GuestResponse, err error)
}

type serviceImpl struct {
	repo  repository.Guest
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Guest, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Guest {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// Resolve maps a loose identifier onto a canonical guest. A missing guest is
// not an error: it yields Unresolved so callers can defer the link.
func (s *serviceImpl) Resolve(ctx context.Context, looseID string) (ref model.Ref, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Resolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email := model.NormalizeEmail(looseID)
	if email == constant.Empty {
		return model.Unresolved{Raw: looseID}, nil
	}

	cacheKey := shared.BuildCacheKey(cacheResolveGuest, email)

	var id string
	if err := s.cache.Get(ctx, cacheKey, &id); err == nil && id != constant.Empty {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for guest resolution")

		return model.Resolved{ID: id}, nil
	}

	guest, err := s.repo.Get(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName), model.FieldID)
	if err != nil {
		log.Error().Err(err).Str("identifier", email).Msg("failed to resolve guest")

		return nil, fmt.Errorf("failed to resolve guest: %w", err)
	}

	if guest.ID == constant.Empty {
		return model.Unresolved{Raw: looseID}, nil
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, guest.ID, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save guest resolution to cache")
		}
	}()

	return model.Resolved{ID: guest.ID}, nil
}

// MustResolve resolves and loads the guest, failing with GuestNotFound.
func (s *serviceImpl) MustResolve(ctx context.Context, looseID string) (guest model.Guest, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.MustResolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ref, err := s.Resolve(ctx, looseID)
	if err != nil {
		return guest, err
	}

	resolved, ok := ref.(model.Resolved)
	if !ok {
		return guest, failure.GuestNotFound(looseID) // nolint:wrapcheck
	}

	guest, err = s.repo.Get(ctx, shared.FilterByID(resolved.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get guest")

		return guest, fmt.Errorf("failed to get guest: %w", err)
	}

	if guest.ID == constant.Empty {
		s.forgetResolution(ctx, looseID)

		return guest, failure.GuestNotFound(looseID) // nolint:wrapcheck
	}

	return guest, nil
}

// EnsureFromClaims signs a guest up on first sight of a verified token and
// keeps the stored role in step with the verified role claim.
func (s *serviceImpl) EnsureFromClaims(ctx context.Context, email, role string) (guest model.Guest, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.EnsureFromClaims")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email = model.NormalizeEmail(email)
	claimRole := model.Role(role)

	if email == constant.Empty || !claimRole.IsValid() {
		return guest, failure.Unauthorized("token claims are incomplete") // nolint:wrapcheck
	}

	filter := shared.FilterByID(email, model.FieldEmail, model.TableName)

	guest, err = s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get guest by email")

		return guest, fmt.Errorf("failed to get guest by email: %w", err)
	}

	if guest.ID == constant.Empty {
		guest, err = s.signup(ctx, email, claimRole)
		if err != nil {
			return guest, err
		}
	}

	if guest.Role != claimRole {
		update := map[string]any{
			model.FieldRole:          claimRole,
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: guest.ID,
		}

		if err = s.repo.Update(ctx, update, shared.FilterByID(guest.ID, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Str("guest", guest.ID).Msg("failed to sync guest role")

			return guest, fmt.Errorf("failed to sync guest role: %w", err)
		}

		log.Info().Str("guest", guest.ID).Str("from", string(guest.Role)).Str("to", role).Msg("guest role synced from claims")

		guest.Role = claimRole
		s.invalidate(ctx, guest.ID)
	}

	return guest, nil
}

func (s *serviceImpl) signup(ctx context.Context, email string, role model.Role) (model.Guest, error) {
	guest := model.Guest{
		ID:       uuid.NewString(),
		Email:    email,
		Role:     role,
		Status:   model.StatusActive,
		Metadata: gModel.NewMetadata(constant.ActorSystem, timezone.Now()),
	}

	err := s.repo.Insert(ctx, guest)
	if err == nil {
		log.Info().Str("guest", guest.ID).Msg("guest signed up")

		s.invalidate(ctx, constant.Empty)

		return guest, nil
	}

	if !postgres.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
		log.Error().Err(err).Msg("failed to sign up guest")

		return guest, fmt.Errorf("failed to sign up guest: %w", err)
	}

	// A concurrent first sign-in won the insert.
	existing, err := s.repo.Get(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName))
	if err != nil {
		return existing, fmt.Errorf("failed to get guest by email: %w", err)
	}

	if existing.ID == constant.Empty {
		return existing, failure.Conflict("guest signup raced and lost") // nolint:wrapcheck
	}

	return existing, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetGuest, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	guest, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get guest")

		return res, fmt.Errorf("failed to get guest: %w", err)
	}

	if guest.ID == constant.Empty {
		return res, failure.NotFound("guest not found") // nolint:wrapcheck
	}

	res.FromModel(guest)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save guest to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetGuestsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllGuest, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count guests")

		return res, fmt.Errorf("failed to count guests: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get guests")

		return res, fmt.Errorf("failed to get guests: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save guests to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) ChangeRole(ctx context.Context, id string, req dto.ChangeRoleRequest, actor shared.Actor) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.ChangeRole")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return failure.ForbiddenError
	}

	guest, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}

	if guest.Role == req.Role {
		return nil
	}

	update := map[string]any{
		model.FieldRole:          req.Role,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.ID,
	}

	if err = s.repo.Update(ctx, update, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to change guest role")

		return fmt.Errorf("failed to change guest role: %w", err)
	}

	log.Info().Str("guest", id).Str("role", string(req.Role)).Str("actor", actor.ID).Msg("guest role changed")

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) SetStatus(ctx context.Context, id string, req dto.SetStatusRequest, actor shared.Actor) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.SetStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return failure.ForbiddenError
	}

	if id == actor.ID && req.Status == model.StatusSuspended {
		return failure.BadRequestFromString("administrators cannot suspend themselves") // nolint:wrapcheck
	}

	guest, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}

	if guest.Status == req.Status {
		return nil
	}

	update := map[string]any{
		model.FieldStatus:        req.Status,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.ID,
	}

	if err = s.repo.Update(ctx, update, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to set guest status")

		return fmt.Errorf("failed to set guest status: %w", err)
	}

	log.Info().Str("guest", id).Str("status", string(req.Status)).Str("actor", actor.ID).Msg("guest status changed")

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest, actor shared.Actor) (res dto.GuestResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".guest.UpdateProfile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	guest, err := s.mustGet(ctx, actor.ID)
	if err != nil {
		return res, err
	}

	update := map[string]any{}
	previousEmail := guest.Email

	if email := model.NormalizeEmail(req.Email); email != constant.Empty && email != guest.Email {
		taken, err := s.repo.Get(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName), model.FieldID)
		if err != nil {
			return res, fmt.Errorf("failed to check email: %w", err)
		}

		if taken.ID != constant.Empty {
			return res, failure.Conflict("email is already registered") // nolint:wrapcheck
		}

		update[model.FieldEmail] = email
		guest.Email = email
	}

	if req.FullName != nil {
		update[model.FieldFullName] = *req.FullName
		guest.FullName = req.FullName
	}

	if len(update) == 0 {
		res.FromModel(guest)

		return res, nil
	}

	now := timezone.Now()
	update[constant.FieldModifiedAt] = now
	update[constant.FieldModifiedBy] = actor.ID

	err = s.repo.Update(ctx, update, shared.FilterByID(guest.ID, model.FieldID, model.TableName))
	if postgres.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
		return res, failure.Conflict("email is already registered") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to update guest profile")

		return res, fmt.Errorf("failed to update guest profile: %w", err)
	}

	guest.ModifiedAt = now
	guest.ModifiedBy = actor.ID

	if previousEmail != guest.Email {
		s.forgetResolution(ctx, previousEmail)
	}

	s.invalidate(ctx, guest.ID)

	res.FromModel(guest)

	return res, nil
}

func (s *serviceImpl) mustGet(ctx context.Context, id string) (model.Guest, error) {
	guest, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get guest")

		return guest, fmt.Errorf("failed to get guest: %w", err)
	}

	if guest.ID == constant.Empty {
		return guest, failure.NotFound("guest not found") // nolint:wrapcheck
	}

	return guest, nil
}

func (s *serviceImpl) forgetResolution(ctx context.Context, identifier string) {
	key := shared.BuildCacheKey(cacheResolveGuest, model.NormalizeEmail(identifier))

	if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to drop guest resolution")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheGetGuest, id))
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllGuest)
	}()
}
