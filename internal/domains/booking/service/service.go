package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hotelops/config"
	"hotelops/infras/otel"
	"hotelops/infras/postgres"
	"hotelops/infras/s3"
	availability "hotelops/internal/domains/availability/service"
	"hotelops/internal/domains/booking/model"
	"hotelops/internal/domains/booking/model/dto"
	"hotelops/internal/domains/booking/repository"
	guestModel "hotelops/internal/domains/guest/model"
	guest "hotelops/internal/domains/guest/service"
	resourceModel "hotelops/internal/domains/resource/model"
	resource "hotelops/internal/domains/resource/service"
	task "hotelops/internal/domains/task/service"
	"hotelops/shared"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/event"
	"hotelops/shared/failure"
	"hotelops/shared/lock"
	gModel "hotelops/shared/model"
	"hotelops/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	lockKeyPrefix     = "booking:resource"
	reportContentType = "application/json"
)

var errNothingRetired = errors.New("booking already repaired")

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest, actor shared.Actor) (res dto.BookingResponse, err error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest, actor shared.Actor) (res dto.BookingResponse, err error)
	Get(ctx context.Context, id string, actor shared.Actor) (res dto.BookingResponse, err error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, actor shared.Actor) (res dto.GetBookingsResponse, err error)
	GetMine(ctx context.Context, req gDto.QueryParams, actor shared.Actor) (res dto.GetBookingsResponse, err error)
	ImportExternal(ctx context.Context, msg dto.ExternalBookingMessage) (res dto.BookingResponse, err error)
	RepairInvalidGuestLinks(ctx context.Context, opts dto.RepairOptions, actor shared.Actor) (summary dto.RepairSummary, err error)
}

type serviceImpl struct {
	repo      repository.Booking
	available availability.Checker
	guest     guest.Guest
	resource  resource.Resource
	task      task.Task
	tx        postgres.Transactor
	locker    lock.Locker
	publisher event.Publisher
	storage   s3.S3
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	available availability.Checker,
	guest guest.Guest,
	resource resource.Resource,
	task task.Task,
	tx postgres.Transactor,
	locker lock.Locker,
	publisher event.Publisher,
	storage s3.S3,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		available: available,
		guest:     guest,
		resource:  resource,
		task:      task,
		tx:        tx,
		locker:    locker,
		publisher: publisher,
		storage:   storage,
		cfg:       cfg,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest, actor shared.Actor) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, checkOut, err := req.Dates()
	if err != nil {
		return res, failure.BadRequestFromString("check_in and check_out must be dates formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return res, failure.BadRequestFromString("check_out must be after check_in") // nolint:wrapcheck
	}

	target, err := s.resource.Find(ctx, req.ResourceID)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if target.UnderMaintenance {
		return res, failure.ResourceUnavailable(fmt.Sprintf("resource %s is under maintenance", target.Number)) // nolint:wrapcheck
	}

	identifier := req.GuestIdentifier
	if identifier == constant.Empty {
		if actor.IsStaff() {
			return res, failure.BadRequestFromString("guest is required") // nolint:wrapcheck
		}

		identifier = actor.Email
	}

	owner, err := s.guest.MustResolve(ctx, identifier)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if !owner.Active() {
		return res, failure.BadRequestFromString("guest account is suspended") // nolint:wrapcheck
	}

	if !actor.IsStaff() && owner.ID != actor.ID {
		return res, failure.Forbidden("guests can only book for themselves") // nolint:wrapcheck
	}

	booking := model.Booking{
		ID:         uuid.NewString(),
		ResourceID: target.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     model.StatusConfirmed,
		Source:     model.SourceDirect,
		Metadata:   gModel.NewMetadata(actor.ID, timezone.Now()),
	}
	booking.SetGuestRef(guestModel.Resolved{ID: owner.ID})

	if err = s.place(ctx, booking, target); err != nil {
		return res, err
	}

	log.Info().Str("booking", booking.ID).Str("resource", target.ID).Str("guest", owner.ID).Str("actor", actor.ID).Msg("booking created")

	res.FromModel(booking)
	s.publisher.Publish(ctx, event.TopicBookingCreated, booking.ID, actor.ID, res)

	return res, nil
}

// place checks availability and writes the booking with its derived tasks
// while holding the per-resource lock. The exclusion constraint backs the
// check up should the lock ever be lost.
func (s *serviceImpl) place(ctx context.Context, booking model.Booking, target resourceModel.Resource) error {
	release, err := s.locker.Acquire(ctx, shared.BuildCacheKey(lockKeyPrefix, target.ID))
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer release()

	return s.tx.RunInTx(ctx, func(ctx context.Context) error { //nolint:wrapcheck
		free, err := s.available.IsAvailable(ctx, target.ID, booking.CheckIn, booking.CheckOut, constant.Empty)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if !free {
			return unavailable(target, booking)
		}

		err = s.repo.Insert(ctx, booking)
		if postgres.IsErrorCode(err, constant.PqErrorCodeExclusionViolation) {
			return unavailable(target, booking)
		}

		if postgres.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return failure.Conflict("booking already exists") // nolint:wrapcheck
		}

		if err != nil {
			log.Error().Err(err).Str("resource", target.ID).Msg("failed to insert booking")

			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if _, err = s.task.DeriveTasksForBooking(ctx, booking, target); err != nil {
			return fmt.Errorf("failed to derive booking tasks: %w", err)
		}

		return nil
	})
}

func unavailable(target resourceModel.Resource, booking model.Booking) error {
	return failure.ResourceUnavailable(fmt.Sprintf("resource %s is already booked between %s and %s", //nolint:wrapcheck
		target.Number, timezone.FormatDay(booking.CheckIn), timezone.FormatDay(booking.CheckOut)))
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest, actor shared.Actor) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.mustGet(ctx, id)
	if err != nil {
		return res, err
	}

	if !actor.IsStaff() && !booking.OwnedBy(actor.ID) {
		return res, failure.Forbidden("only the booking guest or staff can cancel it") // nolint:wrapcheck
	}

	if req.Purge && !actor.IsAdmin() {
		return res, failure.Forbidden("only administrators can purge bookings") // nolint:wrapcheck
	}

	if booking.Status != model.StatusConfirmed {
		return res, failure.InvalidTransition(model.EntityName, string(booking.Status), string(model.StatusCancelled)) // nolint:wrapcheck
	}

	now := timezone.Now()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		update := map[string]any{
			model.FieldStatus:        model.StatusCancelled,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: actor.ID,
		}

		confirmed := shared.And(
			shared.FilterEq(model.FieldID, id, model.TableName),
			shared.FilterEq(model.FieldStatus, model.StatusConfirmed, model.TableName),
		)

		rows, err := s.repo.UpdateCount(ctx, update, confirmed)
		if err != nil {
			log.Error().Err(err).Str("booking", id).Msg("failed to cancel booking")

			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if rows == 0 {
			current, err := s.mustGet(ctx, id)
			if err != nil {
				return err
			}

			return failure.InvalidTransition(model.EntityName, string(current.Status), string(model.StatusCancelled)) // nolint:wrapcheck
		}

		if !req.Purge {
			return nil
		}

		if _, err = s.task.CloseTasksForBooking(ctx, id, actor); err != nil {
			return err //nolint:wrapcheck
		}

		if _, err = s.repo.DeleteCount(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
			log.Error().Err(err).Str("booking", id).Msg("failed to purge booking")

			return fmt.Errorf("failed to purge booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	booking.Status = model.StatusCancelled
	booking.ModifiedAt = now
	booking.ModifiedBy = actor.ID

	log.Info().Str("booking", id).Bool("purged", req.Purge).Str("actor", actor.ID).Msg("booking cancelled")

	res.FromModel(booking)
	s.publisher.Publish(ctx, event.TopicBookingCancelled, booking.ID, actor.ID, res)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string, actor shared.Actor) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.mustGet(ctx, id)
	if err != nil {
		return res, err
	}

	if !actor.IsStaff() && !booking.OwnedBy(actor.ID) {
		return res, failure.ResourceRestrictedError
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, actor shared.Actor) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsStaff() {
		return res, failure.ForbiddenError
	}

	return s.list(ctx, req, filter)
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams, actor shared.Actor) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, req, shared.FilterByID(actor.ID, model.FieldGuestID, model.TableName))
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, req.Limit)

	return res, nil
}

// ImportExternal stores a reservation from the channel manager. Guests that
// cannot be resolved yet are kept as raw identifiers for a later repair pass,
// and a reference seen before is skipped.
func (s *serviceImpl) ImportExternal(ctx context.Context, msg dto.ExternalBookingMessage) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ImportExternal")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor := shared.SystemActor()

	checkIn, checkOut, err := msg.Dates()
	if err != nil {
		return res, failure.BadRequestFromString("check_in and check_out must be dates formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return res, failure.BadRequestFromString("check_out must be after check_in") // nolint:wrapcheck
	}

	existing, err := s.byExternalRef(ctx, msg.ExternalRef)
	if err != nil {
		return res, err
	}

	if existing.ID != constant.Empty {
		log.Info().Str("external_ref", msg.ExternalRef).Str("booking", existing.ID).Msg("external booking already imported")

		res.FromModel(existing)

		return res, nil
	}

	target, err := s.resource.FindByNumber(ctx, msg.ResourceNumber)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if target.UnderMaintenance {
		return res, failure.ResourceUnavailable(fmt.Sprintf("resource %s is under maintenance", target.Number)) // nolint:wrapcheck
	}

	ref, err := s.guest.Resolve(ctx, msg.Guest)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	externalRef := msg.ExternalRef
	booking := model.Booking{
		ID:          uuid.NewString(),
		ResourceID:  target.ID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      model.StatusConfirmed,
		Source:      model.SourceExternal,
		ExternalRef: &externalRef,
		Metadata:    gModel.NewMetadata(actor.ID, timezone.Now()),
	}
	booking.SetGuestRef(ref)

	err = s.place(ctx, booking, target)
	if failure.Is(err, failure.ReasonConflict) {
		log.Info().Str("external_ref", msg.ExternalRef).Msg("external booking imported concurrently")

		existing, err = s.byExternalRef(ctx, msg.ExternalRef)
		if err != nil {
			return res, err
		}

		res.FromModel(existing)

		return res, nil
	}

	if err != nil {
		return res, err
	}

	_, deferred := ref.(guestModel.Unresolved)
	log.Info().Str("booking", booking.ID).Str("external_ref", msg.ExternalRef).Bool("guest_deferred", deferred).Msg("external booking imported")

	res.FromModel(booking)
	s.publisher.Publish(ctx, event.TopicBookingCreated, booking.ID, actor.ID, res)

	return res, nil
}

// RepairInvalidGuestLinks reconciles bookings without a canonical guest.
// Resolvable ones are linked, the rest follow the unresolved policy. Every
// write is keyed on guest_id still being NULL, so a second pass changes
// nothing. It must not run alongside live booking creation.
func (s *serviceImpl) RepairInvalidGuestLinks(ctx context.Context, opts dto.RepairOptions, actor shared.Actor) (summary dto.RepairSummary, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.RepairInvalidGuestLinks")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !actor.IsAdmin() {
		return summary, failure.ForbiddenError
	}

	policy := opts.Policy
	if policy == constant.Empty {
		policy = model.RepairPolicy(s.cfg.Repair.UnresolvedPolicy)
	}

	if !policy.IsValid() {
		return summary, failure.BadRequestFromString(fmt.Sprintf("unknown repair policy %q", policy)) // nolint:wrapcheck
	}

	summary = dto.RepairSummary{DryRun: opts.DryRun, Policy: policy, Entries: []dto.RepairEntry{}}

	candidates, err := s.repo.GetAll(ctx, gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc}, UnlinkedFilter())
	if err != nil {
		log.Error().Err(err).Msg("failed to select unlinked bookings")

		return summary, fmt.Errorf("failed to select unlinked bookings: %w", err)
	}

	for _, booking := range candidates {
		entry, err := s.repairOne(ctx, booking, policy, opts.DryRun, actor)
		if err != nil {
			return summary, err
		}

		log.Info().
			Str("booking", entry.BookingID).
			Str("disposition", string(entry.Disposition)).
			Bool("dry_run", opts.DryRun).
			Msg("booking guest link repaired")

		summary.Record(entry)
	}

	summary.ReportURL = s.uploadReport(ctx, summary)

	log.Info().
		Int("updated", summary.Updated).
		Int("deleted", summary.Deleted).
		Int("archived", summary.Archived).
		Bool("dry_run", opts.DryRun).
		Str("actor", actor.ID).
		Msg("booking guest link repair finished")

	return summary, nil
}

// UnlinkedFilter selects live bookings that carry no canonical guest.
func UnlinkedFilter() gDto.FilterGroup {
	return shared.And(
		gDto.Filter{Field: model.FieldGuestID, Operator: gDto.FilterIsNull, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Value: model.StatusArchived, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
	)
}

func (s *serviceImpl) repairOne(ctx context.Context, booking model.Booking, policy model.RepairPolicy, dryRun bool, actor shared.Actor) (entry dto.RepairEntry, err error) {
	raw, _ := booking.GuestRef().(guestModel.Unresolved)
	entry = dto.RepairEntry{BookingID: booking.ID, GuestRaw: raw.Raw}

	ref, err := s.guest.Resolve(ctx, raw.Raw)
	if err != nil {
		return entry, err //nolint:wrapcheck
	}

	stillUnlinked := shared.And(
		shared.FilterEq(model.FieldID, booking.ID, model.TableName),
		gDto.Filter{Field: model.FieldGuestID, Operator: gDto.FilterIsNull, Table: model.TableName},
	)
	stamp := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.ID,
	}

	var rows int64

	switch {
	case isResolved(ref):
		entry.GuestID = ref.(guestModel.Resolved).ID //nolint:forcetypeassert
		entry.Disposition = model.DispositionLinked

		if dryRun {
			return entry, nil
		}

		stamp[model.FieldGuestID] = entry.GuestID
		stamp[model.FieldGuestRaw] = nil
		rows, err = s.repo.UpdateCount(ctx, stamp, stillUnlinked)
	case policy == model.RepairPolicyArchive:
		entry.Disposition = model.DispositionArchived

		if dryRun {
			return entry, nil
		}

		stamp[model.FieldStatus] = model.StatusArchived
		rows, err = s.retire(ctx, booking.ID, actor, func(ctx context.Context) (int64, error) {
			return s.repo.UpdateCount(ctx, stamp, stillUnlinked)
		})
	default:
		entry.Disposition = model.DispositionDeleted

		if dryRun {
			return entry, nil
		}

		rows, err = s.retire(ctx, booking.ID, actor, func(ctx context.Context) (int64, error) {
			return s.repo.DeleteCount(ctx, stillUnlinked)
		})
	}

	if err != nil {
		log.Error().Err(err).Str("booking", booking.ID).Msg("failed to repair booking guest link")

		return entry, fmt.Errorf("failed to repair booking %s: %w", booking.ID, err)
	}

	if rows == 0 {
		entry.Disposition = model.DispositionSkipped
	}

	return entry, nil
}

// retire closes the booking's pending tasks and applies write in one
// transaction. Tasks must be closed before a delete detaches them. When write
// touches no row the whole unit is rolled back.
func (s *serviceImpl) retire(ctx context.Context, bookingID string, actor shared.Actor, write func(ctx context.Context) (int64, error)) (rows int64, err error) {
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.task.CloseTasksForBooking(ctx, bookingID, actor); err != nil {
			return err //nolint:wrapcheck
		}

		rows, err = write(ctx)
		if err != nil {
			return err
		}

		if rows == 0 {
			return errNothingRetired
		}

		return nil
	})
	if errors.Is(err, errNothingRetired) {
		return 0, nil
	}

	return rows, err //nolint:wrapcheck
}

func isResolved(ref guestModel.Ref) bool {
	_, ok := ref.(guestModel.Resolved)

	return ok
}

// uploadReport stores the summary in object storage when configured. Failures
// only cost the report URL.
func (s *serviceImpl) uploadReport(ctx context.Context, summary dto.RepairSummary) string {
	if s.storage == nil || !s.storage.Enabled() {
		return constant.Empty
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to encode repair report")

		return constant.Empty
	}

	name := fmt.Sprintf("%s-%s.json", timezone.Now().Format("20060102T150405"), uuid.NewString()[:8])

	url, err := s.storage.UploadBytes(ctx, s.cfg.Repair.ReportPrefix, name, reportContentType, data)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload repair report")

		return constant.Empty
	}

	return url
}

func (s *serviceImpl) byExternalRef(ctx context.Context, ref string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(ref, model.FieldExternalRef, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("external_ref", ref).Msg("failed to look up external booking")

		return booking, fmt.Errorf("failed to look up external booking: %w", err)
	}

	return booking, nil
}

func (s *serviceImpl) mustGet(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
}
