package service_test

import (
	"context"
	"math/rand/v2"
	"net/http"
	"sync"
	"testing"
	"time"

	"hotelops/config"
	"hotelops/infras/otel/mocks"
	transactor "hotelops/infras/postgres/mocks"
	s3Mocks "hotelops/infras/s3/mocks"
	availability "hotelops/internal/domains/availability/service"
	"hotelops/internal/domains/booking/model"
	"hotelops/internal/domains/booking/model/dto"
	"hotelops/internal/domains/booking/service"
	guestMocks "hotelops/internal/domains/guest/mocks"
	guestModel "hotelops/internal/domains/guest/model"
	resourceMocks "hotelops/internal/domains/resource/mocks"
	resourceModel "hotelops/internal/domains/resource/model"
	taskMocks "hotelops/internal/domains/task/mocks"
	"hotelops/shared"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	eventMocks "hotelops/shared/event/mocks"
	"hotelops/shared/failure"
	"hotelops/shared/lock"
	"hotelops/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	admin     = shared.Actor{ID: "admin-1", Role: constant.RoleAdmin}
	staff     = shared.Actor{ID: "staff-1", Role: constant.RoleStaff}
	alice     = shared.Actor{ID: "guest-alice", Email: "alice@example.com", Role: constant.RoleGuest}
	bob       = shared.Actor{ID: "guest-bob", Email: "bob@example.com", Role: constant.RoleGuest}
	room101   = resourceModel.Resource{ID: "res-101", Number: "101", Kind: resourceModel.KindRoom}
	hallA     = resourceModel.Resource{ID: "res-hall", Number: "H1", Kind: resourceModel.KindHall, UnderMaintenance: true}
	guestsFor = map[string]guestModel.Guest{
		"alice@example.com": {ID: "guest-alice", Email: "alice@example.com", Role: guestModel.RoleGuest, Status: guestModel.StatusActive},
		"bob@example.com":   {ID: "guest-bob", Email: "bob@example.com", Role: guestModel.RoleGuest, Status: guestModel.StatusActive},
		"carol@example.com": {ID: "guest-carol", Email: "carol@example.com", Role: guestModel.RoleGuest, Status: guestModel.StatusSuspended},
	}
)

type fixture struct {
	svc     service.Booking
	store   *memoryStore
	task    *taskMocks.MockTaskService
	storage *s3Mocks.MockS3
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := &memoryStore{}
	guest := guestMocks.NewMockGuestService(ctrl)
	resource := resourceMocks.NewMockResourceService(ctrl)
	task := taskMocks.NewMockTaskService(ctrl)
	publisher := eventMocks.NewMockPublisher(ctrl)
	storage := s3Mocks.NewMockS3(ctrl)

	guest.EXPECT().MustResolve(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id string) (guestModel.Guest, error) {
		g, ok := guestsFor[guestModel.NormalizeEmail(id)]
		if !ok {
			return g, failure.GuestNotFound(id)
		}

		return g, nil
	}).AnyTimes()
	guest.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id string) (guestModel.Ref, error) {
		g, ok := guestsFor[guestModel.NormalizeEmail(id)]
		if !ok {
			return guestModel.Unresolved{Raw: id}, nil
		}

		return guestModel.Resolved{ID: g.ID}, nil
	}).AnyTimes()

	resource.EXPECT().Find(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id string) (resourceModel.Resource, error) {
		for _, r := range []resourceModel.Resource{room101, hallA} {
			if r.ID == id {
				return r, nil
			}
		}

		return resourceModel.Resource{}, failure.NotFound("resource not found")
	}).AnyTimes()
	resource.EXPECT().FindByNumber(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, number string) (resourceModel.Resource, error) {
		if number == room101.Number {
			return room101, nil
		}

		return resourceModel.Resource{}, failure.NotFound("resource not found")
	}).AnyTimes()

	task.EXPECT().DeriveTasksForBooking(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	cfg := &config.Config{}
	cfg.Repair.UnresolvedPolicy = string(model.RepairPolicyDelete)
	cfg.Repair.ReportPrefix = "repair-reports"

	otl := mocks.NewOtel()
	checker := availability.New(memoryAvailability{store: store}, otl)
	locker := lock.NewMemory(lock.Options{Wait: 5 * time.Second})

	return fixture{
		svc:     service.New(store, checker, guest, resource, task, transactor.NewTransactor(), locker, publisher, storage, cfg, otl),
		store:   store,
		task:    task,
		storage: storage,
	}
}

func stay(checkIn, checkOut string) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{ResourceID: room101.ID, CheckIn: checkIn, CheckOut: checkOut}
}

func TestCreate_AdjacentStaysDoNotOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusConfirmed), first.Status)
	assert.Equal(t, alice.ID, first.GuestID)
	assert.Equal(t, string(model.SourceDirect), first.Source)

	second, err := f.svc.Create(ctx, stay("2026-03-04", "2026-03-06"), bob)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", second.CheckIn)
}

func TestCreate_OverlapIsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, stay("2026-03-03", "2026-03-05"), bob)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ReasonResourceUnavailable))
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestCreate_CancelFreesTheRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, first.ID, dto.CancelBookingRequest{}, alice)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, stay("2026-03-02", "2026-03-03"), bob)
	require.NoError(t, err)
}

func TestCreate_ConcurrentOverlapsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 8

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		won         int
		unavailable int
	)

	for i := range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			req := stay("2026-05-01", "2026-05-03")
			req.GuestIdentifier = "alice@example.com"

			if i%2 == 1 {
				req = stay("2026-05-02", "2026-05-04")
				req.GuestIdentifier = "bob@example.com"
			}

			_, err := f.svc.Create(ctx, req, staff)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				won++
			case failure.Is(err, failure.ReasonResourceUnavailable):
				unavailable++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, unavailable)
	assert.Len(t, f.store.bookings, 1)
}

func confirmedStays(f fixture) []model.Booking {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	out := []model.Booking{}

	for _, b := range f.store.bookings {
		if b.Status == model.StatusConfirmed && b.ResourceID == room101.ID {
			out = append(out, b)
		}
	}

	return out
}

func TestCreate_GeneratedStaysNeverOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := rand.New(rand.NewPCG(20260301, 101)) //nolint:gosec

	base, err := timezone.ParseDay("2026-03-01")
	require.NoError(t, err)

	for step := range 300 {
		held := confirmedStays(f)

		if len(held) > 0 && r.IntN(4) == 0 {
			victim := held[r.IntN(len(held))]

			_, err = f.svc.Cancel(ctx, victim.ID, dto.CancelBookingRequest{}, staff)
			require.NoError(t, err, "step %d: cancel %s", step, victim.ID)
		} else {
			checkIn := base.AddDate(0, 0, r.IntN(60))
			checkOut := checkIn.AddDate(0, 0, 1+r.IntN(6))

			free := true
			for _, b := range held {
				if availability.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
					free = false

					break
				}
			}

			_, err = f.svc.Create(ctx, stay(timezone.FormatDay(checkIn), timezone.FormatDay(checkOut)), alice)
			if free {
				require.NoError(t, err, "step %d: %s..%s should be free", step, timezone.FormatDay(checkIn), timezone.FormatDay(checkOut))
			} else {
				require.Error(t, err, "step %d: %s..%s should clash", step, timezone.FormatDay(checkIn), timezone.FormatDay(checkOut))
				assert.True(t, failure.Is(err, failure.ReasonResourceUnavailable))
			}
		}

		held = confirmedStays(f)
		for i := range held {
			for j := i + 1; j < len(held); j++ {
				assert.False(t,
					availability.Overlaps(held[i].CheckIn, held[i].CheckOut, held[j].CheckIn, held[j].CheckOut),
					"step %d: %s and %s overlap", step, held[i].ID, held[j].ID)
			}
		}
	}
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    dto.CreateBookingRequest
		actor  shared.Actor
		reason string
	}{
		{
			name:   "check out before check in",
			req:    stay("2026-03-04", "2026-03-01"),
			actor:  alice,
			reason: failure.ReasonValidation,
		},
		{
			name:   "same day stay",
			req:    stay("2026-03-04", "2026-03-04"),
			actor:  alice,
			reason: failure.ReasonValidation,
		},
		{
			name:   "unknown resource",
			req:    dto.CreateBookingRequest{ResourceID: "missing", CheckIn: "2026-03-01", CheckOut: "2026-03-02"},
			actor:  alice,
			reason: failure.ReasonNotFound,
		},
		{
			name:   "resource under maintenance",
			req:    dto.CreateBookingRequest{ResourceID: hallA.ID, CheckIn: "2026-03-01", CheckOut: "2026-03-02"},
			actor:  alice,
			reason: failure.ReasonResourceUnavailable,
		},
		{
			name:   "unknown guest",
			req:    dto.CreateBookingRequest{ResourceID: room101.ID, GuestIdentifier: "nobody@example.com", CheckIn: "2026-03-01", CheckOut: "2026-03-02"},
			actor:  staff,
			reason: failure.ReasonGuestNotFound,
		},
		{
			name:   "suspended guest",
			req:    dto.CreateBookingRequest{ResourceID: room101.ID, GuestIdentifier: "carol@example.com", CheckIn: "2026-03-01", CheckOut: "2026-03-02"},
			actor:  staff,
			reason: failure.ReasonValidation,
		},
		{
			name:   "guest booking for someone else",
			req:    dto.CreateBookingRequest{ResourceID: room101.ID, GuestIdentifier: "bob@example.com", CheckIn: "2026-03-01", CheckOut: "2026-03-02"},
			actor:  alice,
			reason: failure.ReasonForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req, tt.actor)
			require.Error(t, err)
			assert.Equal(t, tt.reason, failure.GetReason(err))
		})
	}

	assert.Empty(t, f.store.bookings)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, booking.ID, dto.CancelBookingRequest{}, bob)
	assert.True(t, failure.Is(err, failure.ReasonForbidden))

	_, err = f.svc.Cancel(ctx, booking.ID, dto.CancelBookingRequest{Purge: true}, staff)
	assert.True(t, failure.Is(err, failure.ReasonForbidden))

	res, err := f.svc.Cancel(ctx, booking.ID, dto.CancelBookingRequest{}, staff)
	require.NoError(t, err)
	assert.Equal(t, string(model.StatusCancelled), res.Status)

	_, err = f.svc.Cancel(ctx, booking.ID, dto.CancelBookingRequest{}, staff)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ReasonInvalidTransition))
	assert.Equal(t, string(model.StatusCancelled), failure.GetState(err))

	_, err = f.svc.Cancel(ctx, "missing", dto.CancelBookingRequest{}, staff)
	assert.True(t, failure.Is(err, failure.ReasonNotFound))
}

func TestCancel_Purge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)

	f.task.EXPECT().CloseTasksForBooking(gomock.Any(), booking.ID, admin).Return(int64(2), nil).Times(1)

	_, err = f.svc.Cancel(ctx, booking.ID, dto.CancelBookingRequest{Purge: true}, admin)
	require.NoError(t, err)

	_, found := f.store.byID(booking.ID)
	assert.False(t, found)
}

func TestCancel_PurgeRollsBackWhenTasksCannotClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)

	f.task.EXPECT().CloseTasksForBooking(gomock.Any(), booking.ID, admin).Return(int64(0), failure.ServiceUnavailable("task store down")).Times(1)

	_, err = f.svc.Cancel(ctx, booking.ID, dto.CancelBookingRequest{Purge: true}, admin)
	require.Error(t, err)

	_, found := f.store.byID(booking.ID)
	assert.True(t, found)
}

func TestGet_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, booking.ID, alice)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, booking.ID, staff)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, booking.ID, bob)
	assert.True(t, failure.Is(err, failure.ReasonForbidden))
}

func TestGetMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, stay("2026-03-01", "2026-03-04"), alice)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, stay("2026-03-10", "2026-03-12"), bob)
	require.NoError(t, err)

	mine, err := f.svc.GetMine(ctx, gDto.QueryParams{Page: 1, Limit: 10}, alice)
	require.NoError(t, err)
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, alice.ID, mine.Bookings[0].GuestID)

	_, err = f.svc.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{}, alice)
	assert.True(t, failure.Is(err, failure.ReasonForbidden))

	all, err := f.svc.GetAll(ctx, gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{}, staff)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalData)
}

func TestImportExternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := dto.ExternalBookingMessage{
		ExternalRef:    "ota-42",
		ResourceNumber: room101.Number,
		Guest:          "stranger@example.com",
		CheckIn:        "2026-04-01",
		CheckOut:       "2026-04-03",
	}

	first, err := f.svc.ImportExternal(ctx, msg)
	require.NoError(t, err)
	assert.Empty(t, first.GuestID)
	assert.Equal(t, "stranger@example.com", first.GuestRaw)
	assert.Equal(t, string(model.SourceExternal), first.Source)

	again, err := f.svc.ImportExternal(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.store.bookings, 1)

	msg.ExternalRef = "ota-43"
	msg.ResourceNumber = "999"

	_, err = f.svc.ImportExternal(ctx, msg)
	assert.True(t, failure.Is(err, failure.ReasonNotFound))
}

func seedUnlinked(f fixture) {
	day := func(s string) time.Time {
		d, _ := timezone.ParseDay(s)

		return d
	}

	linked := "guest-alice"
	alias := "ALICE@example.com "
	ghost := "ghost@example.com"

	f.store.bookings = []model.Booking{
		{ID: "b-linked", ResourceID: room101.ID, GuestID: &linked, CheckIn: day("2026-01-01"), CheckOut: day("2026-01-02"), Status: model.StatusConfirmed},
		{ID: "b-alias", ResourceID: room101.ID, GuestRaw: &alias, CheckIn: day("2026-01-03"), CheckOut: day("2026-01-04"), Status: model.StatusConfirmed},
		{ID: "b-ghost", ResourceID: room101.ID, GuestRaw: &ghost, CheckIn: day("2026-01-05"), CheckOut: day("2026-01-06"), Status: model.StatusConfirmed},
	}
}

func TestRepairInvalidGuestLinks_DeletePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUnlinked(f)

	f.storage.EXPECT().Enabled().Return(false).AnyTimes()
	f.task.EXPECT().CloseTasksForBooking(gomock.Any(), "b-ghost", admin).Return(int64(1), nil).Times(1)

	summary, err := f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{}, admin)
	require.NoError(t, err)
	assert.Equal(t, model.RepairPolicyDelete, summary.Policy)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 0, summary.Archived)

	relinked, found := f.store.byID("b-alias")
	require.True(t, found)
	require.NotNil(t, relinked.GuestID)
	assert.Equal(t, "guest-alice", *relinked.GuestID)
	assert.Nil(t, relinked.GuestRaw)

	_, found = f.store.byID("b-ghost")
	assert.False(t, found)

	second, err := f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{}, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changes())
	assert.Empty(t, second.Entries)
}

func TestRepairInvalidGuestLinks_ArchivePolicyAndReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUnlinked(f)

	f.storage.EXPECT().Enabled().Return(true).AnyTimes()
	f.task.EXPECT().CloseTasksForBooking(gomock.Any(), "b-ghost", admin).Return(int64(1), nil).Times(1)
	f.storage.EXPECT().
		UploadBytes(gomock.Any(), "repair-reports", gomock.Any(), "application/json", gomock.Any()).
		Return("https://reports.example.com/repair.json", nil).
		Times(2)

	summary, err := f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{Policy: model.RepairPolicyArchive}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Archived)
	assert.Equal(t, "https://reports.example.com/repair.json", summary.ReportURL)

	archived, found := f.store.byID("b-ghost")
	require.True(t, found)
	assert.Equal(t, model.StatusArchived, archived.Status)

	second, err := f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{Policy: model.RepairPolicyArchive}, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changes())
}

func TestRepairInvalidGuestLinks_DryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedUnlinked(f)

	f.storage.EXPECT().Enabled().Return(false).AnyTimes()

	summary, err := f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{DryRun: true}, admin)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.Changes())

	ghost, found := f.store.byID("b-ghost")
	require.True(t, found)
	assert.Nil(t, ghost.GuestID)

	alias, _ := f.store.byID("b-alias")
	assert.Nil(t, alias.GuestID)
}

func TestRepairInvalidGuestLinks_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{}, staff)
	assert.True(t, failure.Is(err, failure.ReasonForbidden))

	_, err = f.svc.RepairInvalidGuestLinks(ctx, dto.RepairOptions{Policy: "shred"}, admin)
	assert.True(t, failure.Is(err, failure.ReasonValidation))
}
