package service_test

import (
	"context"
	"net/http"
	"testing"

	"hotelops/config"
	"hotelops/infras/otel/mocks"
	availabilityMocks "hotelops/internal/domains/availability/mocks"
	resourceMocks "hotelops/internal/domains/resource/mocks"
	"hotelops/internal/domains/resource/model"
	"hotelops/internal/domains/resource/model/dto"
	"hotelops/internal/domains/resource/service"
	"hotelops/shared"
	cacheMocks "hotelops/shared/cache/mocks"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"
	"hotelops/shared/failure"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	admin = shared.Actor{ID: "admin-1", Role: constant.RoleAdmin}
	staff = shared.Actor{ID: "staff-1", Role: constant.RoleStaff}
	guest = shared.Actor{ID: "guest-1", Role: constant.RoleGuest}
)

type fixture struct {
	svc       service.Resource
	repo      *resourceMocks.MockResource
	available *availabilityMocks.MockChecker
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := resourceMocks.NewMockResource(ctrl)
	available := availabilityMocks.NewMockChecker(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(redis.Nil).AnyTimes()
	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return fixture{
		svc:       service.New(repo, available, cfg, cache, mocks.NewOtel()),
		repo:      repo,
		available: available,
	}
}

func TestResourceService_Create(t *testing.T) {
	req := dto.CreateResourceRequest{
		Number:     " 101 ",
		Kind:       model.KindRoom,
		Capacity:   2,
		Price:      120,
		Facilities: []string{"WiFi", "wifi ", "Minibar"},
	}

	t.Run("created", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Resource) error {
			assert.Equal(t, "101", m.Number)
			assert.Equal(t, pq.StringArray{"wifi", "minibar"}, m.Facilities)
			assert.Equal(t, admin.ID, m.CreatedBy)

			return nil
		})

		res, err := f.svc.Create(context.Background(), req, admin)

		require.NoError(t, err)
		assert.Equal(t, string(model.StatusAvailable), res.Status)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("duplicate number", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})

		_, err := f.svc.Create(context.Background(), req, admin)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("staff cannot create", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), req, staff)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestResourceService_Get(t *testing.T) {
	tests := []struct {
		name       string
		resource   model.Resource
		occupied   bool
		wantStatus model.Status
	}{
		{name: "free", resource: model.Resource{ID: "r-1"}, wantStatus: model.StatusAvailable},
		{name: "booked today", resource: model.Resource{ID: "r-1"}, occupied: true, wantStatus: model.StatusBooked},
		{name: "maintenance wins", resource: model.Resource{ID: "r-1", UnderMaintenance: true}, occupied: true, wantStatus: model.StatusMaintenance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.resource, nil)
			f.available.EXPECT().OccupiedAt(gomock.Any(), []string{"r-1"}, gomock.Any()).Return(map[string]bool{"r-1": tt.occupied}, nil)

			res, err := f.svc.Get(context.Background(), "r-1")

			require.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), res.Status)
		})
	}

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{}, nil)

		_, err := f.svc.Get(context.Background(), "r-404")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestResourceService_GetAll(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 10}
	resources := []model.Resource{
		{ID: "r-1", Kind: model.KindRoom},
		{ID: "r-2", Kind: model.KindRoom, UnderMaintenance: true},
		{ID: "h-1", Kind: model.KindHall},
	}

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).Return(resources, nil)
	f.available.EXPECT().
		OccupiedAt(gomock.Any(), []string{"r-1", "r-2", "h-1"}, gomock.Any()).
		Return(map[string]bool{"r-1": false, "r-2": false, "h-1": true}, nil)

	res, err := f.svc.GetAll(context.Background(), params, gDto.FilterGroup{})

	require.NoError(t, err)
	require.Len(t, res.Resources, 3)
	assert.Equal(t, 1, res.TotalPage)
	assert.Equal(t, string(model.StatusAvailable), res.Resources[0].Status)
	assert.Equal(t, string(model.StatusMaintenance), res.Resources[1].Status)
	assert.Equal(t, string(model.StatusBooked), res.Resources[2].Status)
	assert.Equal(t, []string{}, res.Resources[0].Facilities)
}

func TestResourceService_SetMaintenance(t *testing.T) {
	on := true

	t.Run("flagged", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, update map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, true, update[model.FieldUnderMaintenance])
				assert.Equal(t, staff.ID, update[constant.FieldModifiedBy])

				return 1, nil
			})

		require.NoError(t, f.svc.SetMaintenance(context.Background(), "r-1", dto.SetMaintenanceRequest{UnderMaintenance: &on}, staff))
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		err := f.svc.SetMaintenance(context.Background(), "r-404", dto.SetMaintenanceRequest{UnderMaintenance: &on}, admin)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("guest cannot flag", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.SetMaintenance(context.Background(), "r-1", dto.SetMaintenanceRequest{UnderMaintenance: &on}, guest)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestResourceService_Update(t *testing.T) {
	f := newFixture(t)
	capacity := 4

	f.repo.EXPECT().UpdateCount(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, update map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, &capacity, update[model.FieldCapacity])
			assert.Equal(t, pq.StringArray{"balcony"}, update[model.FieldFacilities])
			assert.NotContains(t, update, model.FieldPrice)

			return 1, nil
		})

	err := f.svc.Update(context.Background(), "r-1", dto.UpdateResourceRequest{
		Capacity:   &capacity,
		Facilities: pq.StringArray{" Balcony", "balcony"},
	}, admin)

	require.NoError(t, err)
}

func TestResourceService_CheckAvailability(t *testing.T) {
	t.Run("free", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{ID: "r-1"}, nil)
		f.available.EXPECT().IsAvailable(gomock.Any(), "r-1", gomock.Any(), gomock.Any(), constant.Empty).Return(true, nil)

		res, err := f.svc.CheckAvailability(context.Background(), "r-1", "2025-05-01", "2025-05-03")

		require.NoError(t, err)
		assert.Equal(t, dto.AvailabilityResponse{ResourceID: "r-1", CheckIn: "2025-05-01", CheckOut: "2025-05-03", Available: true}, res)
	})

	t.Run("under maintenance", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Resource{ID: "r-1", UnderMaintenance: true}, nil)
		f.available.EXPECT().IsAvailable(gomock.Any(), "r-1", gomock.Any(), gomock.Any(), constant.Empty).Return(true, nil)

		res, err := f.svc.CheckAvailability(context.Background(), "r-1", "2025-05-01", "2025-05-03")

		require.NoError(t, err)
		assert.False(t, res.Available)
	})

	t.Run("malformed date", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CheckAvailability(context.Background(), "r-1", "05/01/2025", "2025-05-03")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestResourceService_FindByNumber(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Resource, error) {
		_, args := filter.GetWhereClause()
		assert.Equal(t, "204", args[model.FieldNumber])

		return model.Resource{ID: "r-204", Number: "204"}, nil
	})

	res, err := f.svc.FindByNumber(context.Background(), " 204 ")

	require.NoError(t, err)
	assert.Equal(t, "r-204", res.ID)
}
