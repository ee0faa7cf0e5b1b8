package service_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"hotelops/config"
	"hotelops/infras/otel/mocks"
	transactor "hotelops/infras/postgres/mocks"
	inventoryMocks "hotelops/internal/domains/inventory/mocks"
	"hotelops/internal/domains/inventory/model"
	"hotelops/internal/domains/inventory/model/dto"
	"hotelops/internal/domains/inventory/service"
	resourceMocks "hotelops/internal/domains/resource/mocks"
	resourceModel "hotelops/internal/domains/resource/model"
	taskMocks "hotelops/internal/domains/task/mocks"
	taskModel "hotelops/internal/domains/task/model"
	"hotelops/shared"
	cacheMocks "hotelops/shared/cache/mocks"
	"hotelops/shared/constant"
	"hotelops/shared/event"
	eventMocks "hotelops/shared/event/mocks"
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
	svc       service.Inventory
	items     *memoryItems
	requests  *memoryRequests
	resource  *resourceMocks.MockResourceService
	task      *taskMocks.MockTaskService
	publisher *eventMocks.MockPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	items := &memoryItems{items: map[string]model.Item{
		"item-towel": {ID: "item-towel", Name: "towel", Category: model.CategoryLinen, Stock: 10},
	}}
	requests := &memoryRequests{requests: map[string]model.Request{}}
	resource := resourceMocks.NewMockResourceService(ctrl)
	task := taskMocks.NewMockTaskService(ctrl)
	publisher := eventMocks.NewMockPublisher(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(redis.Nil).AnyTimes()
	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return fixture{
		svc:       service.New(items, requests, resource, task, transactor.NewTransactor(), publisher, cfg, cache, mocks.NewOtel()),
		items:     items,
		requests:  requests,
		resource:  resource,
		task:      task,
		publisher: publisher,
	}
}

func (f fixture) pending(action model.Action, quantity int) string {
	f.requests.requests["req-1"] = model.Request{
		ID: "req-1", ResourceID: "room-101", ItemID: "item-towel", RequestedBy: staff.ID,
		Action: action, Quantity: quantity, Status: model.StatusPending,
	}

	return "req-1"
}

func TestInventoryService_Decide_RestockIsAppliedOnce(t *testing.T) {
	f := newFixture(t)
	id := f.pending(model.ActionRestock, 5)

	f.task.EXPECT().DeriveTasksForRequest(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, request model.Request, item model.Item) (taskModel.Task, error) {
			assert.Equal(t, model.StatusApproved, request.Status)
			assert.Equal(t, 15, item.Stock)

			return taskModel.Task{ID: "task-1", Type: taskModel.TypeRestock}, nil
		}).Times(1)
	f.publisher.EXPECT().Publish(gomock.Any(), event.TopicInventoryRequestDecided, id, admin.ID, gomock.Any()).Times(1)

	res, err := f.svc.Decide(context.Background(), id, dto.DecideRequest{Decision: model.DecisionApprove}, admin)

	require.NoError(t, err)
	assert.Equal(t, string(model.StatusApproved), res.Status)
	assert.Equal(t, "task-1", res.TaskID)
	assert.Equal(t, 15, f.items.items["item-towel"].Stock)
	assert.Equal(t, admin.ID, *f.items.items["item-towel"].LastUpdatedBy)

	_, err = f.svc.Decide(context.Background(), id, dto.DecideRequest{Decision: model.DecisionApprove}, admin)

	require.Error(t, err)
	assert.Equal(t, failure.ReasonInvalidTransition, failure.GetReason(err))
	assert.Equal(t, string(model.StatusApproved), failure.GetState(err))
	assert.Equal(t, 15, f.items.items["item-towel"].Stock)
}

func TestInventoryService_Decide_ConcurrentApprovals(t *testing.T) {
	f := newFixture(t)
	id := f.pending(model.ActionRestock, 5)

	f.task.EXPECT().DeriveTasksForRequest(gomock.Any(), gomock.Any(), gomock.Any()).Return(taskModel.Task{ID: "task-1"}, nil).Times(1)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

	var wg sync.WaitGroup

	for range 6 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _ = f.svc.Decide(context.Background(), id, dto.DecideRequest{Decision: model.DecisionApprove}, admin)
		}()
	}

	wg.Wait()

	assert.Equal(t, 15, f.items.items["item-towel"].Stock)
}

func TestInventoryService_Decide(t *testing.T) {
	t.Run("reject leaves stock alone", func(t *testing.T) {
		f := newFixture(t)
		id := f.pending(model.ActionRestock, 5)

		f.publisher.EXPECT().Publish(gomock.Any(), event.TopicInventoryRequestDecided, id, admin.ID, gomock.Any()).Times(1)

		res, err := f.svc.Decide(context.Background(), id, dto.DecideRequest{Decision: model.DecisionReject}, admin)

		require.NoError(t, err)
		assert.Equal(t, string(model.StatusRejected), res.Status)
		assert.Empty(t, res.TaskID)
		assert.Equal(t, 10, f.items.items["item-towel"].Stock)
	})

	t.Run("approved replacement derives a task without stock change", func(t *testing.T) {
		f := newFixture(t)
		id := f.pending(model.ActionReplacement, 0)

		f.task.EXPECT().DeriveTasksForRequest(gomock.Any(), gomock.Any(), gomock.Any()).Return(taskModel.Task{ID: "task-2"}, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

		res, err := f.svc.Decide(context.Background(), id, dto.DecideRequest{Decision: model.DecisionApprove}, admin)

		require.NoError(t, err)
		assert.Equal(t, "task-2", res.TaskID)
		assert.Equal(t, 10, f.items.items["item-towel"].Stock)
	})

	t.Run("staff cannot decide", func(t *testing.T) {
		f := newFixture(t)
		id := f.pending(model.ActionRestock, 5)

		_, err := f.svc.Decide(context.Background(), id, dto.DecideRequest{Decision: model.DecisionApprove}, staff)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("missing request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Decide(context.Background(), "req-404", dto.DecideRequest{Decision: model.DecisionApprove}, admin)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestInventoryService_SubmitRequest(t *testing.T) {
	room := resourceModel.Resource{ID: "room-101", Kind: resourceModel.KindRoom}
	hall := resourceModel.Resource{ID: "hall-1", Kind: resourceModel.KindHall}

	tests := []struct {
		name         string
		req          dto.SubmitRequest
		actor        shared.Actor
		setup        func(f fixture)
		wantCode     int
		wantQuantity int
	}{
		{
			name:  "restock",
			req:   dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionRestock, Quantity: 5},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), room.ID).Return(room, nil)
			},
			wantQuantity: 5,
		},
		{
			name:  "replacement with no quantity",
			req:   dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionReplacement, Reason: "torn"},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), room.ID).Return(room, nil)
			},
			wantQuantity: 0,
		},
		{
			name:  "replacement with quantity",
			req:   dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionReplacement, Reason: "stained", Quantity: 2},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), room.ID).Return(room, nil)
			},
			wantQuantity: 2,
		},
		{
			name:  "negative quantity",
			req:   dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionReplacement, Reason: "torn", Quantity: -1},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), room.ID).Return(room, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "restock without quantity",
			req:      dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionRestock},
			actor:    staff,
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "replacement without reason",
			req:      dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionReplacement, Reason: "  "},
			actor:    staff,
			setup:    func(fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "hall is not a room",
			req:   dto.SubmitRequest{ResourceID: hall.ID, ItemID: "item-towel", Action: model.ActionRestock, Quantity: 1},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), hall.ID).Return(hall, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "unknown item",
			req:   dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-404", Action: model.ActionRestock, Quantity: 1},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), room.ID).Return(room, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:  "unknown room",
			req:   dto.SubmitRequest{ResourceID: "room-404", ItemID: "item-towel", Action: model.ActionRestock, Quantity: 1},
			actor: staff,
			setup: func(f fixture) {
				f.resource.EXPECT().Find(gomock.Any(), "room-404").Return(resourceModel.Resource{}, failure.NotFound("resource not found"))
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "guest cannot submit",
			req:      dto.SubmitRequest{ResourceID: room.ID, ItemID: "item-towel", Action: model.ActionRestock, Quantity: 1},
			actor:    guest,
			setup:    func(fixture) {},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			res, err := f.svc.SubmitRequest(context.Background(), tt.req, tt.actor)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
				assert.Empty(t, f.requests.requests)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(model.StatusPending), res.Status)
			assert.Equal(t, tt.actor.ID, res.RequestedBy)
			require.Contains(t, f.requests.requests, res.ID)
			assert.Equal(t, tt.wantQuantity, f.requests.requests[res.ID].Quantity)
		})
	}
}

func TestInventoryService_CreateItem(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(t)

		res, err := f.svc.CreateItem(context.Background(), dto.CreateItemRequest{Name: " soap ", Category: model.CategoryToiletry, Stock: 3}, admin)

		require.NoError(t, err)
		assert.Equal(t, "soap", res.Name)
		assert.Equal(t, admin.ID, res.LastUpdatedBy)
	})

	t.Run("duplicate name ignores case", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateItem(context.Background(), dto.CreateItemRequest{Name: "Towel", Category: model.CategoryLinen, Stock: 1}, admin)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.Len(t, f.items.items, 1)
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		items := inventoryMocks.NewMockItem(ctrl)
		items.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "08006"})

		cache := cacheMocks.NewMockRedisCache(ctrl)
		svc := service.New(items, &memoryRequests{}, nil, nil, transactor.NewTransactor(), nil, &config.Config{}, cache, mocks.NewOtel())

		_, err := svc.CreateItem(context.Background(), dto.CreateItemRequest{Name: "soap", Category: model.CategoryToiletry}, admin)

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
