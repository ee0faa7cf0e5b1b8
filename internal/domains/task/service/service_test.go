package service_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotelops/infras/otel/mocks"
	bookingModel "hotelops/internal/domains/booking/model"
	guestMocks "hotelops/internal/domains/guest/mocks"
	guestDto "hotelops/internal/domains/guest/model/dto"
	inventoryModel "hotelops/internal/domains/inventory/model"
	resourceModel "hotelops/internal/domains/resource/model"
	"hotelops/internal/domains/task/model"
	"hotelops/internal/domains/task/model/dto"
	"hotelops/internal/domains/task/service"
	"hotelops/shared"
	"hotelops/shared/constant"
	"hotelops/shared/event"
	eventMocks "hotelops/shared/event/mocks"
	"hotelops/shared/failure"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	admin  = shared.Actor{ID: "admin-1", Role: constant.RoleAdmin}
	alice  = shared.Actor{ID: "staff-alice", Role: constant.RoleStaff}
	bob    = shared.Actor{ID: "staff-bob", Role: constant.RoleStaff}
	guestA = shared.Actor{ID: "guest-1", Role: constant.RoleGuest}
)

type fixture struct {
	svc       service.Task
	repo      *memoryRepo
	guest     *guestMocks.MockGuestService
	publisher *eventMocks.MockPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := &memoryRepo{}
	guest := guestMocks.NewMockGuestService(ctrl)
	publisher := eventMocks.NewMockPublisher(ctrl)

	return fixture{
		svc:       service.New(repo, guest, publisher, mocks.NewOtel()),
		repo:      repo,
		guest:     guest,
		publisher: publisher,
	}
}

func (f fixture) seed(n int, assignee *string) []string {
	ids := make([]string, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := range n {
		ids[i] = fmt.Sprintf("task-%02d", i)
		_, _ = f.repo.InsertIfAbsent(context.Background(), model.Task{
			ID:            ids[i],
			Type:          model.TypeCleaning,
			Status:        model.StatusPending,
			ScheduledDate: base.AddDate(0, 0, i/5),
			AssigneeID:    assignee,
		})
	}

	return ids
}

func TestTaskService_DeriveTasksForBooking(t *testing.T) {
	checkOut := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		resource  resourceModel.Resource
		wantTypes []model.Type
	}{
		{
			name:      "room",
			resource:  resourceModel.Resource{ID: "r-101", Number: "101", Kind: resourceModel.KindRoom},
			wantTypes: []model.Type{model.TypeCleaning, model.TypeInspection},
		},
		{
			name:      "hall",
			resource:  resourceModel.Resource{ID: "h-1", Number: "Ballroom", Kind: resourceModel.KindHall},
			wantTypes: []model.Type{model.TypeCleaning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			booking := bookingModel.Booking{ID: "b-1", ResourceID: tt.resource.ID, CheckOut: checkOut}

			tasks, err := f.svc.DeriveTasksForBooking(context.Background(), booking, tt.resource)
			require.NoError(t, err)

			gotTypes := make([]model.Type, len(tasks))
			for i, task := range tasks {
				gotTypes[i] = task.Type

				assert.Equal(t, checkOut, task.ScheduledDate)
				assert.Equal(t, model.StatusPending, task.Status)
				assert.Equal(t, "b-1", *task.BookingID)
			}

			assert.Equal(t, tt.wantTypes, gotTypes)

			again, err := f.svc.DeriveTasksForBooking(context.Background(), booking, tt.resource)
			require.NoError(t, err)
			assert.Empty(t, again)
			assert.Len(t, f.repo.tasks, len(tt.wantTypes))
		})
	}
}

func TestTaskService_DeriveTasksForRequest(t *testing.T) {
	decider := admin.ID
	item := inventoryModel.Item{ID: "item-1", Name: "towel"}

	t.Run("restock", func(t *testing.T) {
		f := newFixture(t)

		task, err := f.svc.DeriveTasksForRequest(context.Background(), inventoryModel.Request{
			ID: "req-1", ResourceID: "r-101", Action: inventoryModel.ActionRestock, Quantity: 5,
			Status: inventoryModel.StatusApproved, DecidedBy: &decider,
		}, item)

		require.NoError(t, err)
		assert.Equal(t, model.TypeRestock, task.Type)
		assert.Equal(t, "restock 5 x towel", task.Description)
		assert.Equal(t, admin.ID, task.CreatedBy)
	})

	t.Run("replacement", func(t *testing.T) {
		f := newFixture(t)

		task, err := f.svc.DeriveTasksForRequest(context.Background(), inventoryModel.Request{
			ID: "req-2", ResourceID: "r-101", Action: inventoryModel.ActionReplacement,
			Status: inventoryModel.StatusApproved, DecidedBy: &decider,
		}, item)

		require.NoError(t, err)
		assert.Equal(t, model.TypeReplacement, task.Type)
	})

	t.Run("pending request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.DeriveTasksForRequest(context.Background(), inventoryModel.Request{
			ID: "req-3", Status: inventoryModel.StatusPending,
		}, item)

		require.Error(t, err)
		assert.Equal(t, failure.ReasonInvalidTransition, failure.GetReason(err))
		assert.Empty(t, f.repo.tasks)
	})
}

func TestTaskService_ListTasks_Pagination(t *testing.T) {
	f := newFixture(t)
	ids := f.seed(25, nil)

	page2, err := f.svc.ListTasks(context.Background(), alice.ID, 2, 10, alice)
	require.NoError(t, err)

	assert.Equal(t, 2, page2.Page)
	assert.Equal(t, 3, page2.TotalPages)
	assert.Equal(t, 25, page2.TotalData)

	if diff := cmp.Diff(ids[10:20], taskIDs(page2)); diff != "" {
		t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
	}

	page3, err := f.svc.ListTasks(context.Background(), alice.ID, 3, 10, alice)
	require.NoError(t, err)

	if diff := cmp.Diff(ids[20:], taskIDs(page3)); diff != "" {
		t.Errorf("page 3 mismatch (-want +got):\n%s", diff)
	}

	empty, err := f.svc.ListTasks(context.Background(), alice.ID, 4, 10, alice)
	require.NoError(t, err)
	assert.Empty(t, empty.Tasks)
	assert.Equal(t, 3, empty.TotalPages)
}

func TestTaskService_ListTasks_Visibility(t *testing.T) {
	f := newFixture(t)
	bobID := bob.ID

	f.seed(2, nil)
	_, _ = f.repo.InsertIfAbsent(context.Background(), model.Task{ID: "bob-task", Status: model.StatusPending, Type: model.TypeInspection, AssigneeID: &bobID})

	res, err := f.svc.ListTasks(context.Background(), constant.Empty, 1, 10, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-00", "task-01"}, taskIDs(res))

	res, err = f.svc.ListTasks(context.Background(), bob.ID, 1, 10, admin)
	require.NoError(t, err)
	assert.Len(t, res.Tasks, 3)

	_, err = f.svc.ListTasks(context.Background(), bob.ID, 1, 10, alice)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))

	_, err = f.svc.ListTasks(context.Background(), constant.Empty, 1, 10, guestA)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))

	_, err = f.svc.ListTasks(context.Background(), constant.Empty, 0, 10, alice)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	empty := newFixture(t)
	res, err = empty.svc.ListTasks(context.Background(), constant.Empty, 1, 10, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalPages)
}

func TestTaskService_Complete(t *testing.T) {
	t.Run("second completion is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.seed(1, nil)

		f.publisher.EXPECT().Publish(gomock.Any(), event.TopicTaskCompleted, "task-00", alice.ID, gomock.Any()).Times(1)

		res, err := f.svc.Complete(context.Background(), "task-00", alice)
		require.NoError(t, err)
		assert.Equal(t, string(model.StatusCompleted), res.Status)
		assert.Equal(t, alice.ID, res.CompletedBy)

		_, err = f.svc.Complete(context.Background(), "task-00", alice)
		require.Error(t, err)
		assert.Equal(t, failure.ReasonInvalidTransition, failure.GetReason(err))
		assert.Equal(t, string(model.StatusCompleted), failure.GetState(err))
	})

	t.Run("concurrent completions have one winner", func(t *testing.T) {
		f := newFixture(t)
		f.seed(1, nil)

		f.publisher.EXPECT().Publish(gomock.Any(), event.TopicTaskCompleted, "task-00", gomock.Any(), gomock.Any()).Times(1)

		var (
			wg      sync.WaitGroup
			success atomic.Int32
			lost    atomic.Int32
		)

		for range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := f.svc.Complete(context.Background(), "task-00", alice)
				if err == nil {
					success.Add(1)
				} else if failure.Is(err, failure.ReasonInvalidTransition) {
					lost.Add(1)
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, int32(1), success.Load())
		assert.Equal(t, int32(7), lost.Load())
	})

	t.Run("assigned to someone else", func(t *testing.T) {
		f := newFixture(t)
		bobID := bob.ID
		f.seed(1, &bobID)

		_, err := f.svc.Complete(context.Background(), "task-00", alice)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Complete(context.Background(), "task-404", alice)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestTaskService_CloseTasksForBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking, other := "booking-1", "booking-2"
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	for i, task := range []model.Task{
		{ID: "t-clean", BookingID: &booking, Status: model.StatusPending},
		{ID: "t-inspect", BookingID: &booking, Status: model.StatusPending},
		{ID: "t-done", BookingID: &booking, Status: model.StatusCompleted},
		{ID: "t-other", BookingID: &other, Status: model.StatusPending},
	} {
		task.Type = model.Type(fmt.Sprintf("type-%d", i))
		task.ScheduledDate = day
		_, err := f.repo.InsertIfAbsent(ctx, task)
		require.NoError(t, err)
	}

	system := shared.SystemActor()

	closed, err := f.svc.CloseTasksForBooking(ctx, booking, system)
	require.NoError(t, err)
	assert.Equal(t, int64(2), closed)

	status := map[string]model.Status{}
	for _, task := range f.repo.tasks {
		status[task.ID] = task.Status

		if task.ID == "t-clean" || task.ID == "t-inspect" {
			require.NotNil(t, task.CompletedBy)
			assert.Equal(t, constant.ActorSystem, *task.CompletedBy)
		}
	}

	want := map[string]model.Status{
		"t-clean":   model.StatusCompleted,
		"t-inspect": model.StatusCompleted,
		"t-done":    model.StatusCompleted,
		"t-other":   model.StatusPending,
	}
	if diff := cmp.Diff(want, status); diff != "" {
		t.Errorf("task status mismatch (-want +got):\n%s", diff)
	}

	closed, err = f.svc.CloseTasksForBooking(ctx, booking, system)
	require.NoError(t, err)
	assert.Zero(t, closed)
}

func TestTaskService_Assign(t *testing.T) {
	t.Run("assigned", func(t *testing.T) {
		f := newFixture(t)
		f.seed(1, nil)

		f.guest.EXPECT().Get(gomock.Any(), bob.ID).Return(guestDto.GuestResponse{ID: bob.ID, Role: constant.RoleStaff, Status: "active"}, nil)

		res, err := f.svc.Assign(context.Background(), "task-00", dto.AssignTaskRequest{StaffID: bob.ID}, admin)

		require.NoError(t, err)
		assert.Equal(t, bob.ID, res.AssigneeID)
		assert.Equal(t, bob.ID, *f.repo.tasks[0].AssigneeID)
	})

	t.Run("guest cannot be assigned", func(t *testing.T) {
		f := newFixture(t)
		f.seed(1, nil)

		f.guest.EXPECT().Get(gomock.Any(), guestA.ID).Return(guestDto.GuestResponse{ID: guestA.ID, Role: constant.RoleGuest, Status: "active"}, nil)

		_, err := f.svc.Assign(context.Background(), "task-00", dto.AssignTaskRequest{StaffID: guestA.ID}, admin)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("staff cannot assign", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Assign(context.Background(), "task-00", dto.AssignTaskRequest{StaffID: bob.ID}, alice)

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestVisibleTo(t *testing.T) {
	filter := service.VisibleTo("staff-1")
	where, args := filter.GetWhereClause()

	assert.Equal(t, "((tasks.assignee_id = :assignee_id OR tasks.assignee_id IS NULL))", where)
	assert.Equal(t, map[string]any{"assignee_id": "staff-1"}, args)
}

func taskIDs(res dto.ListTasksResponse) []string {
	ids := make([]string, len(res.Tasks))
	for i, task := range res.Tasks {
		ids[i] = task.ID
	}

	return ids
}
