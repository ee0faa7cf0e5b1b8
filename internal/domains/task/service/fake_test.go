package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"hotelops/internal/domains/task/model"
	gDto "hotelops/shared/dto"
)

// memoryRepo keeps tasks in memory and interprets the filters the service
// builds: by id, by id and state, and by assignee visibility.
type memoryRepo struct {
	mu    sync.Mutex
	seq   int64
	tasks []model.Task
}

func (r *memoryRepo) InsertIfAbsent(_ context.Context, task model.Task) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.Type != task.Type {
			continue
		}

		if sameRef(t.BookingID, task.BookingID) || sameRef(t.RequestID, task.RequestID) {
			return false, nil
		}
	}

	r.seq++
	task.Seq = r.seq
	r.tasks = append(r.tasks, task)

	return true, nil
}

func (r *memoryRepo) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, args := filter.GetWhereClause()

	for _, t := range r.tasks {
		if t.ID == args[model.FieldID] {
			return t, nil
		}
	}

	return model.Task{}, nil
}

func (r *memoryRepo) visible(filter gDto.FilterGroup) []model.Task {
	_, args := filter.GetWhereClause()
	staff, _ := args[model.FieldAssigneeID].(string)

	out := []model.Task{}

	for _, t := range r.tasks {
		if t.AssigneeID == nil || *t.AssigneeID == staff {
			out = append(out, t)
		}
	}

	return out
}

func (r *memoryRepo) GetAll(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.visible(filter)

	slices.SortFunc(tasks, func(a, b model.Task) int {
		if c := a.ScheduledDate.Compare(b.ScheduledDate); c != 0 {
			return c
		}

		return int(a.Seq - b.Seq)
	})

	start := min((params.Page-1)*params.Limit, len(tasks))
	end := min(start+params.Limit, len(tasks))

	return tasks[start:end], nil
}

func (r *memoryRepo) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.visible(filter)), nil
}

// UpdateCount matches on id or booking id, plus the expected status.
func (r *memoryRepo) UpdateCount(_ context.Context, update map[string]any, filter gDto.FilterGroup) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, args := filter.GetWhereClause()

	var rows int64

	for i, t := range r.tasks {
		if t.Status != args[model.FieldStatus] {
			continue
		}

		if id, ok := args[model.FieldID]; ok && t.ID != id {
			continue
		}

		if booking, ok := args[model.FieldBookingID]; ok && (t.BookingID == nil || *t.BookingID != booking) {
			continue
		}

		if status, ok := update[model.FieldStatus].(model.Status); ok {
			t.Status = status
		}

		if by, ok := update[model.FieldCompletedBy].(string); ok {
			t.CompletedBy = &by
		}

		if at, ok := update[model.FieldCompletedAt].(time.Time); ok {
			t.CompletedAt = &at
		}

		if assignee, ok := update[model.FieldAssigneeID].(string); ok {
			t.AssigneeID = &assignee
		}

		r.tasks[i] = t
		rows++
	}

	return rows, nil
}

func sameRef(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
