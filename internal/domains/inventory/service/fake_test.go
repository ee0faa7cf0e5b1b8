package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"hotelops/internal/domains/inventory/model"
	"hotelops/shared/constant"
	gDto "hotelops/shared/dto"

	"github.com/lib/pq"
)

type memoryItems struct {
	mu    sync.Mutex
	items map[string]model.Item
}

// Insert enforces inventory_items_name_key.
func (m *memoryItems) Insert(_ context.Context, item model.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.items {
		if strings.EqualFold(existing.Name, item.Name) {
			return &pq.Error{Code: constant.PqErrorCodeUniqueViolation, Constraint: "inventory_items_name_key"}
		}
	}

	m.items[item.ID] = item

	return nil
}

func (m *memoryItems) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, args := filter.GetWhereClause()
	id, _ := args[model.FieldID].(string)

	return m.items[id], nil
}

func (m *memoryItems) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]model.Item, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *memoryItems) Count(context.Context, gDto.FilterGroup) (int, error) {
	return 0, fmt.Errorf("not supported")
}

func (m *memoryItems) AddStock(_ context.Context, id string, quantity int, actor string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return 0, fmt.Errorf("failed to add stock: %w", sql.ErrNoRows)
	}

	item.Stock += quantity
	item.LastUpdated = at
	item.LastUpdatedBy = &actor
	m.items[id] = item

	return item.Stock, nil
}

type memoryRequests struct {
	mu       sync.Mutex
	requests map[string]model.Request
}

// Insert enforces the quantity checks of inventory_requests.
func (m *memoryRequests) Insert(_ context.Context, request model.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if request.Quantity < 0 || (request.Action == model.ActionRestock && request.Quantity <= 0) {
		return &pq.Error{Code: constant.PqErrorCodeCheckViolation, Constraint: "inventory_requests_restock_quantity_check"}
	}

	m.requests[request.ID] = request

	return nil
}

func (m *memoryRequests) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, args := filter.GetWhereClause()
	id, _ := args[model.FieldID].(string)

	return m.requests[id], nil
}

func (m *memoryRequests) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]model.Request, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *memoryRequests) Count(context.Context, gDto.FilterGroup) (int, error) {
	return 0, fmt.Errorf("not supported")
}

// UpdateCount honours the id and expected status carried by the filter.
func (m *memoryRequests) UpdateCount(_ context.Context, update map[string]any, filter gDto.FilterGroup) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, args := filter.GetWhereClause()
	id, _ := args[model.FieldID].(string)

	request, ok := m.requests[id]
	if !ok || request.Status != args[model.FieldStatus] {
		return 0, nil
	}

	request.Status, _ = update[model.FieldStatus].(model.Status)

	if by, ok := update[model.FieldDecidedBy].(string); ok {
		request.DecidedBy = &by
	}

	m.requests[id] = request

	return 1, nil
}
