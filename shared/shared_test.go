package shared_test

import (
	"context"
	"errors"
	"testing"

	"hotelops/shared"
	"hotelops/shared/cache/mocks"
	"hotelops/shared/constant"
	"hotelops/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		input    string
		expected *bool
	}{
		{input: "true", expected: boolPtr(true)},
		{input: "1", expected: boolPtr(true)},
		{input: "false", expected: boolPtr(false)},
		{input: "0", expected: boolPtr(false)},
		{input: "", expected: nil},
		{input: "yes", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.ConvertStringToBool(tt.input))
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "empty result still has one page", total: 0, limit: 10, expected: 1},
		{name: "partial last page", total: 25, limit: 10, expected: 3},
		{name: "exact pages", total: 20, limit: 10, expected: 2},
		{name: "zero limit", total: 5, limit: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type patch struct {
		FullName string `db:"full_name"`
		Email    string `db:"email"`
		Ignored  string `db:"-"`
		NoTag    string
	}

	result := shared.TransformFields(patch{FullName: "Ada Guest", Ignored: "x", NoTag: "y"}, "guest-1")

	assert.Equal(t, "Ada Guest", result["full_name"])
	assert.NotContains(t, result, "email")
	assert.NotContains(t, result, "-")
	assert.Equal(t, "guest-1", result[constant.FieldModifiedBy])
	assert.Contains(t, result, constant.FieldModifiedAt)
	assert.Len(t, result, 3)
}

func TestActor(t *testing.T) {
	actor := shared.Actor{ID: "staff-1", Email: "staff@hotel.test", Role: constant.RoleStaff}
	ctx := shared.WithActor(context.Background(), actor)

	assert.Equal(t, actor, shared.ActorFromContext(ctx))
	assert.True(t, actor.IsStaff())
	assert.False(t, actor.IsAdmin())
	assert.True(t, shared.SystemActor().IsAdmin())
	assert.Equal(t, shared.Actor{}, shared.ActorFromContext(context.Background()))
}

func TestFilters(t *testing.T) {
	group := shared.And(
		shared.FilterEq("status", "confirmed", "bookings"),
		shared.FilterByID("room-1", "resource_id", "bookings"),
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(bookings.status = :status AND (bookings.resource_id = :resource_id))", where)
	assert.Equal(t, map[string]any{"status": "confirmed", "resource_id": "room-1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "guest", shared.BuildCacheKey("guest"))
	assert.Equal(t, "guest:resolve:ada@hotel.test", shared.BuildCacheKey("guest", "resolve", "ada@hotel.test"))

	params := dto.QueryParams{Page: 1, Limit: 10}
	filter := shared.FilterByID("room-1", "resource_id", "bookings")

	first := shared.BuildCacheKeyWithQuery("bookings", params, filter)
	second := shared.BuildCacheKeyWithQuery("bookings", params, filter)
	other := shared.BuildCacheKeyWithQuery("bookings", dto.QueryParams{Page: 2, Limit: 10}, filter)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Contains(t, first, "bookings:")
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockRedisCache(ctrl)

	cache.EXPECT().Clear(gomock.Any(), "resources*").Return(nil)
	shared.InvalidateCaches(context.Background(), cache, "resources")

	cache.EXPECT().Clear(gomock.Any(), "guests*").Return(errors.New("redis down"))
	assert.NotPanics(t, func() { shared.InvalidateCaches(context.Background(), cache, "guests") })
}

func boolPtr(b bool) *bool {
	return &b
}
