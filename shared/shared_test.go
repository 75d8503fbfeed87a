package shared_test

import (
	"context"
	"errors"
	"roombook/shared"
	"roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/shared/dto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "no bookings still has one page", total: 0, limit: 10, want: 1},
		{name: "exact fit", total: 20, limit: 10, want: 2},
		{name: "partial last page", total: 21, limit: 10, want: 3},
		{name: "fewer than a page", total: 3, limit: 10, want: 1},
		{name: "missing limit", total: 7, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

type roomUpdate struct {
	Name     string   `db:"name"`
	Capacity string   `db:"capacity"`
	Floor    *string  `db:"floor"`
	Active   *bool    `db:"is_active"`
	Amenity  []string `db:"-"`
	Internal string
}

func TestTransformFields(t *testing.T) {
	floor := "3"
	inactive := false

	before := time.Now().Add(-time.Second)
	got := shared.TransformFields(roomUpdate{
		Name:     "Ruang Rapat B",
		Floor:    &floor,
		Active:   &inactive,
		Amenity:  []string{"projector"},
		Internal: "not a column",
	}, "admin")

	assert.Equal(t, "Ruang Rapat B", got["name"])
	assert.Equal(t, &floor, got["floor"])
	assert.Equal(t, &inactive, got["is_active"])
	assert.Equal(t, "admin", got[constant.FieldModifiedBy])
	assert.NotContains(t, got, "capacity")
	assert.NotContains(t, got, "-")
	assert.Len(t, got, 5)

	modifiedAt, ok := got[constant.FieldModifiedAt].(time.Time)
	require.True(t, ok)
	assert.True(t, modifiedAt.After(before))
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("b1", "id", "bookings")

	sql, args, err := filter.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(bookings.id = ?)", sql)
	assert.Equal(t, []any{"b1"}, args)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get:b1", shared.BuildCacheKey("booking", "get", "b1"))
	assert.Equal(t, "limiter:10.0.0.1", shared.BuildCacheKey("limiter", "", "10.0.0.1", ""))
	assert.Equal(t, "room", shared.BuildCacheKey("room"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	pending := dto.FilterGroup{Filters: []any{dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq}}}
	approved := dto.FilterGroup{Filters: []any{dto.Filter{Field: "status", Value: "approved", Operator: dto.FilterOperatorEq}}}

	key := shared.BuildCacheKeyWithQuery("booking:gets", params, pending)

	assert.True(t, strings.HasPrefix(key, "booking:gets:"))
	assert.Equal(t, key, shared.BuildCacheKeyWithQuery("booking:gets", params, pending))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("booking:gets", params, approved))
	assert.NotEqual(t, key, shared.BuildCacheKeyWithQuery("booking:gets", dto.QueryParams{Page: 2, Limit: 10}, pending))
}

func TestInvalidateCaches(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "cleared"},
		{name: "cache error is only logged", err: errors.New("redis down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mocks.NewMockCache(ctrl)
			c.EXPECT().Clear(gomock.Any(), "room:gets*").Return(tt.err)

			shared.InvalidateCaches(context.Background(), c, "room:gets")
		})
	}
}
