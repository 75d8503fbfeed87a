package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	s3Mocks "roombook/infras/s3/mocks"
	roomMocks "roombook/internal/domains/room/mocks"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/service"
	cacheMocks "roombook/shared/cache/mocks"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/imageproc"
)

// 1x1 transparent png
const pngDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

type fixture struct {
	repo  *roomMocks.MockRoom
	s3    *s3Mocks.MockS3
	cache *cacheMocks.MockCache
	cfg   *config.Config
	svc   service.Room
}

func newFixture(t *testing.T, s3Enabled bool) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:  roomMocks.NewMockRoom(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
		cache: cacheMocks.NewMockCache(ctrl),
		cfg:   &config.Config{},
	}

	f.cfg.External.S3.Enable = s3Enabled
	f.cfg.External.S3.Directory = "rooms"
	f.cfg.App.Image.MaxWidth = 1280
	f.cfg.App.Image.MaxHeight = 720
	f.cfg.App.Image.MaxSizeMB = 2

	f.svc = service.New(f.repo, f.cfg, f.cache, otelMocks.NewOtel(), f.s3, imageproc.New(f.cfg))

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func TestRoomService_Create(t *testing.T) {
	tests := []struct {
		name      string
		s3Enabled bool
		req       dto.CreateRoomRequest
		setupMock func(f *fixture)
		check     func(t *testing.T, res dto.RoomResponse)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "plain url kept as is",
			req:  dto.CreateRoomRequest{Name: "Meeting Room A", Capacity: "10", Image: "https://cdn.example.com/a.jpg"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						assert.Equal(t, "https://cdn.example.com/a.jpg", room.Image)
						assert.True(t, room.IsActive)

						return nil
					})
			},
			check: func(t *testing.T, res dto.RoomResponse) {
				assert.Equal(t, "Meeting Room A", res.Name)
				assert.NotNil(t, res.Amenities)
			},
		},
		{
			name: "data url stored inline without object storage",
			req:  dto.CreateRoomRequest{Name: "Meeting Room B", Image: pngDataURL},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						assert.True(t, strings.HasPrefix(room.Image, "data:image/jpeg;base64,"))

						return nil
					})
			},
		},
		{
			name:      "data url uploaded to object storage",
			s3Enabled: true,
			req:       dto.CreateRoomRequest{Name: "Meeting Room C", Image: pngDataURL},
			setupMock: func(f *fixture) {
				f.s3.EXPECT().Upload(gomock.Any(), "rooms", gomock.Any(), "image/jpeg", gomock.Any()).
					Return("https://cdn.example.com/rooms/x.jpg", nil)
				f.s3.EXPECT().ObjectKeyFromURL("https://cdn.example.com/rooms/x.jpg").Return("rooms/x.jpg")
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						assert.Equal(t, "https://cdn.example.com/rooms/x.jpg", room.Image)

						return nil
					})
			},
			check: func(t *testing.T, res dto.RoomResponse) {
				assert.Equal(t, "https://cdn.example.com/rooms/x.jpg", res.Image)
			},
		},
		{
			name:      "uploaded image removed when insert fails",
			s3Enabled: true,
			req:       dto.CreateRoomRequest{Name: "Meeting Room D", Image: pngDataURL},
			setupMock: func(f *fixture) {
				f.s3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn.example.com/rooms/y.jpg", nil)
				f.s3.EXPECT().ObjectKeyFromURL(gomock.Any()).Return("rooms/y.jpg")
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
				f.s3.EXPECT().Delete(gomock.Any(), "rooms/y.jpg").Return(nil)
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
		{
			name:      "broken data url",
			req:       dto.CreateRoomRequest{Name: "Meeting Room E", Image: "data:image/png;base64,@@@"},
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "unsupported image type",
			req:       dto.CreateRoomRequest{Name: "Meeting Room F", Image: "data:text/plain;base64,SGVsbG8="},
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.s3Enabled)
			tt.setupMock(f)

			res, err := f.svc.Create(context.Background(), tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, res.ID)

			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestRoomService_GetAll(t *testing.T) {
	f := newFixture(t, false)

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
			require.NotEmpty(t, filter.Filters)
			active, ok := filter.Filters[0].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, model.FieldIsActive, active.Field)
			assert.Equal(t, true, active.Value)

			return 2, nil
		})
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Room{{ID: "r1", Name: "A", IsActive: true}, {ID: "r2", Name: "B", IsActive: true}}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Len(t, res.Rooms, 2)
	assert.Equal(t, 2, res.TotalData)
}

func TestRoomService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "active room",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "r1", Name: "A", IsActive: true}, nil)
			},
		},
		{
			name: "removed or unknown room",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository failure",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, errors.New("db down"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), "r1")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "r1", res.ID)
		})
	}
}

func TestRoomService_Update(t *testing.T) {
	tests := []struct {
		name      string
		s3Enabled bool
		req       dto.UpdateRoomRequest
		setupMock func(f *fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "renames the room",
			req:  dto.UpdateRoomRequest{Name: "Board Room"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "r1", IsActive: true}, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, "Board Room", fields[model.FieldName])
						assert.NotContains(t, fields, model.FieldImage)

						return nil
					})
			},
		},
		{
			name:      "replacing an uploaded image removes the old object",
			s3Enabled: true,
			req:       dto.UpdateRoomRequest{Image: pngDataURL},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(model.Room{ID: "r1", IsActive: true, Image: "https://cdn.example.com/rooms/old.jpg"}, nil)
				f.s3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn.example.com/rooms/new.jpg", nil)
				f.s3.EXPECT().ObjectKeyFromURL("https://cdn.example.com/rooms/new.jpg").Return("rooms/new.jpg")
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, "https://cdn.example.com/rooms/new.jpg", fields[model.FieldImage])

						return nil
					})
				f.s3.EXPECT().ObjectKeyFromURL("https://cdn.example.com/rooms/old.jpg").Return("rooms/old.jpg")
				f.s3.EXPECT().Delete(gomock.Any(), "rooms/old.jpg").Return(nil)
			},
		},
		{
			name:      "empty request",
			req:       dto.UpdateRoomRequest{},
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "inactive room",
			req:  dto.UpdateRoomRequest{Floor: "3"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.s3Enabled)
			tt.setupMock(f)

			err := f.svc.Update(context.Background(), tt.req, "r1")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestRoomService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "deactivates the room",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, false, fields[model.FieldIsActive])

						return nil
					})
			},
		},
		{
			name: "already removed",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			tt.setupMock(f)

			err := f.svc.Delete(context.Background(), "r1")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestRoomService_DeleteClearsBookingViews(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := roomMocks.NewMockRoom(ctrl)
	cache := cacheMocks.NewMockCache(ctrl)
	cfg := &config.Config{}

	svc := service.New(repo, cfg, cache, otelMocks.NewOtel(), s3Mocks.NewMockS3(ctrl), imageproc.New(cfg))

	cleared := make(chan string, 3)

	repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	cache.EXPECT().Delete(gomock.Any(), "room:get:r1").Return(nil)
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pattern string) error {
			cleared <- pattern

			return nil
		}).Times(3)

	require.NoError(t, svc.Delete(context.Background(), "r1"))

	got := []string{}

	for range 3 {
		select {
		case pattern := <-cleared:
			got = append(got, pattern)
		case <-time.After(time.Second):
			t.Fatal("caches were not invalidated")
		}
	}

	assert.ElementsMatch(t, []string{"booking:*", "room:gets*", "room:count*"}, got)
}
