package service_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/metrics"
	"roombook/infras/otel/mocks"
	"roombook/infras/postgres"
	txMocks "roombook/infras/postgres/mocks"
	eventMocks "roombook/internal/domains/booking/event/mocks"
	bookingMocks "roombook/internal/domains/booking/mocks"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/service"
	"roombook/internal/domains/booking/validation"
	roomMocks "roombook/internal/domains/room/mocks"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/failure"
	"roombook/shared/i18n"
)

type fixture struct {
	repo      *bookingMocks.MockBooking
	roomRepo  *roomMocks.MockRoom
	tx        *txMocks.MockTransactor
	publisher *eventMocks.MockPublisher
	cache     *cacheMocks.MockCache
	cfg       *config.Config
	svc       service.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		roomRepo:  roomMocks.NewMockRoom(ctrl),
		tx:        txMocks.NewMockTransactor(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
		cache:     cacheMocks.NewMockCache(ctrl),
		cfg:       &config.Config{},
	}

	today := func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) }

	f.svc = service.New(
		f.repo,
		f.roomRepo,
		f.tx,
		validation.New(30, today),
		f.publisher,
		metrics.New(f.cfg),
		f.cfg,
		f.cache,
		mocks.NewOtel(),
	)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

// runTx executes the transaction body with a nil tx; repository mocks never touch it.
func (f *fixture) runTx() {
	f.tx.EXPECT().DoSerializable(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn postgres.TxFunc) error {
			return fn(ctx, (*sqlx.Tx)(nil))
		})
}

func submission() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		Name:        "Rina",
		Phone:       "0812345678",
		Unit:        "Finance",
		RoomID:      "r1",
		BookingDate: "2025-06-10",
		StartTime:   "10:00",
		EndTime:     "11:00",
	}
}

func approvedSlot(start, end int) model.Slot {
	return model.Slot{
		ID:          "existing",
		RoomID:      "r1",
		BookingDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartMinute: start,
		EndMinute:   end,
		Status:      model.StatusApproved,
	}
}

func TestBookingService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        func() dto.CreateBookingRequest
		setupMock  func(f *fixture)
		wantCode   int
		wantFields []string
		wantErr    bool
	}{
		{
			name: "creates pending booking in free slot",
			req:  submission,
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), "r1", gomock.Any()).
					Return([]model.Slot{approvedSlot(9*60, 10*60)}, nil)
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, b model.Booking) error {
						assert.Equal(t, model.StatusPending, b.Status)
						assert.Equal(t, 600, b.StartMinute)
						assert.Equal(t, 660, b.EndMinute)

						return nil
					})
			},
		},
		{
			name: "overlapping approved booking",
			req:  submission,
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), "r1", gomock.Any()).
					Return([]model.Slot{approvedSlot(9*60, 10*60+30)}, nil)
			},
			wantErr:    true,
			wantCode:   http.StatusConflict,
			wantFields: []string{validation.FieldStartTime},
		},
		{
			name: "weekend date",
			req: func() dto.CreateBookingRequest {
				req := submission()
				req.BookingDate = "2025-06-14"

				return req
			},
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantErr:    true,
			wantCode:   http.StatusBadRequest,
			wantFields: []string{validation.FieldBookingDate},
		},
		{
			name: "inactive room",
			req:  submission,
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantErr:    true,
			wantCode:   http.StatusBadRequest,
			wantFields: []string{validation.FieldRoomID},
		},
		{
			name: "missing fields skip the conflict lookup",
			req: func() dto.CreateBookingRequest {
				req := submission()
				req.Name = ""
				req.EndTime = ""

				return req
			},
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:    true,
			wantCode:   http.StatusBadRequest,
			wantFields: []string{validation.FieldName, validation.FieldEndTime},
		},
		{
			name: "exclusion constraint wins the race",
			req:  submission,
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: "23P01"})
			},
			wantErr:    true,
			wantCode:   http.StatusConflict,
			wantFields: []string{validation.FieldStartTime},
		},
		{
			name: "serialization failure",
			req:  submission,
			setupMock: func(f *fixture) {
				f.tx.EXPECT().DoSerializable(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "40001"})
			},
			wantErr:    true,
			wantCode:   http.StatusConflict,
			wantFields: []string{validation.FieldStartTime},
		},
		{
			name: "slot lookup fails",
			req:  submission,
			setupMock: func(f *fixture) {
				f.runTx()
				f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("connection reset"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(context.Background(), tt.req())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, model.StatusPending, res.Status)
				assert.Equal(t, "10:00", res.StartTime)
				assert.Equal(t, "guest", res.CreatedBy)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))

			fields := failure.GetFields(err)
			assert.Len(t, fields, len(tt.wantFields))

			for _, field := range tt.wantFields {
				assert.Contains(t, fields, field)
			}
		})
	}
}

func TestBookingService_CreateApprovedLocalised(t *testing.T) {
	f := newFixture(t)
	f.runTx()
	f.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo.EXPECT().ListSlotsTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.CreateApproved(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, res.Status)

	g := newFixture(t)
	g.runTx()
	g.roomRepo.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	req := submission()
	req.EndTime = "10:15"

	ctx := i18n.WithLanguage(context.Background(), i18n.Indonesian)
	_, err = g.svc.CreateApproved(ctx, req)
	require.Error(t, err)
	assert.Equal(t, i18n.T(i18n.Indonesian, i18n.KeyInvalid), err.Error())
	assert.NotEqual(t, i18n.T(i18n.English, i18n.KeyMinDuration), failure.GetFields(err)[validation.FieldEndTime])
}

func TestBookingService_Validate(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().ListRange(gomock.Any(), gomock.Any(), gomock.Any(), "r1").
		Return([]model.Booking{{
			ID:          "existing",
			RoomID:      "r1",
			BookingDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			StartMinute: 10*60 + 30,
			EndMinute:   12 * 60,
			Status:      model.StatusPending,
		}}, nil)

	res, err := f.svc.Validate(context.Background(), submission())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Fields, validation.FieldStartTime)

	g := newFixture(t)
	g.repo.EXPECT().ListRange(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	_, err = g.svc.Validate(context.Background(), submission())
	assert.Error(t, err)
}

func TestBookingService_UpdateStatus(t *testing.T) {
	stored := model.Booking{
		ID:          "b1",
		RoomID:      "r1",
		BookingDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartMinute: 600,
		EndMinute:   660,
		Status:      model.StatusPending,
	}

	tests := []struct {
		name      string
		strict    bool
		req       dto.UpdateStatusRequest
		setupMock func(f *fixture)
		wantCode  int
		wantErr   bool
	}{
		{
			name: "reject with reason",
			req:  dto.UpdateStatusRequest{Status: model.StatusRejected, RejectionReason: " room under repair "},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mod map[string]any, _ any) error {
						assert.Equal(t, model.StatusRejected, mod[model.FieldStatus])
						assert.Equal(t, sql.NullString{String: "room under repair", Valid: true}, mod[model.FieldRejectionReason])

						return nil
					})
			},
		},
		{
			name:      "reject without reason",
			req:       dto.UpdateStatusRequest{Status: model.StatusRejected, RejectionReason: "   "},
			setupMock: func(*fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "unknown status",
			req:       dto.UpdateStatusRequest{Status: "cancelled"},
			setupMock: func(*fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "missing booking",
			req:  dto.UpdateStatusRequest{Status: model.StatusApproved},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name:   "strict lifecycle refuses skipping approval",
			strict: true,
			req:    dto.UpdateStatusRequest{Status: model.StatusCompleted},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "lax lifecycle allows any status",
			req:  dto.UpdateStatusRequest{Status: model.StatusCompleted},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "reactivation collides with another booking",
			req:  dto.UpdateStatusRequest{Status: model.StatusPending},
			setupMock: func(f *fixture) {
				rejected := stored
				rejected.Status = model.StatusRejected

				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(rejected, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23P01"})
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cfg.App.Booking.StrictTransitions = tt.strict
			tt.setupMock(f)

			res, err := f.svc.UpdateStatus(context.Background(), "b1", tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.req.Status, res.Status)

			if tt.req.Status == model.StatusRejected {
				assert.Equal(t, "room under repair", res.RejectionReason)
			} else {
				assert.Empty(t, res.RejectionReason)
			}
		})
	}
}

func TestBookingService_Calendar(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Calendar(context.Background(), "June", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	f.repo.EXPECT().ListRange(gomock.Any(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		"r1",
	).Return([]model.Booking{{ID: "b1", BookingDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), StartMinute: 600, EndMinute: 660}}, nil)

	res, err := f.svc.Calendar(context.Background(), "2025-06", "r1")
	require.NoError(t, err)
	require.Len(t, res.Days, 1)
	assert.Equal(t, "2025-06-10", res.Days[0].Date)
}

func TestBookingService_Get(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)

	_, err := f.svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}
