package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/model"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gRepo "roombook/shared/repository"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var calendarColumns = []string{
	"bookings.id",
	"bookings.room_id",
	"rooms.name AS room_name",
	"bookings.name",
	"bookings.unit",
	"bookings.booking_date",
	"bookings.start_minute",
	"bookings.end_minute",
	"bookings.status",
}

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	ListSlotsTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, date time.Time) ([]model.Slot, error)
	ListRange(ctx context.Context, from, to time.Time, roomID string) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// ListSlotsTx loads the blocking slots of one room on one date inside sqltx, so a
// serializable transaction records the read it based its decision on.
func (r *repositoryImpl) ListSlotsTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, date time.Time) ([]model.Slot, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListSlotsTx")
	defer scope.End()

	query := gRepo.Psql.
		Select(model.FieldID, model.FieldRoomID, model.FieldBookingDate, model.FieldStartMinute, model.FieldEndMinute, model.FieldStatus).
		From(model.TableName).
		Where(sq.Eq{
			model.FieldRoomID:      roomID,
			model.FieldBookingDate: date.Format(constant.DayFormat),
			model.FieldStatus:      model.BlockingStatuses,
		}).
		OrderBy(model.FieldStartMinute)

	var slots []model.Slot
	if err := r.Select(ctx, sqltx, query, &slots); err != nil {
		return nil, fmt.Errorf("failed to list booking slots: %w", err)
	}

	return slots, nil
}

// ListRange returns blocking bookings with from <= booking_date < to, optionally for one room.
func (r *repositoryImpl) ListRange(ctx context.Context, from, to time.Time, roomID string) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListRange")
	defer scope.End()

	where := sq.And{
		sq.GtOrEq{"bookings.booking_date": from.Format(constant.DayFormat)},
		sq.Lt{"bookings.booking_date": to.Format(constant.DayFormat)},
		sq.Eq{"bookings.status": model.BlockingStatuses},
	}

	if roomID != "" {
		where = append(where, sq.Eq{"bookings.room_id": roomID})
	}

	query := gRepo.Psql.
		Select(calendarColumns...).
		From(model.TableName).
		LeftJoin("rooms ON rooms.id = bookings.room_id").
		Where(where).
		OrderBy("bookings.booking_date", "bookings.start_minute")

	var bookings []model.Booking
	if err := r.Select(ctx, r.db.Read, query, &bookings); err != nil {
		return nil, fmt.Errorf("failed to list bookings in range: %w", err)
	}

	return bookings, nil
}
