package repository_test

import (
	"context"
	"errors"
	"roombook/infras/otel/mocks"
	"roombook/infras/postgres"
	"roombook/shared/dto"
	"roombook/shared/model"
	"roombook/shared/repository"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type room struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	model.Metadata
}

type booking struct {
	ID       string `db:"id"`
	RoomName string `column:"name" db:"room_name" table:"rooms"`
	Status   string `db:"status"`
}

func (booking) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = bookings.room_id"
}

func newDB(t *testing.T) (*postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	xdb := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { xdb.Close() })

	return &postgres.Connection{Read: xdb, Write: xdb}, mock
}

func byID(table, id string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{Table: table, Field: "id", Operator: dto.FilterOperatorEq, Value: id}},
	}
}

func TestInsert(t *testing.T) {
	conn, mock := newDB(t)
	repo := repository.NewRepository[room]("room", "rooms", "id", conn, mocks.NewOtel())

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`^INSERT INTO rooms \(id,name,created_at,modified_at,created_by,modified_by\) VALUES`).
		WithArgs("r1", "Ruang Rapat A", sqlmock.AnyArg(), sqlmock.AnyArg(), "admin", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), room{ID: "r1", Name: "Ruang Rapat A", Metadata: model.NewMetadata("admin", now)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSkipsJoinedColumns(t *testing.T) {
	conn, mock := newDB(t)
	repo := repository.NewRepository[booking]("booking", "bookings", "id", conn, mocks.NewOtel())

	mock.ExpectExec(`^INSERT INTO bookings \(id,status\) VALUES`).
		WithArgs("b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), booking{ID: "b1", RoomName: "ignored", Status: "pending"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      room
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`^SELECT rooms.id, rooms.name, .* FROM rooms WHERE \(rooms.id = \$1\) LIMIT 1$`).
					WithArgs("r1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("r1", "Ruang Rapat A"))
			},
			want: room{ID: "r1", Name: "Ruang Rapat A"},
		},
		{
			name: "no rows is the zero value",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`^SELECT`).WithArgs("r1").WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
		},
		{
			name: "driver error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`^SELECT`).WithArgs("r1").WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newDB(t)
			repo := repository.NewRepository[room]("room", "rooms", "id", conn, mocks.NewOtel())

			tt.setupMock(mock)

			got, err := repo.Get(context.Background(), byID("rooms", "r1"))
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetAllJoinsSortsAndPaginates(t *testing.T) {
	conn, mock := newDB(t)
	repo := repository.NewRepository[booking]("booking", "bookings", "id", conn, mocks.NewOtel())

	mock.ExpectQuery(`^SELECT bookings.id, rooms.name AS room_name, bookings.status FROM bookings LEFT JOIN rooms ON rooms.id = bookings.room_id WHERE \(bookings.status = \$1\) ORDER BY room_name DESC LIMIT 5 OFFSET 5$`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_name", "status"}).AddRow("b1", "Ruang Rapat A", "pending"))

	filter := dto.FilterGroup{Filters: []any{dto.Filter{Table: "bookings", Field: "status", Operator: dto.FilterOperatorEq, Value: "pending"}}}

	got, err := repo.GetAll(context.Background(), dto.QueryParams{Page: 2, Limit: 5, SortBy: "room_name", SortDir: dto.SortDirDesc}, filter)
	require.NoError(t, err)
	assert.Equal(t, []booking{{ID: "b1", RoomName: "Ruang Rapat A", Status: "pending"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	conn, mock := newDB(t)
	repo := repository.NewRepository[room]("room", "rooms", "id", conn, mocks.NewOtel())

	mock.ExpectQuery(`^SELECT COUNT\(rooms.id\) FROM rooms$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	got, err := repo.Count(context.Background(), dto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestExist(t *testing.T) {
	conn, mock := newDB(t)
	repo := repository.NewRepository[room]("room", "rooms", "id", conn, mocks.NewOtel())

	mock.ExpectQuery(`^SELECT EXISTS\(\s*SELECT 1 FROM rooms WHERE \(rooms.id = \$1\)\s*\)$`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	got, err := repo.Exist(context.Background(), byID("rooms", "r1"))
	require.NoError(t, err)
	assert.True(t, got)

	_, err = repo.Exist(context.Background(), dto.FilterGroup{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	conn, mock := newDB(t)
	repo := repository.NewRepository[room]("room", "rooms", "id", conn, mocks.NewOtel())

	mock.ExpectExec(`^UPDATE rooms SET modified_by = \$1, name = \$2 WHERE \(rooms.id = \$3\)$`).
		WithArgs("admin", "Ruang Rapat B", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), map[string]any{"name": "Ruang Rapat B", "modified_by": "admin"}, byID("rooms", "r1"))
	require.NoError(t, err)

	err = repo.Update(context.Background(), map[string]any{"name": "everything"}, dto.FilterGroup{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
