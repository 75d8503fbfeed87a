package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/logger"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var errRequiredFilter = errors.New("required filter")

type column struct {
	name   string
	table  string
	alias  string
	index  []int
	insert bool
}

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Repository derives its statements from the db, table and column tags of T.
// A column tagged with another table is read through T's GetJoinQuery and never written.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []column
	join          string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	join := ""
	if joiner, ok := any(zero).(interface{ GetJoinQuery() string }); ok {
		join = joiner.GetJoinQuery()
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       getColumns(tableName, reflect.TypeOf(zero), nil),
		join:          join,
	}
}

func (repo *Repository[T]) scope(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, operation))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func (repo *Repository[T]) toSQL(scope otel.Scope, builder sq.Sqlizer) (string, []any, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, repo.fail(scope, "build query", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	return query, args, nil
}

func (repo *Repository[T]) insert(ctx context.Context, exec Querier, model T) error {
	ctx, scope := repo.scope(ctx, "insert")
	defer scope.End()

	value := reflect.ValueOf(model)
	names := []string{}
	values := []any{}

	for _, col := range repo.columns {
		if !col.insert {
			continue
		}

		names = append(names, col.name)
		values = append(values, value.FieldByIndex(col.index).Interface())
	}

	query, args, err := repo.toSQL(scope, Psql.Insert(repo.table).Columns(names...).Values(values...))
	if err != nil {
		return err
	}

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	return repo.insert(ctx, repo.db.Write, model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	return repo.insert(ctx, sqltx, model)
}

func (repo *Repository[T]) exist(ctx context.Context, exec Querier, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "exist")
	defer scope.End()

	if filter.IsEmpty() {
		return false, errRequiredFilter
	}

	builder := Psql.Select("1").
		Prefix("SELECT EXISTS(").
		From(repo.table).
		Where(filter).
		Suffix(")")

	query, args, err := repo.toSQL(scope, builder)
	if err != nil {
		return false, err
	}

	exist := false
	if err := exec.GetContext(ctx, &exist, query, args...); err != nil {
		return false, repo.fail(scope, "check exist data", err)
	}

	return exist, nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	return repo.exist(ctx, repo.db.Read, filter)
}

func (repo *Repository[T]) ExistTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) (bool, error) {
	return repo.exist(ctx, sqltx, filter)
}

func (repo *Repository[T]) selectFrom(filter dto.FilterGroup, columns ...string) sq.SelectBuilder {
	builder := Psql.Select(repo.selectColumns(columns...)...).From(repo.table)

	if repo.join != "" {
		builder = builder.JoinClause(repo.join)
	}

	if !filter.IsEmpty() {
		builder = builder.Where(filter)
	}

	return builder
}

// Get returns the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	var model T

	query, args, err := repo.toSQL(scope, repo.selectFrom(filter, columns...).Limit(1))
	if err != nil {
		return model, err
	}

	err = repo.db.Read.GetContext(ctx, &model, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	builder := repo.selectFrom(filter, columns...)

	if params.SortDir != "" && repo.sortable(params.SortBy) {
		builder = builder.OrderBy(params.SortBy + " " + params.SortDir)
	}

	if params.Limit > 0 {
		builder = builder.Limit(uint64(params.Limit))

		if params.Page > 0 {
			builder = builder.Offset(uint64((params.Page - 1) * params.Limit))
		}
	}

	query, args, err := repo.toSQL(scope, builder)
	if err != nil {
		return nil, err
	}

	var models []T
	if err := repo.db.Read.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	builder := Psql.Select(fmt.Sprintf("COUNT(%s.%s)", repo.table, repo.primaryColumn)).From(repo.table)

	if repo.join != "" {
		builder = builder.JoinClause(repo.join)
	}

	if !filter.IsEmpty() {
		builder = builder.Where(filter)
	}

	query, args, err := repo.toSQL(scope, builder)
	if err != nil {
		return 0, err
	}

	var count int
	if err := repo.db.Read.GetContext(ctx, &count, query, args...); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

func (repo *Repository[T]) update(ctx context.Context, exec Querier, fields map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "update")
	defer scope.End()

	if filter.IsEmpty() {
		return errRequiredFilter
	}

	query, args, err := repo.toSQL(scope, Psql.Update(repo.table).SetMap(fields).Where(filter))
	if err != nil {
		return err
	}

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return repo.fail(scope, "update data", err)
	}

	return nil
}

func (repo *Repository[T]) Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, repo.db.Write, fields, filter)
}

func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, fields map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, sqltx, fields, filter)
}

// sortable accepts only columns the model maps, bare or table qualified.
func (repo *Repository[T]) sortable(sortBy string) bool {
	if sortBy == "" {
		return false
	}

	for _, col := range repo.columns {
		if sortBy == col.name || sortBy == col.alias || sortBy == col.table+"."+col.name {
			return true
		}
	}

	return false
}

func (repo *Repository[T]) selectColumns(only ...string) []string {
	columns := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		switch {
		case col.alias != "":
			columns = append(columns, fmt.Sprintf("%s.%s AS %s", col.table, col.name, col.alias))
		default:
			columns = append(columns, col.table+"."+col.name)
		}
	}

	return columns
}

func getColumns(table string, reflectType reflect.Type, parent []int) []column {
	columns := []column{}

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)
		index := append(slices.Clone(parent), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, getColumns(table, field.Type, index)...)

			continue
		}

		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		owner := field.Tag.Get("table")
		if owner == "" {
			owner = table
		}

		col := column{name: dbTag, table: owner, index: index, insert: owner == table}

		if colTag := field.Tag.Get("column"); colTag != "" {
			col.name = colTag
			col.alias = dbTag
		}

		columns = append(columns, col)
	}

	return columns
}
