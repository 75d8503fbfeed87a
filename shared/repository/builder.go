package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// Psql is a squirrel builder emitting $n placeholders.
var Psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Select runs a hand built query on exec and scans every row into dest.
func (repo *Repository[T]) Select(ctx context.Context, exec Querier, builder sq.Sqlizer, dest any) error {
	ctx, scope := repo.scope(ctx, "Select")
	defer scope.End()

	query, args, err := repo.toSQL(scope, builder)
	if err != nil {
		return err
	}

	if err := exec.SelectContext(ctx, dest, query, args...); err != nil {
		return repo.fail(scope, "select data", err)
	}

	return nil
}
