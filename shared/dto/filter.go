package dto

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var ErrUnknownOperator = errors.New("unknown filter operator")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter is a single column predicate. It renders through squirrel, so values
// always travel as bind arguments.
type Filter struct {
	Field    string
	Value    any
	Operator string
	Table    string
}

func (f Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f Filter) ToSql() (string, []any, error) { //nolint:revive,stylecheck
	col := f.column()

	switch f.Operator {
	case FilterOperatorEq, FilterOperatorIn:
		return sq.Eq{col: f.Value}.ToSql()
	case FilterOperatorLike:
		return sq.ILike{col: "%" + likeEscaper.Replace(fmt.Sprint(f.Value)) + "%"}.ToSql()
	case FilterOperatorNotEq:
		return sq.NotEq{col: f.Value}.ToSql()
	case FilterOperatorLessEq:
		return sq.LtOrEq{col: f.Value}.ToSql()
	case FilterOperatorGreaterEq:
		return sq.GtOrEq{col: f.Value}.ToSql()
	case FilterIsNull:
		return sq.Eq{col: nil}.ToSql()
	case FilterIsNotNull:
		return sq.NotEq{col: nil}.ToSql()
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperator, f.Operator)
	}
}

// FilterGroup joins Filters, nested FilterGroups or any squirrel predicate with
// Operator. Anything but OR joins with AND. Empty groups render nothing.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (g FilterGroup) parts() []sq.Sqlizer {
	parts := make([]sq.Sqlizer, 0, len(g.Filters))

	for _, filter := range g.Filters {
		switch f := filter.(type) {
		case FilterGroup:
			if !f.IsEmpty() {
				parts = append(parts, f)
			}
		case sq.Sqlizer:
			parts = append(parts, f)
		}
	}

	return parts
}

func (g FilterGroup) IsEmpty() bool {
	return len(g.parts()) == 0
}

func (g FilterGroup) ToSql() (string, []any, error) { //nolint:revive,stylecheck
	parts := g.parts()
	if len(parts) == 0 {
		return "", nil, nil
	}

	if g.Operator == FilterGroupOperatorOr {
		return sq.Or(parts).ToSql()
	}

	return sq.And(parts).ToSql()
}
