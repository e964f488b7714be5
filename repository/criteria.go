package repository

import "github.com/uptrace/bun"

// SelectCriteria mutates a select query before it executes. Criteria compose:
// each one receives the query produced by the previous criteria in the chain.
type SelectCriteria func(*bun.SelectQuery) *bun.SelectQuery

// Where filters the query with a raw condition.
func Where(condition string, args ...any) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(condition, args...)
	}
}

// OrderBy orders ascending by the given column.
func OrderBy(column string) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("? ASC", bun.Ident(column))
	}
}

// OrderByDesc orders descending by the given column.
func OrderByDesc(column string) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("? DESC", bun.Ident(column))
	}
}

// NotDeleted filters out soft-deleted rows by the conventional flag column.
func NotDeleted() SelectCriteria {
	return Where("is_deleted = ?", false)
}
