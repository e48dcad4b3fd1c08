package db

import (
	"fmt"
	"strings"
)

// SelectQuery builds the count and page queries behind every list endpoint.
// Clauses use "?" placeholders, numbered in the order they are added.
type SelectQuery struct {
	from    string
	cols    string
	where   []string
	args    []interface{}
	orderBy string
}

// NewSelectQuery starts a query over from (a table, optionally with joins)
// selecting cols.
func NewSelectQuery(from, cols string) *SelectQuery {
	return &SelectQuery{from: from, cols: cols}
}

// Where appends a clause joined with AND. Each "?" consumes one arg.
func (q *SelectQuery) Where(clause string, args ...interface{}) *SelectQuery {
	var b strings.Builder
	n := 0
	for _, r := range clause {
		if r == '?' && n < len(args) {
			q.args = append(q.args, args[n])
			fmt.Fprintf(&b, "$%d", len(q.args))
			n++
			continue
		}
		b.WriteRune(r)
	}
	q.where = append(q.where, b.String())
	return q
}

// Archived restricts rows to soft-deleted ones when archived is true and to
// live ones otherwise. alias qualifies deleted_at when the query joins.
func (q *SelectQuery) Archived(alias string, archived bool) *SelectQuery {
	col := "deleted_at"
	if alias != "" {
		col = alias + ".deleted_at"
	}
	if archived {
		return q.Where(col + " IS NOT NULL")
	}
	return q.Where(col + " IS NULL")
}

// Search adds a case-insensitive match of pattern against any of cols.
// An empty pattern adds nothing.
func (q *SelectQuery) Search(pattern string, cols ...string) *SelectQuery {
	if pattern == "" || len(cols) == 0 {
		return q
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE ?"
	}
	args := make([]interface{}, len(cols))
	for i := range args {
		args[i] = pattern
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// OrderBy sets the ORDER BY clause (without the keyword).
func (q *SelectQuery) OrderBy(orderBy string) *SelectQuery {
	q.orderBy = orderBy
	return q
}

func (q *SelectQuery) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// CountSQL returns the count query and its arguments.
func (q *SelectQuery) CountSQL() (string, []interface{}) {
	return "SELECT COUNT(*) FROM " + q.from + q.whereSQL(), q.args
}

// PageSQL returns the data query with ORDER BY and LIMIT/OFFSET appended.
func (q *SelectQuery) PageSQL(limit, offset int) (string, []interface{}) {
	sql := "SELECT " + q.cols + " FROM " + q.from + q.whereSQL()
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	n := len(q.args)
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)

	args := make([]interface{}, n, n+2)
	copy(args, q.args)
	return sql, append(args, limit, offset)
}

// AllSQL returns the data query without paging.
func (q *SelectQuery) AllSQL() (string, []interface{}) {
	sql := "SELECT " + q.cols + " FROM " + q.from + q.whereSQL()
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	return sql, q.args
}
