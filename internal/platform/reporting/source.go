package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/barangay/records/internal/platform/db"
	"github.com/barangay/records/pkg/dateutil"
)

// Source supplies report data.
type Source interface {
	Rows(ctx context.Context, sql string, args ...interface{}) ([]Row, error)
	Count(ctx context.Context, sql string) (int64, error)
	People(ctx context.Context) ([]Person, error)
}

// PGSource reads report data from PostgreSQL.
type PGSource struct {
	db db.Querier
}

func NewPGSource(q db.Querier) *PGSource {
	return &PGSource{db: q}
}

// Rows runs sql and returns each result row keyed by column name.
func (s *PGSource) Rows(ctx context.Context, sql string, args ...interface{}) ([]Row, error) {
	rows, err := db.Conn(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read report row: %w", err)
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return result, nil
}

// Count runs a query returning a single integer.
func (s *PGSource) Count(ctx context.Context, sql string) (int64, error) {
	var n int64
	if err := db.Conn(ctx, s.db).QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// People returns every active, non-deleted resident for the age distribution.
func (s *PGSource) People(ctx context.Context) ([]Person, error) {
	rows, err := db.Conn(ctx, s.db).Query(ctx, `
		SELECT gender, to_char(date_of_birth, 'YYYY-MM-DD'), purok
		FROM residents
		WHERE deleted_at IS NULL AND status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("query residents: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.Gender, &p.DateOfBirth, &p.Purok); err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// normalizeValue turns pgx-decoded values into JSON- and cell-friendly ones.
func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.Format(dateutil.Layout)
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16])
	}
	return v
}
