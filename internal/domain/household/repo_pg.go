package household

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/db"
)

const entity = "household"

type repoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &repoPG{q: q}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.q)
}

const householdCols = `h.id, h.household_number, h.head_name, h.purok, h.address,
	(SELECT COUNT(*) FROM residents m WHERE m.household_id = h.id AND m.deleted_at IS NULL)::int,
	h.created_at, h.updated_at, h.deleted_at`

func scanHousehold(row pgx.Row) (*Household, error) {
	var h Household
	if err := row.Scan(&h.ID, &h.HouseholdNumber, &h.HeadName, &h.Purok, &h.Address,
		&h.MemberCount, &h.CreatedAt, &h.UpdatedAt, &h.DeletedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *repoPG) Create(ctx context.Context, h *Household) error {
	h.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO households (id, household_number, head_name, purok, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		h.ID, h.HouseholdNumber, h.HeadName, h.Purok, h.Address,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Household, error) {
	h, err := scanHousehold(r.conn(ctx).QueryRow(ctx,
		`SELECT `+householdCols+` FROM households h WHERE h.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, entity)
	}
	return h, nil
}

func (r *repoPG) Update(ctx context.Context, h *Household) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE households SET household_number=$2, head_name=$3, purok=$4, address=$5, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		h.ID, h.HouseholdNumber, h.HeadName, h.Purok, h.Address,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) setDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	sql := `UPDATE households SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	if !deleted {
		sql = `UPDATE households SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
	}
	tag, err := r.conn(ctx).Exec(ctx, sql, id)
	if err != nil {
		return apperr.FromDB(err, entity)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID) error { return r.setDeleted(ctx, id, true) }

func (r *repoPG) Restore(ctx context.Context, id uuid.UUID) error { return r.setDeleted(ctx, id, false) }

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Household, int, error) {
	q := db.NewSelectQuery("households h", householdCols).
		Archived("h", f.Archived).
		Search(f.Search, "h.household_number", "h.head_name", "h.address")
	if f.Purok != "" {
		q.Where("h.purok = ?", f.Purok)
	}
	q.OrderBy("h.household_number")

	var total int
	countSQL, countArgs := q.CountSQL()
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count households: %w", err)
	}
	pageSQL, pageArgs := q.PageSQL(limit, offset)
	rows, err := r.conn(ctx).Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var items []*Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}
