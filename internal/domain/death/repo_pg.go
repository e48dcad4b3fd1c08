package death

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/db"
)

const entity = "death record"

type repoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &repoPG{q: q}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.q)
}

const deathFrom = `deaths d JOIN residents r ON r.id = d.resident_id`

const deathCols = `d.id, d.resident_id,
	concat_ws(' ', r.first_name, r.middle_name, r.last_name, r.suffix), r.purok,
	to_char(d.date_of_death, 'YYYY-MM-DD'), d.cause_of_death, d.place_of_death, coalesce(d.notes, ''),
	d.created_at, d.updated_at, d.deleted_at`

func scanDeath(row pgx.Row) (*DeathRecord, error) {
	var d DeathRecord
	if err := row.Scan(&d.ID, &d.ResidentID, &d.ResidentName, &d.Purok,
		&d.DateOfDeath, &d.CauseOfDeath, &d.PlaceOfDeath, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *DeathRecord) error {
	d.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO deaths (id, resident_id, date_of_death, cause_of_death, place_of_death, notes)
		VALUES ($1, $2, $3::date, $4, $5, NULLIF($6, ''))
		RETURNING created_at, updated_at`,
		d.ID, d.ResidentID, d.DateOfDeath, d.CauseOfDeath, d.PlaceOfDeath, d.Notes,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DeathRecord, error) {
	d, err := scanDeath(r.conn(ctx).QueryRow(ctx,
		`SELECT `+deathCols+` FROM `+deathFrom+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, entity)
	}
	return d, nil
}

func (r *repoPG) Update(ctx context.Context, d *DeathRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE deaths SET resident_id=$2, date_of_death=$3::date, cause_of_death=$4,
			place_of_death=$5, notes=NULLIF($6, ''), updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		d.ID, d.ResidentID, d.DateOfDeath, d.CauseOfDeath, d.PlaceOfDeath, d.Notes,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) setDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	sql := `UPDATE deaths SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	if !deleted {
		sql = `UPDATE deaths SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
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

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.setDeleted(ctx, id, true)
}

func (r *repoPG) Restore(ctx context.Context, id uuid.UUID) error {
	return r.setDeleted(ctx, id, false)
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*DeathRecord, int, error) {
	q := db.NewSelectQuery(deathFrom, deathCols).
		Archived("d", f.Archived).
		Search(f.Search, "r.first_name", "r.last_name", "d.cause_of_death",
			"concat_ws(' ', r.first_name, r.last_name)")
	if f.Year > 0 {
		q.Where("date_part('year', d.date_of_death)::int = ?", f.Year)
	}
	if f.Purok != "" {
		q.Where("r.purok = ?", f.Purok)
	}
	q.OrderBy("d.date_of_death DESC")

	var total int
	countSQL, countArgs := q.CountSQL()
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deaths: %w", err)
	}
	pageSQL, pageArgs := q.PageSQL(limit, offset)
	rows, err := r.conn(ctx).Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deaths: %w", err)
	}
	defer rows.Close()

	var items []*DeathRecord
	for rows.Next() {
		d, err := scanDeath(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan death: %w", err)
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) LiveForResident(ctx context.Context, residentID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id FROM deaths WHERE resident_id = $1 AND deleted_at IS NULL LIMIT 1`, residentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	return id, err
}
