package immunization

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/db"
)

const entity = "immunization record"

type repoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &repoPG{q: q}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.q)
}

const recordFrom = `child_immunizations i
	JOIN residents c ON c.id = i.child_id
	LEFT JOIN residents mo ON mo.id = i.mother_id`

const recordCols = `i.id, i.child_id, concat_ws(' ', c.first_name, c.middle_name, c.last_name, c.suffix),
	i.mother_id, coalesce(concat_ws(' ', mo.first_name, mo.middle_name, mo.last_name, mo.suffix), ''),
	i.vaccine_name, coalesce(i.other_vaccine, ''), coalesce(i.batch_number, ''),
	to_char(i.date_given, 'YYYY-MM-DD'), coalesce(to_char(i.next_dose_date, 'YYYY-MM-DD'), ''),
	coalesce(i.administered_by, ''), coalesce(i.adverse_reactions, ''), coalesce(i.notes, ''),
	i.created_at, i.updated_at, i.deleted_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	if err := row.Scan(&r.ID, &r.ChildID, &r.ChildName,
		&r.MotherID, &r.MotherName,
		&r.VaccineName, &r.OtherVaccine, &r.BatchNumber,
		&r.DateGiven, &r.NextDoseDate,
		&r.AdministeredBy, &r.AdverseReactions, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt, &r.DeletedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func collect(rows pgx.Rows) ([]*Record, error) {
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO child_immunizations (id, child_id, mother_id, vaccine_name, other_vaccine,
			batch_number, date_given, next_dose_date, administered_by, adverse_reactions, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''),
			NULLIF($6, ''), $7::date, NULLIF($8, '')::date, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''))
		RETURNING created_at, updated_at`,
		rec.ID, rec.ChildID, rec.MotherID, rec.VaccineName, rec.OtherVaccine,
		rec.BatchNumber, rec.DateGiven, rec.NextDoseDate, rec.AdministeredBy, rec.AdverseReactions, rec.Notes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM `+recordFrom+` WHERE i.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, entity)
	}
	return rec, nil
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE child_immunizations SET child_id=$2, mother_id=$3, vaccine_name=$4, other_vaccine=NULLIF($5, ''),
			batch_number=NULLIF($6, ''), date_given=$7::date, next_dose_date=NULLIF($8, '')::date,
			administered_by=NULLIF($9, ''), adverse_reactions=NULLIF($10, ''), notes=NULLIF($11, ''),
			updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		rec.ID, rec.ChildID, rec.MotherID, rec.VaccineName, rec.OtherVaccine,
		rec.BatchNumber, rec.DateGiven, rec.NextDoseDate,
		rec.AdministeredBy, rec.AdverseReactions, rec.Notes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) setDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	sql := `UPDATE child_immunizations SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	if !deleted {
		sql = `UPDATE child_immunizations SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
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

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Record, int, error) {
	q := db.NewSelectQuery(recordFrom, recordCols).
		Archived("i", f.Archived).
		Search(f.Search, "c.first_name", "c.last_name", "i.vaccine_name", "i.other_vaccine",
			"concat_ws(' ', c.first_name, c.last_name)")
	if f.ChildID != nil {
		q.Where("i.child_id = ?", *f.ChildID)
	}
	if f.Vaccine != "" {
		q.Where("(lower(i.vaccine_name) = lower(?) OR lower(i.other_vaccine) = lower(?))", f.Vaccine, f.Vaccine)
	}
	q.OrderBy("i.date_given DESC")

	var total int
	countSQL, countArgs := q.CountSQL()
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count immunizations: %w", err)
	}
	pageSQL, pageArgs := q.PageSQL(limit, offset)
	rows, err := r.conn(ctx).Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list immunizations: %w", err)
	}
	items, err := collect(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan immunizations: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) ForChild(ctx context.Context, childID uuid.UUID) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM `+recordFrom+`
		WHERE i.deleted_at IS NULL AND i.child_id = $1
		ORDER BY i.date_given`, childID)
	if err != nil {
		return nil, fmt.Errorf("list child immunizations: %w", err)
	}
	return collect(rows)
}
