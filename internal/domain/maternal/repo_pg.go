package maternal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/db"
)

const entity = "maternal health record"

type repoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &repoPG{q: q}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.q)
}

const recordFrom = `maternal_health_records m JOIN residents r ON r.id = m.resident_id`

const recordCols = `m.id, m.resident_id, concat_ws(' ', r.first_name, r.middle_name, r.last_name, r.suffix),
	to_char(m.lmp_date, 'YYYY-MM-DD'), to_char(m.edd, 'YYYY-MM-DD'), m.prenatal_visits,
	coalesce(m.blood_pressure, ''), m.weight_kg::float8, m.hemoglobin::float8,
	m.iron_supplement, m.folic_acid, m.tetanus_toxoid, m.calcium_supplement, m.deworming,
	coalesce(to_char(m.delivery_date, 'YYYY-MM-DD'), ''), coalesce(m.delivery_type, ''),
	m.baby_weight_kg::float8, coalesce(m.place_of_delivery, ''),
	coalesce(m.complications, ''), coalesce(m.notes, ''),
	m.created_at, m.updated_at, m.deleted_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var m Record
	if err := row.Scan(&m.ID, &m.ResidentID, &m.ResidentName,
		&m.LMPDate, &m.EDD, &m.PrenatalVisits,
		&m.BloodPressure, &m.WeightKg, &m.Hemoglobin,
		&m.IronSupplement, &m.FolicAcid, &m.TetanusToxoid, &m.CalciumSupplement, &m.Deworming,
		&m.DeliveryDate, &m.DeliveryType,
		&m.BabyWeightKg, &m.PlaceOfDelivery,
		&m.Complications, &m.Notes,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt); err != nil {
		return nil, err
	}
	m.derive()
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *Record) error {
	m.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO maternal_health_records (id, resident_id, lmp_date, edd, prenatal_visits,
			blood_pressure, weight_kg, hemoglobin,
			iron_supplement, folic_acid, tetanus_toxoid, calcium_supplement, deworming,
			delivery_date, delivery_type, baby_weight_kg, place_of_delivery, complications, notes)
		VALUES ($1, $2, $3::date, $4::date, $5,
			NULLIF($6, ''), $7, $8,
			$9, $10, $11, $12, $13,
			NULLIF($14, '')::date, NULLIF($15, ''), $16, NULLIF($17, ''), NULLIF($18, ''), NULLIF($19, ''))
		RETURNING created_at, updated_at`,
		m.ID, m.ResidentID, m.LMPDate, m.EDD, m.PrenatalVisits,
		m.BloodPressure, m.WeightKg, m.Hemoglobin,
		m.IronSupplement, m.FolicAcid, m.TetanusToxoid, m.CalciumSupplement, m.Deworming,
		m.DeliveryDate, m.DeliveryType, m.BabyWeightKg, m.PlaceOfDelivery, m.Complications, m.Notes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	m, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM `+recordFrom+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, entity)
	}
	return m, nil
}

func (r *repoPG) Update(ctx context.Context, m *Record) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE maternal_health_records SET resident_id=$2, lmp_date=$3::date, edd=$4::date,
			prenatal_visits=$5, blood_pressure=NULLIF($6, ''), weight_kg=$7, hemoglobin=$8,
			iron_supplement=$9, folic_acid=$10, tetanus_toxoid=$11, calcium_supplement=$12, deworming=$13,
			delivery_date=NULLIF($14, '')::date, delivery_type=NULLIF($15, ''), baby_weight_kg=$16,
			place_of_delivery=NULLIF($17, ''), complications=NULLIF($18, ''), notes=NULLIF($19, ''),
			updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at`,
		m.ID, m.ResidentID, m.LMPDate, m.EDD,
		m.PrenatalVisits, m.BloodPressure, m.WeightKg, m.Hemoglobin,
		m.IronSupplement, m.FolicAcid, m.TetanusToxoid, m.CalciumSupplement, m.Deworming,
		m.DeliveryDate, m.DeliveryType, m.BabyWeightKg,
		m.PlaceOfDelivery, m.Complications, m.Notes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) setDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	sql := `UPDATE maternal_health_records SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	if !deleted {
		sql = `UPDATE maternal_health_records SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
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
		Archived("m", f.Archived).
		Search(f.Search, "r.first_name", "r.last_name", "concat_ws(' ', r.first_name, r.last_name)")
	if f.ResidentID != nil {
		q.Where("m.resident_id = ?", *f.ResidentID)
	}
	switch f.Status {
	case StatusOngoing:
		q.Where("m.delivery_date IS NULL")
	case StatusDelivered:
		q.Where("m.delivery_date IS NOT NULL")
	}
	q.OrderBy("m.edd DESC")

	var total int
	countSQL, countArgs := q.CountSQL()
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count maternal records: %w", err)
	}
	pageSQL, pageArgs := q.PageSQL(limit, offset)
	rows, err := r.conn(ctx).Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list maternal records: %w", err)
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan maternal record: %w", err)
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) HasOngoing(ctx context.Context, residentID, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM maternal_health_records
		WHERE resident_id = $1 AND id <> $2 AND deleted_at IS NULL AND delivery_date IS NULL)`,
		residentID, exclude).Scan(&exists)
	return exists, err
}
