package resident

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/db"
)

const entity = "resident"

type repoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &repoPG{q: q}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.q)
}

const residentCols = `r.id, r.first_name, coalesce(r.middle_name, ''), r.last_name, coalesce(r.suffix, ''),
	r.gender, to_char(r.date_of_birth, 'YYYY-MM-DD'), r.purok, r.household_id,
	r.civil_status, coalesce(r.spouse_name, ''), r.spouse_id,
	r.is_pwd, r.is_4ps, r.is_registered_voter, r.is_senior_citizen,
	coalesce(r.contact_number, ''), coalesce(r.email, ''), coalesce(r.occupation, ''),
	coalesce(r.religion, ''), coalesce(r.photo_path, ''), r.status, coalesce(r.new_address, ''),
	to_char(r.registered_date, 'YYYY-MM-DD'), r.created_at, r.updated_at, r.deleted_at`

func scanResident(row pgx.Row) (*Resident, error) {
	var res Resident
	err := row.Scan(&res.ID, &res.FirstName, &res.MiddleName, &res.LastName, &res.Suffix,
		&res.Gender, &res.DateOfBirth, &res.Purok, &res.HouseholdID,
		&res.CivilStatus, &res.SpouseName, &res.SpouseID,
		&res.IsPWD, &res.Is4Ps, &res.IsRegisteredVoter, &res.IsSeniorCitizen,
		&res.ContactNumber, &res.Email, &res.Occupation,
		&res.Religion, &res.PhotoPath, &res.Status, &res.NewAddress,
		&res.RegisteredDate, &res.CreatedAt, &res.UpdatedAt, &res.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func collect(rows pgx.Rows) ([]*Resident, error) {
	defer rows.Close()
	var items []*Resident
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, res *Resident) error {
	res.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO residents (id, first_name, middle_name, last_name, suffix,
			gender, date_of_birth, purok, household_id,
			civil_status, spouse_name, spouse_id,
			is_pwd, is_4ps, is_registered_voter, is_senior_citizen,
			contact_number, email, occupation, religion,
			status, new_address, registered_date)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''),
			$6, $7::date, $8, $9,
			$10, NULLIF($11, ''), $12,
			$13, $14, $15, $16,
			NULLIF($17, ''), NULLIF($18, ''), NULLIF($19, ''), NULLIF($20, ''),
			$21, NULLIF($22, ''), $23::date)
		RETURNING created_at, updated_at`,
		res.ID, res.FirstName, res.MiddleName, res.LastName, res.Suffix,
		res.Gender, res.DateOfBirth, res.Purok, res.HouseholdID,
		res.CivilStatus, res.SpouseName, res.SpouseID,
		res.IsPWD, res.Is4Ps, res.IsRegisteredVoter, res.IsSeniorCitizen,
		res.ContactNumber, res.Email, res.Occupation, res.Religion,
		res.Status, res.NewAddress, res.RegisteredDate,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Resident, error) {
	res, err := scanResident(r.conn(ctx).QueryRow(ctx,
		`SELECT `+residentCols+` FROM residents r WHERE r.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, entity)
	}
	return res, nil
}

func (r *repoPG) Update(ctx context.Context, res *Resident) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE residents SET first_name=$2, middle_name=NULLIF($3, ''), last_name=$4, suffix=NULLIF($5, ''),
			gender=$6, date_of_birth=$7::date, purok=$8, household_id=$9,
			civil_status=$10, spouse_name=NULLIF($11, ''), spouse_id=$12,
			is_pwd=$13, is_4ps=$14, is_registered_voter=$15, is_senior_citizen=$16,
			contact_number=NULLIF($17, ''), email=NULLIF($18, ''), occupation=NULLIF($19, ''),
			religion=NULLIF($20, ''), status=$21, new_address=NULLIF($22, ''), updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING created_at, updated_at, to_char(registered_date, 'YYYY-MM-DD'), coalesce(photo_path, '')`,
		res.ID, res.FirstName, res.MiddleName, res.LastName, res.Suffix,
		res.Gender, res.DateOfBirth, res.Purok, res.HouseholdID,
		res.CivilStatus, res.SpouseName, res.SpouseID,
		res.IsPWD, res.Is4Ps, res.IsRegisteredVoter, res.IsSeniorCitizen,
		res.ContactNumber, res.Email, res.Occupation,
		res.Religion, res.Status, res.NewAddress,
	).Scan(&res.CreatedAt, &res.UpdatedAt, &res.RegisteredDate, &res.PhotoPath)
	return apperr.FromDB(err, entity)
}

func (r *repoPG) setDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	sql := `UPDATE residents SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	if !deleted {
		sql = `UPDATE residents SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`
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

// Restore fails with a duplicate error when a live resident has taken the
// same identity in the meantime.
func (r *repoPG) Restore(ctx context.Context, id uuid.UUID) error {
	return r.setDeleted(ctx, id, false)
}

func (r *repoPG) SetPhoto(ctx context.Context, id uuid.UUID, path string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE residents SET photo_path = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Resident, int, error) {
	q := db.NewSelectQuery("residents r", residentCols).
		Archived("r", f.Archived).
		Search(f.Search, "r.first_name", "r.middle_name", "r.last_name",
			"concat_ws(' ', r.first_name, r.last_name)")
	if f.Purok != "" {
		q.Where("r.purok = ?", f.Purok)
	}
	if f.Status != "" {
		q.Where("r.status = ?", f.Status)
	}
	if f.Gender != "" {
		q.Where("r.gender = ?", f.Gender)
	}
	if f.HouseholdID != nil {
		q.Where("r.household_id = ?", *f.HouseholdID)
	}
	if f.Senior != nil {
		q.Where("(r.date_of_birth <= CURRENT_DATE - INTERVAL '60 years') = ?", *f.Senior)
	}
	if f.PWD != nil {
		q.Where("r.is_pwd = ?", *f.PWD)
	}
	if f.FourPs != nil {
		q.Where("r.is_4ps = ?", *f.FourPs)
	}
	if f.Voter != nil {
		q.Where("r.is_registered_voter = ?", *f.Voter)
	}
	if f.Archived {
		q.OrderBy("r.deleted_at DESC")
	} else {
		q.OrderBy("lower(r.last_name), lower(r.first_name)")
	}

	var total int
	countSQL, countArgs := q.CountSQL()
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count residents: %w", err)
	}
	pageSQL, pageArgs := q.PageSQL(limit, offset)
	rows, err := r.conn(ctx).Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list residents: %w", err)
	}
	items, err := collect(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan residents: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) FindCandidates(ctx context.Context, lastName, dateOfBirth string) ([]*Resident, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+residentCols+` FROM residents r
		WHERE r.deleted_at IS NULL AND lower(r.last_name) = lower(trim($1)) AND r.date_of_birth = $2::date`,
		lastName, dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("find duplicate candidates: %w", err)
	}
	return collect(rows)
}

func (r *repoPG) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*Resident, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+residentCols+` FROM residents r
		WHERE r.deleted_at IS NULL AND r.household_id = $1
		ORDER BY r.date_of_birth`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list household members: %w", err)
	}
	return collect(rows)
}

func (r *repoPG) ListEligibleMothers(ctx context.Context) ([]*Resident, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+residentCols+` FROM residents r
		WHERE r.deleted_at IS NULL AND r.status = 'active' AND r.gender = 'female'
		  AND r.date_of_birth <= CURRENT_DATE - INTERVAL '18 years'
		ORDER BY lower(r.last_name), lower(r.first_name)`)
	if err != nil {
		return nil, fmt.Errorf("list eligible mothers: %w", err)
	}
	return collect(rows)
}

func (r *repoPG) ListChildren(ctx context.Context, maxAge int) ([]*Resident, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+residentCols+` FROM residents r
		WHERE r.deleted_at IS NULL AND r.status = 'active'
		  AND r.date_of_birth > CURRENT_DATE - make_interval(years => $1::int)
		ORDER BY r.date_of_birth DESC`, maxAge+1)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return collect(rows)
}
