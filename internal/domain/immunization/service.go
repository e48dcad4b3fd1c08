package immunization

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/db"
	"github.com/barangay/records/pkg/dateutil"
)

// ResidentLookup is the slice of the resident service this package needs.
type ResidentLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*resident.Resident, error)
	EligibleChildren(ctx context.Context) ([]*resident.Resident, error)
}

type Service struct {
	repo      Repository
	residents ResidentLookup
	now       func() time.Time
	tx        db.TxFunc
}

func NewService(repo Repository, residents ResidentLookup) *Service {
	return &Service{repo: repo, residents: residents, now: time.Now, tx: db.NoTx}
}

// SetTransactor runs the eligibility checks and the write in one transaction.
func (s *Service) SetTransactor(tx db.TxFunc) {
	s.tx = tx
}

func (s *Service) normalize(r *Record) error {
	if r.ChildID == uuid.Nil {
		return apperr.Validation("child_id is required")
	}
	if r.MotherID != nil && *r.MotherID == uuid.Nil {
		r.MotherID = nil
	}
	if r.MotherID != nil && *r.MotherID == r.ChildID {
		return apperr.Validation("mother_id cannot be the child")
	}

	r.VaccineName = canonicalVaccine(r.VaccineName)
	if r.VaccineName == "" {
		return apperr.Validation("vaccine_name must be a scheduled vaccine or %s", VaccineOther)
	}
	r.OtherVaccine = strings.TrimSpace(r.OtherVaccine)
	if r.VaccineName == VaccineOther {
		if r.OtherVaccine == "" {
			return apperr.Validation("other_vaccine is required when vaccine_name is %s", VaccineOther)
		}
	} else {
		r.OtherVaccine = ""
	}

	given, ok := dateutil.ParseDate(r.DateGiven)
	if !ok {
		return apperr.Validation("date_given must be a valid date")
	}
	if given.After(dateutil.Today(s.now())) {
		return apperr.Validation("date_given cannot be in the future")
	}
	r.DateGiven = given.Format(dateutil.Layout)

	if strings.TrimSpace(r.NextDoseDate) == "" {
		r.NextDoseDate = ""
	} else {
		next, ok := dateutil.ParseDate(r.NextDoseDate)
		if !ok {
			return apperr.Validation("next_dose_date must be a valid date")
		}
		if !next.After(given) {
			return apperr.Validation("next_dose_date must be after date_given")
		}
		r.NextDoseDate = next.Format(dateutil.Layout)
	}

	r.BatchNumber = strings.TrimSpace(r.BatchNumber)
	r.AdministeredBy = strings.TrimSpace(r.AdministeredBy)
	r.AdverseReactions = strings.TrimSpace(r.AdverseReactions)
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}

func (s *Service) liveResident(ctx context.Context, id uuid.UUID) (*resident.Resident, error) {
	res, err := s.residents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.DeletedAt != nil {
		return nil, apperr.NotFound("resident")
	}
	return res, nil
}

// child resolves a live resident who was within immunization age on the
// date the vaccine was given.
func (s *Service) child(ctx context.Context, id uuid.UUID, given time.Time) (*resident.Resident, error) {
	c, err := s.liveResident(ctx, id)
	if err != nil {
		return nil, err
	}
	age := c.AgeAt(given)
	if age < 0 || !dateutil.IsImmunizationAge(age) {
		return nil, apperr.Ineligible("%s is not eligible for child immunization: must be %d years old or younger",
			c.FullName(), dateutil.MaxImmunizationAge)
	}
	return c, nil
}

// checkParties resolves the child and the optional mother, then refuses a
// vaccine the child already has on record.
func (s *Service) checkParties(ctx context.Context, r *Record) error {
	given, ok := dateutil.ParseDate(r.DateGiven)
	if !ok {
		given = dateutil.Today(s.now())
	}
	c, err := s.child(ctx, r.ChildID, given)
	if err != nil {
		return err
	}
	if born, ok := dateutil.ParseDate(c.DateOfBirth); ok && given.Before(born) {
		return apperr.Validation("date_given cannot precede the child's date of birth")
	}
	r.ChildName = c.FullName()

	r.MotherName = ""
	if r.MotherID != nil {
		m, err := s.liveResident(ctx, *r.MotherID)
		if err != nil {
			return err
		}
		if !dateutil.IsEligibleMother(m.Gender, m.AgeAt(s.now())) {
			return apperr.Ineligible("%s cannot be linked as a mother: must be female and at least %d years old",
				m.FullName(), dateutil.AdultAge)
		}
		r.MotherName = m.FullName()
	}

	existing, err := s.repo.ForChild(ctx, r.ChildID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID != r.ID && strings.EqualFold(e.Vaccine(), r.Vaccine()) {
			return apperr.Duplicate("%s for %s already exists", r.Vaccine(), r.ChildName)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, r *Record) error {
	r.ID = uuid.Nil
	if err := s.normalize(r); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.checkParties(ctx, r); err != nil {
			return err
		}
		return s.repo.Create(ctx, r)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, r *Record) error {
	if err := s.normalize(r); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.checkParties(ctx, r); err != nil {
			return err
		}
		return s.repo.Update(ctx, r)
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*Record, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ForChild(ctx, r.ChildID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.ID != id && strings.EqualFold(e.Vaccine(), r.Vaccine()) {
			return nil, apperr.Duplicate("%s for %s already exists", r.Vaccine(), r.ChildName)
		}
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Available splits the schedule into vaccines the child already received and
// those still open. Other stays available since it covers many vaccines.
func (s *Service) Available(ctx context.Context, childID uuid.UUID) (*VaccineAvailability, error) {
	if _, err := s.liveResident(ctx, childID); err != nil {
		return nil, err
	}
	records, err := s.repo.ForChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(records))
	out := &VaccineAvailability{ChildID: childID, Given: []string{}, Available: []string{}}
	for _, r := range records {
		taken[strings.ToLower(r.Vaccine())] = true
		out.Given = append(out.Given, r.Vaccine())
	}
	for _, v := range Vaccines {
		if !taken[strings.ToLower(v)] {
			out.Available = append(out.Available, v)
		}
	}
	out.Available = append(out.Available, VaccineOther)
	return out, nil
}

func (s *Service) EligibleChildren(ctx context.Context) ([]*resident.Resident, error) {
	return s.residents.EligibleChildren(ctx)
}
