package death

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

// ResidentGetter resolves the resident a record refers to.
type ResidentGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*resident.Resident, error)
}

type Service struct {
	repo      Repository
	residents ResidentGetter
	now       func() time.Time
	tx        db.TxFunc
}

func NewService(repo Repository, residents ResidentGetter) *Service {
	return &Service{repo: repo, residents: residents, now: time.Now, tx: db.NoTx}
}

// SetTransactor makes the check-then-write operations run in one transaction.
func (s *Service) SetTransactor(tx db.TxFunc) {
	s.tx = tx
}

func (s *Service) validate(ctx context.Context, d *DeathRecord) error {
	if d.ResidentID == uuid.Nil {
		return apperr.Validation("resident_id is required")
	}
	date := dateutil.FormatDateForInput(d.DateOfDeath)
	if date == "" {
		return apperr.Validation("date_of_death must be a valid date")
	}
	d.DateOfDeath = date
	d.CauseOfDeath = strings.TrimSpace(d.CauseOfDeath)
	d.PlaceOfDeath = strings.TrimSpace(d.PlaceOfDeath)
	d.Notes = strings.TrimSpace(d.Notes)

	died, _ := dateutil.ParseDate(date)
	if died.After(dateutil.Today(s.now())) {
		return apperr.Validation("date_of_death cannot be in the future")
	}

	res, err := s.residents.Get(ctx, d.ResidentID)
	if err != nil {
		return err
	}
	if res.DeletedAt != nil {
		return apperr.NotFound("resident")
	}
	if born, ok := dateutil.ParseDate(res.DateOfBirth); ok && died.Before(born) {
		return apperr.Validation("date_of_death cannot precede the date of birth")
	}

	existing, err := s.repo.LiveForResident(ctx, d.ResidentID)
	if err != nil {
		return err
	}
	if existing != uuid.Nil && existing != d.ID {
		return apperr.Duplicate("death record for %s already exists", res.FullName())
	}
	d.ResidentName = res.FullName()
	d.Purok = res.Purok
	return nil
}

func (s *Service) Create(ctx context.Context, d *DeathRecord) error {
	d.ID = uuid.Nil
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, d); err != nil {
			return err
		}
		return s.repo.Create(ctx, d)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DeathRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *DeathRecord) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, d); err != nil {
			return err
		}
		return s.repo.Update(ctx, d)
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

// Restore brings an archived record back unless the resident already has a
// live death record.
func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*DeathRecord, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.LiveForResident(ctx, d.ResidentID)
	if err != nil {
		return nil, err
	}
	if existing != uuid.Nil && existing != id {
		return nil, apperr.Duplicate("death record for %s already exists", d.ResidentName)
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*DeathRecord, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
