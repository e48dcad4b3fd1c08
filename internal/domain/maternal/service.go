package maternal

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
	EligibleMothers(ctx context.Context) ([]*resident.Resident, error)
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

func positive(name string, v *float64) error {
	if v != nil && *v <= 0 {
		return apperr.Validation("%s must be greater than zero", name)
	}
	return nil
}

// normalize validates m and recomputes its EDD and status.
func (s *Service) normalize(m *Record) error {
	if m.ResidentID == uuid.Nil {
		return apperr.Validation("resident_id is required")
	}
	today := dateutil.Today(s.now())

	lmp, ok := dateutil.ParseDate(m.LMPDate)
	if !ok {
		return apperr.Validation("lmp_date must be a valid date")
	}
	if lmp.After(today) {
		return apperr.Validation("lmp_date cannot be in the future")
	}
	m.LMPDate = lmp.Format(dateutil.Layout)
	m.EDD = dateutil.EstimatedDeliveryDate(lmp).Format(dateutil.Layout)

	if m.PrenatalVisits < 0 {
		return apperr.Validation("prenatal_visits cannot be negative")
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"weight_kg", m.WeightKg}, {"hemoglobin", m.Hemoglobin}, {"baby_weight_kg", m.BabyWeightKg}} {
		if err := positive(f.name, f.v); err != nil {
			return err
		}
	}

	m.BloodPressure = strings.TrimSpace(m.BloodPressure)
	m.PlaceOfDelivery = strings.TrimSpace(m.PlaceOfDelivery)
	m.Complications = strings.TrimSpace(m.Complications)
	m.Notes = strings.TrimSpace(m.Notes)
	m.DeliveryType = strings.ToLower(strings.TrimSpace(m.DeliveryType))

	if strings.TrimSpace(m.DeliveryDate) == "" {
		m.DeliveryDate = ""
		if m.DeliveryType != "" || m.BabyWeightKg != nil || m.PlaceOfDelivery != "" {
			return apperr.Validation("delivery_date is required when delivery details are given")
		}
	} else {
		delivered, ok := dateutil.ParseDate(m.DeliveryDate)
		if !ok {
			return apperr.Validation("delivery_date must be a valid date")
		}
		if delivered.Before(lmp) {
			return apperr.Validation("delivery_date cannot precede lmp_date")
		}
		if delivered.After(today) {
			return apperr.Validation("delivery_date cannot be in the future")
		}
		m.DeliveryDate = delivered.Format(dateutil.Layout)
	}
	if m.DeliveryType != "" && !deliveryTypes[m.DeliveryType] {
		return apperr.Validation("delivery_type must be normal, cesarean or assisted")
	}

	m.derive()
	return nil
}

// checkMother resolves the resident and requires a live woman aged 18 or over.
func (s *Service) checkMother(ctx context.Context, m *Record) error {
	res, err := s.residents.Get(ctx, m.ResidentID)
	if err != nil {
		return err
	}
	if res.DeletedAt != nil {
		return apperr.NotFound("resident")
	}
	if !dateutil.IsEligibleMother(res.Gender, res.AgeAt(s.now())) {
		return apperr.Ineligible("%s is not eligible for maternal health records: must be female and at least %d years old",
			res.FullName(), dateutil.AdultAge)
	}
	m.ResidentName = res.FullName()

	if m.Status == StatusOngoing {
		busy, err := s.repo.HasOngoing(ctx, m.ResidentID, m.ID)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflict("%s already has an ongoing pregnancy record", res.FullName())
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, m *Record) error {
	m.ID = uuid.Nil
	if err := s.normalize(m); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.checkMother(ctx, m); err != nil {
			return err
		}
		return s.repo.Create(ctx, m)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Record) error {
	if err := s.normalize(m); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.checkMother(ctx, m); err != nil {
			return err
		}
		return s.repo.Update(ctx, m)
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*Record, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusOngoing {
		busy, err := s.repo.HasOngoing(ctx, m.ResidentID, id)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, apperr.Conflict("%s already has an ongoing pregnancy record", m.ResidentName)
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

func (s *Service) EligibleMothers(ctx context.Context) ([]*resident.Resident, error) {
	return s.residents.EligibleMothers(ctx)
}
