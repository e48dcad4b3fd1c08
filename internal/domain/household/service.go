package household

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apperr"
)

// MemberLister lists the residents assigned to a household.
type MemberLister interface {
	HouseholdMembers(ctx context.Context, householdID uuid.UUID) ([]*resident.Resident, error)
}

type Service struct {
	repo    Repository
	members MemberLister
}

func NewService(repo Repository, members MemberLister) *Service {
	return &Service{repo: repo, members: members}
}

func validate(h *Household) error {
	h.HouseholdNumber = strings.TrimSpace(h.HouseholdNumber)
	h.HeadName = strings.TrimSpace(h.HeadName)
	h.Purok = strings.TrimSpace(h.Purok)
	h.Address = strings.TrimSpace(h.Address)
	if h.HouseholdNumber == "" {
		return apperr.Validation("household_number is required")
	}
	if h.HeadName == "" {
		return apperr.Validation("head_name is required")
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, apperr.ErrDuplicate)
}

func (s *Service) Create(ctx context.Context, h *Household) error {
	if err := validate(h); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, h); err != nil {
		if isDuplicate(err) {
			return apperr.Duplicate("household %s already exists", h.HouseholdNumber)
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Household, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, h *Household) error {
	if err := validate(h); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, h); err != nil {
		if isDuplicate(err) {
			return apperr.Duplicate("household %s already exists", h.HouseholdNumber)
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*Household, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Household, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Members returns the residents of a live household.
func (s *Service) Members(ctx context.Context, id uuid.UUID) ([]*resident.Resident, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.DeletedAt != nil {
		return nil, apperr.NotFound(entity)
	}
	return s.members.HouseholdMembers(ctx, id)
}
