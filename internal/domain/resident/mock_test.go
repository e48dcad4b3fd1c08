package resident

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/platform/apperr"
)

type mockRepo struct {
	store map[uuid.UUID]*Resident
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Resident)}
}

func (m *mockRepo) Create(_ context.Context, r *Resident) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Resident, error) {
	r, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound(entity)
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, r *Resident) error {
	existing, ok := m.store[r.ID]
	if !ok || existing.DeletedAt != nil {
		return apperr.NotFound(entity)
	}
	r.RegisteredDate = existing.RegisteredDate
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now()
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r, ok := m.store[id]
	if !ok || r.DeletedAt != nil {
		return apperr.NotFound(entity)
	}
	now := time.Now()
	r.DeletedAt = &now
	return nil
}

func (m *mockRepo) Restore(_ context.Context, id uuid.UUID) error {
	r, ok := m.store[id]
	if !ok || r.DeletedAt == nil {
		return apperr.NotFound(entity)
	}
	r.DeletedAt = nil
	return nil
}

func (m *mockRepo) SetPhoto(_ context.Context, id uuid.UUID, path string) error {
	r, ok := m.store[id]
	if !ok {
		return apperr.NotFound(entity)
	}
	r.PhotoPath = path
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Resident, int, error) {
	var result []*Resident
	for _, r := range m.store {
		if (r.DeletedAt != nil) != f.Archived {
			continue
		}
		if f.Purok != "" && r.Purok != f.Purok {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.PWD != nil && r.IsPWD != *f.PWD {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(r.FullName()), strings.ToLower(strings.Trim(f.Search, "%"))) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockRepo) FindCandidates(_ context.Context, lastName, dateOfBirth string) ([]*Resident, error) {
	var result []*Resident
	for _, r := range m.store {
		if r.DeletedAt == nil && strings.EqualFold(r.LastName, strings.TrimSpace(lastName)) && r.DateOfBirth == dateOfBirth {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockRepo) ListByHousehold(_ context.Context, householdID uuid.UUID) ([]*Resident, error) {
	var result []*Resident
	for _, r := range m.store {
		if r.DeletedAt == nil && r.HouseholdID != nil && *r.HouseholdID == householdID {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}

// ListEligibleMothers returns every live female; the service applies the age gate.
func (m *mockRepo) ListEligibleMothers(_ context.Context) ([]*Resident, error) {
	var result []*Resident
	for _, r := range m.store {
		if r.DeletedAt == nil && r.Status == StatusActive && r.Gender == GenderFemale {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}

// ListChildren returns every live resident; the service applies the age gate.
func (m *mockRepo) ListChildren(_ context.Context, _ int) ([]*Resident, error) {
	var result []*Resident
	for _, r := range m.store {
		if r.DeletedAt == nil && r.Status == StatusActive {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}
