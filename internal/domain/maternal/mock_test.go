package maternal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apperr"
)

type mockRepo struct {
	store map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) Create(_ context.Context, r *Record) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	r, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound(entity)
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, r *Record) error {
	existing, ok := m.store[r.ID]
	if !ok || existing.DeletedAt != nil {
		return apperr.NotFound(entity)
	}
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

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Record, int, error) {
	var result []*Record
	for _, r := range m.store {
		if (r.DeletedAt != nil) != f.Archived {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockRepo) HasOngoing(_ context.Context, residentID, exclude uuid.UUID) (bool, error) {
	for _, r := range m.store {
		if r.ResidentID == residentID && r.ID != exclude && r.DeletedAt == nil && r.DeliveryDate == "" {
			return true, nil
		}
	}
	return false, nil
}

type stubResidents map[uuid.UUID]*resident.Resident

func (s stubResidents) Get(_ context.Context, id uuid.UUID) (*resident.Resident, error) {
	r, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("resident")
	}
	return r, nil
}

func (s stubResidents) EligibleMothers(_ context.Context) ([]*resident.Resident, error) {
	var out []*resident.Resident
	for _, r := range s {
		if r.Gender == resident.GenderFemale {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s stubResidents) add(first, gender, dob string) uuid.UUID {
	id := uuid.New()
	s[id] = &resident.Resident{ID: id, FirstName: first, LastName: "Reyes", Gender: gender, DateOfBirth: dob}
	return id
}
