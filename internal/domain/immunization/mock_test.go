package immunization

import (
	"context"
	"sort"
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
		if f.ChildID != nil && r.ChildID != *f.ChildID {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockRepo) ForChild(_ context.Context, childID uuid.UUID) ([]*Record, error) {
	var result []*Record
	for _, r := range m.store {
		if r.ChildID == childID && r.DeletedAt == nil {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DateGiven < result[j].DateGiven })
	return result, nil
}

type stubResidents map[uuid.UUID]*resident.Resident

func (s stubResidents) Get(_ context.Context, id uuid.UUID) (*resident.Resident, error) {
	r, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("resident")
	}
	return r, nil
}

func (s stubResidents) EligibleChildren(_ context.Context) ([]*resident.Resident, error) {
	var out []*resident.Resident
	for _, r := range s {
		if r.DateOfBirth >= "2019-06-15" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s stubResidents) add(first, gender, dob string) uuid.UUID {
	id := uuid.New()
	s[id] = &resident.Resident{ID: id, FirstName: first, LastName: "Cruz", Gender: gender, DateOfBirth: dob}
	return id
}
