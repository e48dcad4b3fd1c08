package death

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apperr"
)

type mockRepo struct {
	store map[uuid.UUID]*DeathRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*DeathRecord)}
}

func (m *mockRepo) Create(_ context.Context, d *DeathRecord) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*DeathRecord, error) {
	d, ok := m.store[id]
	if !ok {
		return nil, apperr.NotFound(entity)
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, d *DeathRecord) error {
	existing, ok := m.store[d.ID]
	if !ok || existing.DeletedAt != nil {
		return apperr.NotFound(entity)
	}
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	d, ok := m.store[id]
	if !ok || d.DeletedAt != nil {
		return apperr.NotFound(entity)
	}
	now := time.Now()
	d.DeletedAt = &now
	return nil
}

func (m *mockRepo) Restore(_ context.Context, id uuid.UUID) error {
	d, ok := m.store[id]
	if !ok || d.DeletedAt == nil {
		return apperr.NotFound(entity)
	}
	d.DeletedAt = nil
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*DeathRecord, int, error) {
	var result []*DeathRecord
	for _, d := range m.store {
		if (d.DeletedAt != nil) != f.Archived {
			continue
		}
		if f.Year > 0 && !strings.HasPrefix(d.DateOfDeath, strconv.Itoa(f.Year)) {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockRepo) LiveForResident(_ context.Context, residentID uuid.UUID) (uuid.UUID, error) {
	for _, d := range m.store {
		if d.ResidentID == residentID && d.DeletedAt == nil {
			return d.ID, nil
		}
	}
	return uuid.Nil, nil
}

type stubResidents map[uuid.UUID]*resident.Resident

func (s stubResidents) Get(_ context.Context, id uuid.UUID) (*resident.Resident, error) {
	r, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("resident")
	}
	return r, nil
}

func (s stubResidents) add(first, last, dob string) uuid.UUID {
	id := uuid.New()
	s[id] = &resident.Resident{ID: id, FirstName: first, LastName: last, DateOfBirth: dob, Purok: "Purok 3"}
	return id
}
