package immunization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barangay/records/internal/platform/apperr"
)

var fixedNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, stubResidents) {
	residents := stubResidents{}
	svc := NewService(newMockRepo(), residents)
	svc.now = func() time.Time { return fixedNow }
	return svc, residents
}

func TestCanonicalVaccine(t *testing.T) {
	assert.Equal(t, "BCG", canonicalVaccine(" bcg "))
	assert.Equal(t, "Pentavalent 1", canonicalVaccine("PENTAVALENT 1"))
	assert.Equal(t, VaccineOther, canonicalVaccine("other"))
	assert.Equal(t, "", canonicalVaccine("Flu"))
}

func TestService_Create(t *testing.T) {
	svc, residents := newTestService()
	child := residents.add("Lito", "male", "2023-02-01")
	mother := residents.add("Ana", "female", "1995-04-10")

	r := &Record{ChildID: child, MotherID: &mother, VaccineName: "bcg", DateGiven: "02-03-2023"}
	require.NoError(t, svc.Create(context.Background(), r))
	assert.Equal(t, "BCG", r.VaccineName)
	assert.Equal(t, "2023-02-03", r.DateGiven)
	assert.Equal(t, "Lito Cruz", r.ChildName)
	assert.Equal(t, "Ana Cruz", r.MotherName)
}

func TestService_Create_Other(t *testing.T) {
	svc, residents := newTestService()
	child := residents.add("Lito", "male", "2023-02-01")

	err := svc.Create(context.Background(), &Record{ChildID: child, VaccineName: "Other", DateGiven: "2024-01-10"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	r := &Record{ChildID: child, VaccineName: "Other", OtherVaccine: "Rotavirus", DateGiven: "2024-01-10"}
	require.NoError(t, svc.Create(context.Background(), r))
	assert.Equal(t, "Rotavirus", r.Vaccine())
}

func TestService_Create_Eligibility(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()
	older := residents.add("Nina", "female", "2018-01-01")
	child := residents.add("Lito", "male", "2023-02-01")
	girl := residents.add("Bea", "female", "2010-01-01")

	err := svc.Create(ctx, &Record{ChildID: older, VaccineName: "BCG", DateGiven: "2024-01-10"})
	assert.ErrorIs(t, err, apperr.ErrIneligible)

	err = svc.Create(ctx, &Record{ChildID: child, MotherID: &girl, VaccineName: "BCG", DateGiven: "2024-01-10"})
	assert.ErrorIs(t, err, apperr.ErrIneligible)

	err = svc.Create(ctx, &Record{ChildID: child, MotherID: &child, VaccineName: "BCG", DateGiven: "2024-01-10"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	unknown := uuid.New()
	err = svc.Create(ctx, &Record{ChildID: unknown, VaccineName: "BCG", DateGiven: "2024-01-10"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Update_AfterChildAgedOut(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()
	child := residents.add("Lito", "male", "2019-01-10")

	r := &Record{ChildID: child, VaccineName: "MMR 1", DateGiven: "2024-01-15"}
	require.NoError(t, svc.Create(ctx, r))

	svc.now = func() time.Time { return fixedNow.AddDate(2, 0, 0) }
	r.BatchNumber = "MMR-2291"
	require.NoError(t, svc.Update(ctx, r), "eligibility is judged at date_given")
	assert.Equal(t, "MMR-2291", r.BatchNumber)

	late := &Record{ChildID: child, VaccineName: "MMR 2", DateGiven: "2025-02-01"}
	assert.ErrorIs(t, svc.Create(ctx, late), apperr.ErrIneligible)
}

func TestService_Create_Dates(t *testing.T) {
	svc, residents := newTestService()
	child := residents.add("Lito", "male", "2023-02-01")

	tests := []struct {
		name string
		rec  Record
	}{
		{"future", Record{ChildID: child, VaccineName: "BCG", DateGiven: "2024-07-01"}},
		{"before birth", Record{ChildID: child, VaccineName: "BCG", DateGiven: "2023-01-01"}},
		{"next dose not after", Record{ChildID: child, VaccineName: "BCG", DateGiven: "2024-01-01", NextDoseDate: "2024-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			err := svc.Create(context.Background(), &rec)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_DuplicateVaccineRefused(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()
	child := residents.add("Lito", "male", "2023-02-01")

	first := &Record{ChildID: child, VaccineName: "OPV 1", DateGiven: "2023-03-15"}
	require.NoError(t, svc.Create(ctx, first))

	err := svc.Create(ctx, &Record{ChildID: child, VaccineName: "opv 1", DateGiven: "2023-04-15"})
	require.ErrorIs(t, err, apperr.ErrDuplicate)
	assert.Contains(t, err.Error(), "already exists")

	first.BatchNumber = "B-7"
	assert.NoError(t, svc.Update(ctx, first), "a record never duplicates itself")

	require.NoError(t, svc.Delete(ctx, first.ID))
	second := &Record{ChildID: child, VaccineName: "OPV 1", DateGiven: "2023-04-15"}
	require.NoError(t, svc.Create(ctx, second))
	_, err = svc.Restore(ctx, first.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestService_Available(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()
	child := residents.add("Lito", "male", "2023-02-01")

	require.NoError(t, svc.Create(ctx, &Record{ChildID: child, VaccineName: "BCG", DateGiven: "2023-02-02"}))
	require.NoError(t, svc.Create(ctx, &Record{ChildID: child, VaccineName: "Hepatitis B", DateGiven: "2023-02-03"}))

	avail, err := svc.Available(ctx, child)
	require.NoError(t, err)
	assert.Equal(t, []string{"BCG", "Hepatitis B"}, avail.Given)
	assert.NotContains(t, avail.Available, "BCG")
	assert.Contains(t, avail.Available, "Pentavalent 1")
	assert.Equal(t, VaccineOther, avail.Available[len(avail.Available)-1])
	assert.Len(t, avail.Available, len(Vaccines)-2+1)
}
