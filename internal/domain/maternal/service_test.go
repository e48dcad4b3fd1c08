package maternal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/barangay/records/internal/platform/apperr"
)

var fixedNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, stubResidents) {
	residents := stubResidents{}
	svc := NewService(newMockRepo(), residents)
	svc.now = func() time.Time { return fixedNow }
	return svc, residents
}

func TestService_Create_DerivesEDD(t *testing.T) {
	svc, residents := newTestService()
	rid := residents.add("Ana", "female", "1995-04-10")

	m := &Record{ResidentID: rid, LMPDate: "2024-01-01", EDD: "1999-01-01", Status: StatusDelivered}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.EDD != "2024-10-07" {
		t.Errorf("expected EDD 2024-10-07, got %s", m.EDD)
	}
	if m.Status != StatusOngoing {
		t.Errorf("expected ongoing, got %s", m.Status)
	}
	if m.ResidentName != "Ana Reyes" {
		t.Errorf("unexpected resident name %q", m.ResidentName)
	}
}

func TestService_Update_RecomputesEDDAndStatus(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()
	rid := residents.add("Ana", "female", "1995-04-10")

	m := &Record{ResidentID: rid, LMPDate: "2023-08-01"}
	if err := svc.Create(ctx, m); err != nil {
		t.Fatal(err)
	}
	m.LMPDate = "08-15-2023"
	m.DeliveryDate = "2024-05-20"
	m.DeliveryType = "Normal"
	if err := svc.Update(ctx, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.EDD != "2024-05-21" {
		t.Errorf("expected EDD 2024-05-21, got %s", m.EDD)
	}
	if m.Status != StatusDelivered || m.DeliveryType != "normal" {
		t.Errorf("unexpected record: status=%s type=%s", m.Status, m.DeliveryType)
	}
}

func TestService_Create_Eligibility(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()

	minor := residents.add("Bea", "female", "2010-01-01")
	man := residents.add("Carlo", "male", "1990-01-01")

	if err := svc.Create(ctx, &Record{ResidentID: minor, LMPDate: "2024-01-01"}); !errors.Is(err, apperr.ErrIneligible) {
		t.Errorf("minor: expected ineligible, got %v", err)
	}
	if err := svc.Create(ctx, &Record{ResidentID: man, LMPDate: "2024-01-01"}); !errors.Is(err, apperr.ErrIneligible) {
		t.Errorf("male: expected ineligible, got %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, residents := newTestService()
	rid := residents.add("Ana", "female", "1995-04-10")
	neg := -1.0

	tests := []struct {
		name string
		rec  Record
	}{
		{"missing lmp", Record{ResidentID: rid}},
		{"future lmp", Record{ResidentID: rid, LMPDate: "2024-07-01"}},
		{"negative weight", Record{ResidentID: rid, LMPDate: "2024-01-01", WeightKg: &neg}},
		{"bad delivery type", Record{ResidentID: rid, LMPDate: "2023-06-01", DeliveryDate: "2024-03-01", DeliveryType: "water"}},
		{"delivery before lmp", Record{ResidentID: rid, LMPDate: "2024-01-01", DeliveryDate: "2023-12-01"}},
		{"type without date", Record{ResidentID: rid, LMPDate: "2024-01-01", DeliveryType: "normal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			if err := svc.Create(context.Background(), &rec); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_OneOngoingPregnancy(t *testing.T) {
	svc, residents := newTestService()
	ctx := context.Background()
	rid := residents.add("Ana", "female", "1995-04-10")

	first := &Record{ResidentID: rid, LMPDate: "2024-01-01"}
	if err := svc.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, &Record{ResidentID: rid, LMPDate: "2024-02-01"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	delivered := &Record{ResidentID: rid, LMPDate: "2022-01-01", DeliveryDate: "2022-10-01"}
	if err := svc.Create(ctx, delivered); err != nil {
		t.Errorf("a delivered record should not conflict: %v", err)
	}
}
