package resident

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/blobstore"
)

var fixedNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockRepo, *blobstore.InMemoryBlobStore) {
	repo := newMockRepo()
	photos := blobstore.NewInMemoryBlobStore(1 << 20)
	svc := NewService(repo, photos)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, photos
}

func validResident() *Resident {
	return &Resident{
		FirstName:   "Juan",
		MiddleName:  "Santos",
		LastName:    "Dela Cruz",
		Gender:      "Male",
		DateOfBirth: "05-12-1990",
		Purok:       "Purok 1",
	}
}

func mustCreate(t *testing.T, svc *Service, r *Resident) *Resident {
	t.Helper()
	if err := svc.Create(context.Background(), r); err != nil {
		t.Fatalf("create: %v", err)
	}
	return r
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService()
	r := mustCreate(t, svc, validResident())

	if r.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if r.DateOfBirth != "1990-05-12" {
		t.Errorf("expected normalized birthdate, got %s", r.DateOfBirth)
	}
	if r.Gender != GenderMale || r.CivilStatus != "single" || r.Status != StatusActive {
		t.Errorf("unexpected defaults: gender=%s civil=%s status=%s", r.Gender, r.CivilStatus, r.Status)
	}
	if r.RegisteredDate != "2024-06-15" {
		t.Errorf("expected registered_date to default to today, got %s", r.RegisteredDate)
	}
	if r.Age != 34 || r.IsSeniorCitizen {
		t.Errorf("expected age 34 and not senior, got %d %v", r.Age, r.IsSeniorCitizen)
	}
}

func TestService_Create_SeniorFlagIsDerived(t *testing.T) {
	svc, _, _ := newTestService()

	senior := validResident()
	senior.DateOfBirth = "1964-06-15"
	mustCreate(t, svc, senior)
	if !senior.IsSeniorCitizen {
		t.Error("expected a 60 year old to be flagged senior")
	}

	young := validResident()
	young.FirstName = "Pedro"
	young.IsSeniorCitizen = true
	mustCreate(t, svc, young)
	if young.IsSeniorCitizen {
		t.Error("client-supplied senior flag must be ignored")
	}
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Resident)
	}{
		{"missing first name", func(r *Resident) { r.FirstName = " " }},
		{"missing last name", func(r *Resident) { r.LastName = "" }},
		{"bad gender", func(r *Resident) { r.Gender = "x" }},
		{"bad birthdate", func(r *Resident) { r.DateOfBirth = "notadate" }},
		{"future birthdate", func(r *Resident) { r.DateOfBirth = "2030-01-01" }},
		{"bad civil status", func(r *Resident) { r.CivilStatus = "complicated" }},
		{"bad email", func(r *Resident) { r.Email = "not-an-email" }},
		{"bad status", func(r *Resident) { r.Status = "gone" }},
		{"inactive without address", func(r *Resident) { r.Status = StatusInactive }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			r := validResident()
			tt.mutate(r)
			err := svc.Create(context.Background(), r)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(repo.store) != 0 {
				t.Error("nothing should be stored when validation fails")
			}
		})
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()
	mustCreate(t, svc, validResident())

	dup := validResident()
	dup.FirstName = "JUAN"
	dup.LastName = "dela cruz"
	dup.DateOfBirth = "1990-05-12"
	err := svc.Create(context.Background(), dup)
	if !errors.Is(err, apperr.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("duplicate message must say already exists, got %q", err.Error())
	}
}

func TestService_Update_NotDuplicateOfItself(t *testing.T) {
	svc, _, _ := newTestService()
	r := mustCreate(t, svc, validResident())

	upd := validResident()
	upd.ID = r.ID
	upd.Occupation = "Farmer"
	if err := svc.Update(context.Background(), upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Status != StatusActive {
		t.Errorf("omitted status should be kept, got %q", upd.Status)
	}

	got, _ := svc.Get(context.Background(), r.ID)
	if got.Occupation != "Farmer" {
		t.Errorf("expected occupation to be updated, got %q", got.Occupation)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	r := validResident()
	r.ID = uuid.New()
	if err := svc.Update(context.Background(), r); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_DeleteRestore(t *testing.T) {
	svc, _, _ := newTestService()
	r := mustCreate(t, svc, validResident())
	ctx := context.Background()

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	archived, total, _ := svc.List(ctx, ListFilter{Archived: true}, 20, 0)
	if total != 1 || archived[0].ID != r.ID {
		t.Errorf("expected the resident in the archive, got %d", total)
	}
	if err := svc.Delete(ctx, r.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleting twice should be not found, got %v", err)
	}

	restored, err := svc.Restore(ctx, r.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("expected deleted_at to be cleared")
	}
}

func TestService_DeactivateActivate(t *testing.T) {
	svc, _, _ := newTestService()
	r := mustCreate(t, svc, validResident())
	ctx := context.Background()

	if _, err := svc.Deactivate(ctx, r.ID, "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected new_address to be required, got %v", err)
	}

	got, err := svc.Deactivate(ctx, r.ID, "Quezon City")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.Status != StatusInactive || got.NewAddress != "Quezon City" {
		t.Errorf("unexpected state after deactivate: %s %q", got.Status, got.NewAddress)
	}
	if _, err := svc.Deactivate(ctx, r.ID, "Manila"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict when already inactive, got %v", err)
	}

	got, err = svc.Activate(ctx, r.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if got.Status != StatusActive || got.NewAddress != "" {
		t.Errorf("unexpected state after activate: %s %q", got.Status, got.NewAddress)
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestService_UploadPhoto(t *testing.T) {
	svc, repo, photos := newTestService()
	r := mustCreate(t, svc, validResident())

	path, err := svc.UploadPhoto(context.Background(), r.ID, bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	want := "/uploads/residents/" + r.ID.String() + ".png"
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
	if repo.store[r.ID].PhotoPath != want {
		t.Error("expected photo_path to be persisted")
	}
	if photos.Count() != 1 {
		t.Errorf("expected one stored blob, got %d", photos.Count())
	}
}

func TestService_UploadPhoto_RejectsNonImages(t *testing.T) {
	svc, _, photos := newTestService()
	r := mustCreate(t, svc, validResident())

	_, err := svc.UploadPhoto(context.Background(), r.ID, strings.NewReader("%PDF-1.4 not a photo"))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if photos.Count() != 0 {
		t.Error("nothing should be stored")
	}
}

func TestService_CheckDuplicate(t *testing.T) {
	svc, _, _ := newTestService()
	r := mustCreate(t, svc, validResident())
	ctx := context.Background()

	res, err := svc.CheckDuplicate(ctx, DuplicateCheck{FirstName: "juan", MiddleName: "SANTOS", LastName: "Dela Cruz", DateOfBirth: "1990-05-12"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Duplicate || res.Match == nil || res.Match.ID != r.ID {
		t.Errorf("expected a match on %s, got %+v", r.ID, res)
	}

	res, _ = svc.CheckDuplicate(ctx, DuplicateCheck{ID: &r.ID, FirstName: "Juan", MiddleName: "Santos", LastName: "Dela Cruz", DateOfBirth: "1990-05-12"})
	if res.Duplicate {
		t.Error("editing a record must not flag itself")
	}

	if _, err := svc.CheckDuplicate(ctx, DuplicateCheck{FirstName: "Juan", LastName: "X"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing birthdate, got %v", err)
	}
}

func TestService_EligibleLists(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mother := validResident()
	mother.FirstName, mother.Gender = "Maria", "female"
	mustCreate(t, svc, mother)

	teen := validResident()
	teen.FirstName, teen.Gender, teen.DateOfBirth = "Liza", "female", "2010-01-01"
	mustCreate(t, svc, teen)

	child := validResident()
	child.FirstName, child.DateOfBirth = "Jun", "2021-01-01"
	mustCreate(t, svc, child)

	mothers, _ := svc.EligibleMothers(ctx)
	if len(mothers) != 1 || mothers[0].FirstName != "Maria" {
		t.Errorf("expected only Maria, got %d", len(mothers))
	}

	children, _ := svc.EligibleChildren(ctx)
	if len(children) != 1 || children[0].FirstName != "Jun" {
		t.Errorf("expected only Jun, got %d", len(children))
	}
}
