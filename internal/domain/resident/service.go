package resident

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/internal/platform/apperr"
	"github.com/barangay/records/internal/platform/blobstore"
	"github.com/barangay/records/pkg/dateutil"
)

type Service struct {
	repo   Repository
	photos blobstore.BlobStore
	now    func() time.Time
}

func NewService(repo Repository, photos blobstore.BlobStore) *Service {
	return &Service{repo: repo, photos: photos, now: time.Now}
}

// normalize validates r in place, canonicalizes its enumerations and dates,
// and derives the senior citizen flag from the birthdate.
func (s *Service) normalize(r *Resident) error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Suffix = strings.TrimSpace(r.Suffix)
	r.Purok = strings.TrimSpace(r.Purok)
	r.Email = strings.TrimSpace(r.Email)

	if r.FirstName == "" {
		return apperr.Validation("first_name is required")
	}
	if r.LastName == "" {
		return apperr.Validation("last_name is required")
	}

	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	if r.Gender != GenderMale && r.Gender != GenderFemale {
		return apperr.Validation("gender must be male or female")
	}

	dob := dateutil.FormatDateForInput(r.DateOfBirth)
	if dob == "" {
		return apperr.Validation("date_of_birth must be a valid date")
	}
	r.DateOfBirth = dob
	birth, _ := dateutil.ParseDate(dob)
	today := dateutil.Today(s.now())
	if birth.After(today) {
		return apperr.Validation("date_of_birth cannot be in the future")
	}

	r.CivilStatus = strings.ToLower(strings.TrimSpace(r.CivilStatus))
	if r.CivilStatus == "" {
		r.CivilStatus = "single"
	}
	if !validCivilStatuses[r.CivilStatus] {
		return apperr.Validation("invalid civil_status: %s", r.CivilStatus)
	}

	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return apperr.Validation("email is not a valid address")
		}
	}

	if r.SpouseID != nil && r.ID != uuid.Nil && *r.SpouseID == r.ID {
		return apperr.Validation("a resident cannot be their own spouse")
	}

	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		r.Status = StatusActive
	}
	switch r.Status {
	case StatusActive:
	case StatusInactive:
		r.NewAddress = strings.TrimSpace(r.NewAddress)
		if r.NewAddress == "" {
			return apperr.Validation("new_address is required when status is inactive")
		}
	default:
		return apperr.Validation("status must be active or inactive")
	}

	r.Age = dateutil.CalculateAge(birth, s.now())
	r.IsSeniorCitizen = dateutil.IsSeniorCitizen(r.Age)
	return nil
}

// decorate fills derived read-only fields.
func (s *Service) decorate(r *Resident) *Resident {
	if r == nil {
		return nil
	}
	if age := r.AgeAt(s.now()); age >= 0 {
		r.Age = age
		r.IsSeniorCitizen = dateutil.IsSeniorCitizen(age)
	}
	return r
}

func (s *Service) decorateAll(items []*Resident) []*Resident {
	for _, r := range items {
		s.decorate(r)
	}
	return items
}

func (s *Service) checkDuplicate(ctx context.Context, r *Resident) error {
	candidates, err := s.repo.FindCandidates(ctx, r.LastName, r.DateOfBirth)
	if err != nil {
		return err
	}
	if match := FindDuplicate(r, candidates); match != nil {
		return apperr.Duplicate("resident %s born %s already exists", match.FullName(), match.DateOfBirth)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, r *Resident) error {
	r.ID = uuid.Nil
	if err := s.normalize(r); err != nil {
		return err
	}
	if r.RegisteredDate = dateutil.FormatDateForInput(r.RegisteredDate); r.RegisteredDate == "" {
		r.RegisteredDate = dateutil.Today(s.now()).Format(dateutil.Layout)
	}
	if err := s.checkDuplicate(ctx, r); err != nil {
		return err
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Resident, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(r), nil
}

// getLive is Get restricted to records that are not soft-deleted.
func (s *Service) getLive(ctx context.Context, id uuid.UUID) (*Resident, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.DeletedAt != nil {
		return nil, apperr.NotFound(entity)
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, r *Resident) error {
	existing, err := s.getLive(ctx, r.ID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(r.Status) == "" {
		r.Status = existing.Status
		if r.NewAddress == "" {
			r.NewAddress = existing.NewAddress
		}
	}
	if err := s.normalize(r); err != nil {
		return err
	}
	if err := s.checkDuplicate(ctx, r); err != nil {
		return err
	}
	r.PhotoPath = existing.PhotoPath
	return s.repo.Update(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*Resident, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate marks a resident as moved out. The new address is required.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, newAddress string) (*Resident, error) {
	r, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusInactive {
		return nil, apperr.Conflict("resident is already inactive")
	}
	r.Status = StatusInactive
	r.NewAddress = newAddress
	if err := s.normalize(r); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Activate marks a resident as living in the barangay again and clears the
// forwarding address.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Resident, error) {
	r, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusActive {
		return nil, apperr.Conflict("resident is already active")
	}
	r.Status = StatusActive
	r.NewAddress = ""
	if err := s.normalize(r); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UploadPhoto stores an image for the resident and returns its public path.
// The content type is sniffed from the bytes, not taken from the client.
func (s *Service) UploadPhoto(ctx context.Context, id uuid.UUID, content io.Reader) (string, error) {
	r, err := s.getLive(ctx, id)
	if err != nil {
		return "", err
	}

	contentType, replay, err := blobstore.SniffImage(content)
	if err != nil {
		if errors.Is(err, blobstore.ErrInvalidContentType) {
			return "", apperr.Validation("photo must be a png, jpeg or webp image")
		}
		return "", err
	}
	ext, err := blobstore.ImageExtension(contentType)
	if err != nil {
		return "", apperr.Validation("photo must be a png, jpeg or webp image")
	}

	meta, err := s.photos.Put(ctx, "residents/"+id.String()+ext, contentType, replay)
	if err != nil {
		if errors.Is(err, blobstore.ErrFileTooLarge) {
			return "", apperr.Validation("photo exceeds the maximum upload size")
		}
		return "", fmt.Errorf("store photo: %w", err)
	}

	path := meta.PublicPath()
	if err := s.repo.SetPhoto(ctx, id, path); err != nil {
		return "", err
	}
	if old := r.PhotoPath; old != "" && old != path {
		_ = s.photos.Delete(ctx, strings.TrimPrefix(old, blobstore.PublicPrefix))
	}
	return path, nil
}

// CheckDuplicate reports whether the identity in req is already registered.
func (s *Service) CheckDuplicate(ctx context.Context, req DuplicateCheck) (*DuplicateResult, error) {
	candidate := &Resident{
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		DateOfBirth: dateutil.FormatDateForInput(req.DateOfBirth),
	}
	if req.ID != nil {
		candidate.ID = *req.ID
	}
	if strings.TrimSpace(candidate.FirstName) == "" || strings.TrimSpace(candidate.LastName) == "" {
		return nil, apperr.Validation("first_name and last_name are required")
	}
	if candidate.DateOfBirth == "" {
		return nil, apperr.Validation("date_of_birth must be a valid date")
	}

	candidates, err := s.repo.FindCandidates(ctx, candidate.LastName, candidate.DateOfBirth)
	if err != nil {
		return nil, err
	}
	match := FindDuplicate(candidate, candidates)
	return &DuplicateResult{Duplicate: match != nil, Match: s.decorate(match)}, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Resident, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.decorateAll(items), total, nil
}

func (s *Service) HouseholdMembers(ctx context.Context, householdID uuid.UUID) ([]*Resident, error) {
	items, err := s.repo.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return s.decorateAll(items), nil
}

// EligibleMothers lists active women aged 18 and above.
func (s *Service) EligibleMothers(ctx context.Context) ([]*Resident, error) {
	items, err := s.repo.ListEligibleMothers(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, r := range s.decorateAll(items) {
		if dateutil.IsEligibleMother(r.Gender, r.Age) {
			out = append(out, r)
		}
	}
	return out, nil
}

// EligibleChildren lists active residents young enough for immunization.
func (s *Service) EligibleChildren(ctx context.Context) ([]*Resident, error) {
	items, err := s.repo.ListChildren(ctx, dateutil.MaxImmunizationAge)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, r := range s.decorateAll(items) {
		if dateutil.IsImmunizationAge(r.Age) {
			out = append(out, r)
		}
	}
	return out, nil
}
