package resident

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barangay/records/pkg/dateutil"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	GenderMale   = "male"
	GenderFemale = "female"
)

var validCivilStatuses = map[string]bool{
	"single": true, "married": true, "widowed": true,
	"separated": true, "divorced": true, "live-in": true,
}

// Resident maps to the residents table. Dates travel as yyyy-MM-dd strings.
type Resident struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"first_name"`
	MiddleName        string     `json:"middle_name"`
	LastName          string     `json:"last_name"`
	Suffix            string     `json:"suffix"`
	Gender            string     `json:"gender"`
	DateOfBirth       string     `json:"date_of_birth"`
	Age               int        `json:"age"`
	Purok             string     `json:"purok"`
	HouseholdID       *uuid.UUID `json:"household_id,omitempty"`
	CivilStatus       string     `json:"civil_status"`
	SpouseName        string     `json:"spouse_name"`
	SpouseID          *uuid.UUID `json:"spouse_id,omitempty"`
	IsPWD             bool       `json:"is_pwd"`
	Is4Ps             bool       `json:"is_4ps"`
	IsRegisteredVoter bool       `json:"is_registered_voter"`
	IsSeniorCitizen   bool       `json:"is_senior_citizen"`
	ContactNumber     string     `json:"contact_number"`
	Email             string     `json:"email"`
	Occupation        string     `json:"occupation"`
	Religion          string     `json:"religion"`
	PhotoPath         string     `json:"photo_path"`
	Status            string     `json:"status"`
	NewAddress        string     `json:"new_address"`
	RegisteredDate    string     `json:"registered_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// FullName renders "First Middle Last Suffix" without empty parts.
func (r *Resident) FullName() string {
	parts := []string{r.FirstName, r.MiddleName, r.LastName, r.Suffix}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// AgeAt returns the resident's age at now, or -1 when the birthdate is unusable.
func (r *Resident) AgeAt(now time.Time) int {
	age, ok := dateutil.AgeFromString(r.DateOfBirth, now)
	if !ok {
		return -1
	}
	return age
}

// ListFilter narrows List results. Nil flag pointers mean "either".
type ListFilter struct {
	Search      string
	Purok       string
	Status      string
	Gender      string
	HouseholdID *uuid.UUID
	Senior      *bool
	PWD         *bool
	FourPs      *bool
	Voter       *bool
	Archived    bool
}

// DuplicateCheck is the body of POST /residents/check-duplicate.
type DuplicateCheck struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	FirstName   string     `json:"first_name"`
	MiddleName  string     `json:"middle_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth string     `json:"date_of_birth"`
}

// DuplicateResult answers a DuplicateCheck.
type DuplicateResult struct {
	Duplicate bool      `json:"duplicate"`
	Match     *Resident `json:"match,omitempty"`
}

// StatusChange is the body of the deactivate endpoint.
type StatusChange struct {
	NewAddress string `json:"new_address"`
}
