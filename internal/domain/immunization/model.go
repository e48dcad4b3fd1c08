package immunization

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// VaccineOther marks a vaccine outside the routine schedule; OtherVaccine
// then names it.
const VaccineOther = "Other"

// Vaccines is the routine childhood immunization schedule offered by the
// barangay health center.
var Vaccines = []string{
	"BCG",
	"Hepatitis B",
	"Pentavalent 1",
	"Pentavalent 2",
	"Pentavalent 3",
	"OPV 1",
	"OPV 2",
	"OPV 3",
	"IPV 1",
	"IPV 2",
	"PCV 1",
	"PCV 2",
	"PCV 3",
	"MMR 1",
	"MMR 2",
}

// canonicalVaccine returns the schedule spelling of name, or "" when it is
// not on the schedule. VaccineOther is accepted too.
func canonicalVaccine(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, VaccineOther) {
		return VaccineOther
	}
	for _, v := range Vaccines {
		if strings.EqualFold(v, name) {
			return v
		}
	}
	return ""
}

// Record maps to child_immunizations.
type Record struct {
	ID               uuid.UUID  `json:"id"`
	ChildID          uuid.UUID  `json:"child_id"`
	ChildName        string     `json:"child_name,omitempty"`
	MotherID         *uuid.UUID `json:"mother_id,omitempty"`
	MotherName       string     `json:"mother_name,omitempty"`
	VaccineName      string     `json:"vaccine_name"`
	OtherVaccine     string     `json:"other_vaccine"`
	BatchNumber      string     `json:"batch_number"`
	DateGiven        string     `json:"date_given"`
	NextDoseDate     string     `json:"next_dose_date"`
	AdministeredBy   string     `json:"administered_by"`
	AdverseReactions string     `json:"adverse_reactions"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// Vaccine is the display name: OtherVaccine for "Other", VaccineName otherwise.
func (r *Record) Vaccine() string {
	if r.VaccineName == VaccineOther {
		return r.OtherVaccine
	}
	return r.VaccineName
}

type ListFilter struct {
	Search   string
	ChildID  *uuid.UUID
	Vaccine  string
	Archived bool
}

// VaccineAvailability lists the schedule for one child.
type VaccineAvailability struct {
	ChildID   uuid.UUID `json:"child_id"`
	Given     []string  `json:"given"`
	Available []string  `json:"available"`
}
