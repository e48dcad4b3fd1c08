package death

import (
	"time"

	"github.com/google/uuid"
)

// DeathRecord maps to the deaths table. Recording a death leaves the
// resident's status untouched.
type DeathRecord struct {
	ID           uuid.UUID  `json:"id"`
	ResidentID   uuid.UUID  `json:"resident_id"`
	ResidentName string     `json:"resident_name,omitempty"`
	Purok        string     `json:"purok,omitempty"`
	DateOfDeath  string     `json:"date_of_death"`
	CauseOfDeath string     `json:"cause_of_death"`
	PlaceOfDeath string     `json:"place_of_death"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

type ListFilter struct {
	Search   string
	Year     int
	Purok    string
	Archived bool
}
