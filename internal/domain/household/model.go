package household

import (
	"time"

	"github.com/google/uuid"
)

// Household maps to the households table.
type Household struct {
	ID              uuid.UUID  `json:"id"`
	HouseholdNumber string     `json:"household_number"`
	HeadName        string     `json:"head_name"`
	Purok           string     `json:"purok"`
	Address         string     `json:"address"`
	MemberCount     int        `json:"member_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

type ListFilter struct {
	Search   string
	Purok    string
	Archived bool
}
