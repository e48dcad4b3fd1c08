package resident

import (
	"strings"

	"github.com/google/uuid"

	"github.com/barangay/records/pkg/dateutil"
)

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sameIdentity compares first, middle and last name case-insensitively and
// the birthdate after normalization.
func sameIdentity(a, b *Resident) bool {
	if normalizeName(a.FirstName) != normalizeName(b.FirstName) ||
		normalizeName(a.MiddleName) != normalizeName(b.MiddleName) ||
		normalizeName(a.LastName) != normalizeName(b.LastName) {
		return false
	}
	dobA := dateutil.FormatDateForInput(a.DateOfBirth)
	return dobA != "" && dobA == dateutil.FormatDateForInput(b.DateOfBirth)
}

// FindDuplicate returns the first record in existing that has the same
// identity as candidate. A record never matches itself.
func FindDuplicate(candidate *Resident, existing []*Resident) *Resident {
	for _, r := range existing {
		if r == nil {
			continue
		}
		if candidate.ID != uuid.Nil && r.ID == candidate.ID {
			continue
		}
		if sameIdentity(candidate, r) {
			return r
		}
	}
	return nil
}

// IsLikelyDuplicate reports whether candidate matches any record in existing.
func IsLikelyDuplicate(candidate *Resident, existing []*Resident) bool {
	return FindDuplicate(candidate, existing) != nil
}
