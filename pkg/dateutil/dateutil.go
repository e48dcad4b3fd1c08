// Package dateutil normalizes the date strings that arrive from registry
// forms and derives ages and eligibility flags from birthdates.
package dateutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical date format used in request and response bodies.
const Layout = "2006-01-02"

const (
	SeniorCitizenAge   = 60
	AdultAge           = 18
	MaxImmunizationAge = 5

	// GestationDays is the Naegele offset from LMP to the estimated delivery date.
	GestationDays = 280
)

var canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// timestampLayouts are tried in order before falling back to the
// dash-separated day/month heuristics.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
}

// FormatDateForInput converts s to yyyy-MM-dd. A value already in that form
// is returned untouched. Full timestamps are reduced to their date part.
// Dash-separated values ending in a four digit year are read as MM-dd-yyyy
// when the first component is a valid month, otherwise as dd-MM-yyyy.
// Anything else yields "".
func FormatDateForInput(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if canonicalPattern.MatchString(s) {
		return s
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout)
		}
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 || !yearPattern.MatchString(parts[2]) {
		return ""
	}
	first, err1 := strconv.Atoi(parts[0])
	second, err2 := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return ""
	}

	switch {
	case validMonth(first):
		return formatYMD(year, first, second)
	case validMonth(second):
		return formatYMD(year, second, first)
	}
	return ""
}

// ParseDate parses any value FormatDateForInput accepts.
func ParseDate(s string) (time.Time, bool) {
	norm := FormatDateForInput(s)
	if norm == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, norm)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func validMonth(m int) bool { return m >= 1 && m <= 12 }

// formatYMD rejects dates that time.Date would silently roll over, such as
// February 30th.
func formatYMD(year, month, day int) string {
	if day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return ""
	}
	return t.Format(Layout)
}

// CalculateAge returns the whole years between birth and now. Future
// birthdates yield 0.
func CalculateAge(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// AgeFromString is CalculateAge for a raw birthdate string. ok is false when
// the string cannot be parsed.
func AgeFromString(birth string, now time.Time) (age int, ok bool) {
	t, ok := ParseDate(birth)
	if !ok {
		return 0, false
	}
	return CalculateAge(t, now), true
}

// AgeInMonths returns the completed months between birth and now, floored at 0.
func AgeInMonths(birth, now time.Time) int {
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// EstimatedDeliveryDate applies Naegele's rule to the last menstrual period.
func EstimatedDeliveryDate(lmp time.Time) time.Time {
	return lmp.AddDate(0, 0, GestationDays)
}

func IsSeniorCitizen(age int) bool { return age >= SeniorCitizenAge }

func IsImmunizationAge(age int) bool { return age <= MaxImmunizationAge }

// IsEligibleMother reports whether a resident may carry a maternal health
// record or be linked as a child's mother.
func IsEligibleMother(gender string, age int) bool {
	return strings.EqualFold(gender, "female") && age >= AdultAge
}

// Today truncates now to midnight UTC so date-only comparisons line up with
// values parsed from yyyy-MM-dd.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
