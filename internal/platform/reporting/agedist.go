package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/barangay/records/pkg/dateutil"
)

// AgeDistributionTitle is the title of the age-by-gender report.
const AgeDistributionTitle = "Age Distribution by Gender"

// UnassignedPurok labels residents without a purok.
const UnassignedPurok = "Unassigned"

// subTableSizes splits the 72 age labels into the printed sub-tables.
var subTableSizes = []int{15, 15, 14, 14, 14}

var ageLabels = buildAgeLabels()

func buildAgeLabels() []string {
	labels := make([]string, 0, 72)
	for m := 0; m < 12; m++ {
		labels = append(labels, fmt.Sprintf("%d MO", m))
	}
	for y := 1; y < dateutil.SeniorCitizenAge; y++ {
		labels = append(labels, fmt.Sprintf("%d Y.O", y))
	}
	return append(labels, "60+")
}

// AgeLabels returns the 72 age columns in display order.
func AgeLabels() []string {
	out := make([]string, len(ageLabels))
	copy(out, ageLabels)
	return out
}

// SubTableLabels returns the age labels printed in sub-table i (0-based).
func SubTableLabels(i int) []string {
	if i < 0 || i >= len(subTableSizes) {
		return nil
	}
	start := 0
	for _, n := range subTableSizes[:i] {
		start += n
	}
	out := make([]string, subTableSizes[i])
	copy(out, ageLabels[start:start+subTableSizes[i]])
	return out
}

// SubTableOf returns the index of the sub-table containing label, or -1.
func SubTableOf(label string) int {
	for i := range subTableSizes {
		for _, l := range SubTableLabels(i) {
			if l == label {
				return i
			}
		}
	}
	return -1
}

// BucketLabel returns the age column for someone born on birth: monthly
// buckets below one year, yearly buckets up to 59 and "60+" after that.
func BucketLabel(birth, now time.Time) string {
	years := dateutil.CalculateAge(birth, now)
	switch {
	case years < 1:
		return fmt.Sprintf("%d MO", dateutil.AgeInMonths(birth, now))
	case years >= dateutil.SeniorCitizenAge:
		return "60+"
	}
	return fmt.Sprintf("%d Y.O", years)
}

// Person is the subset of a resident needed for the distribution.
type Person struct {
	Gender      string
	DateOfBirth string
	Purok       string
}

// GenderCount is a male/female tally.
type GenderCount struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

func (g GenderCount) Total() int { return g.Male + g.Female }

// AgeDistribution holds tallies per purok and age label.
type AgeDistribution struct {
	GeneratedAt time.Time
	Skipped     int

	puroks []string
	counts map[string]map[string]*GenderCount
}

// NewAgeDistribution buckets people by age label and gender. People with an
// unknown gender, an unparseable birthdate, or a birthdate after now are
// counted in Skipped and left out.
func NewAgeDistribution(people []Person, now time.Time) *AgeDistribution {
	d := &AgeDistribution{
		GeneratedAt: now,
		counts:      make(map[string]map[string]*GenderCount),
	}
	for _, p := range people {
		gender := strings.ToLower(strings.TrimSpace(p.Gender))
		birth, ok := dateutil.ParseDate(p.DateOfBirth)
		if !ok || birth.After(now) || (gender != "male" && gender != "female") {
			d.Skipped++
			continue
		}
		purok := strings.TrimSpace(p.Purok)
		if purok == "" {
			purok = UnassignedPurok
		}
		byLabel, ok := d.counts[purok]
		if !ok {
			byLabel = make(map[string]*GenderCount)
			d.counts[purok] = byLabel
			d.puroks = append(d.puroks, purok)
		}
		label := BucketLabel(birth, now)
		gc, ok := byLabel[label]
		if !ok {
			gc = &GenderCount{}
			byLabel[label] = gc
		}
		if gender == "male" {
			gc.Male++
		} else {
			gc.Female++
		}
	}
	sort.Strings(d.puroks)
	return d
}

// Puroks returns the puroks that have at least one counted resident.
func (d *AgeDistribution) Puroks() []string {
	return append([]string(nil), d.puroks...)
}

// Count returns the tally for label across all puroks.
func (d *AgeDistribution) Count(label string) GenderCount {
	var total GenderCount
	for _, byLabel := range d.counts {
		if gc, ok := byLabel[label]; ok {
			total.Male += gc.Male
			total.Female += gc.Female
		}
	}
	return total
}

// CountIn returns the tally for label within one purok.
func (d *AgeDistribution) CountIn(purok, label string) GenderCount {
	if gc, ok := d.counts[purok][label]; ok {
		return *gc
	}
	return GenderCount{}
}

// Table builds sub-table i: one row per purok plus a closing total row.
func (d *AgeDistribution) Table(i int) Table {
	labels := SubTableLabels(i)
	t := Table{
		Caption: fmt.Sprintf("Table %d: %s to %s", i+1, labels[0], labels[len(labels)-1]),
		Columns: []Column{{Key: "purok", Label: "Purok", Width: 22}},
		Groups:  []ColumnGroup{{Label: "", Span: 1}},
	}
	for _, l := range labels {
		t.Groups = append(t.Groups, ColumnGroup{Label: l, Span: 2})
		t.Columns = append(t.Columns,
			Column{Key: l + "|M", Label: "M", Align: "C"},
			Column{Key: l + "|F", Label: "F", Align: "C"},
		)
	}
	t.Groups = append(t.Groups, ColumnGroup{Label: "Total", Span: 3})
	t.Columns = append(t.Columns,
		Column{Key: "total|M", Label: "M", Align: "C"},
		Column{Key: "total|F", Label: "F", Align: "C"},
		Column{Key: "total", Label: "All", Align: "C"},
	)

	build := func(name string, count func(label string) GenderCount) Row {
		row := Row{"purok": name}
		var sum GenderCount
		for _, l := range labels {
			gc := count(l)
			row[l+"|M"] = gc.Male
			row[l+"|F"] = gc.Female
			sum.Male += gc.Male
			sum.Female += gc.Female
		}
		row["total|M"] = sum.Male
		row["total|F"] = sum.Female
		row["total"] = sum.Total()
		return row
	}

	for _, p := range d.puroks {
		p := p
		t.Rows = append(t.Rows, build(p, func(l string) GenderCount { return d.CountIn(p, l) }))
	}
	t.Rows = append(t.Rows, build("TOTAL", d.Count))
	return t
}

// Document lays the five sub-tables out as one report.
func (d *AgeDistribution) Document(header []string) *Document {
	doc := &Document{
		Title:       AgeDistributionTitle,
		Header:      header,
		GeneratedAt: d.GeneratedAt,
		Subtitle:    fmt.Sprintf("As of %s", d.GeneratedAt.Format("January 2, 2006")),
	}
	for i := range subTableSizes {
		doc.Tables = append(doc.Tables, d.Table(i))
	}
	return doc
}
