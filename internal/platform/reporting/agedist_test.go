package reporting

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func TestAgeLabels(t *testing.T) {
	labels := AgeLabels()
	require.Len(t, labels, 72)
	assert.Equal(t, "0 MO", labels[0])
	assert.Equal(t, "11 MO", labels[11])
	assert.Equal(t, "1 Y.O", labels[12])
	assert.Equal(t, "59 Y.O", labels[70])
	assert.Equal(t, "60+", labels[71])
}

func TestSubTableLabels(t *testing.T) {
	bounds := []struct {
		size        int
		first, last string
	}{
		{15, "0 MO", "3 Y.O"},
		{15, "4 Y.O", "18 Y.O"},
		{14, "19 Y.O", "32 Y.O"},
		{14, "33 Y.O", "46 Y.O"},
		{14, "47 Y.O", "60+"},
	}
	var all []string
	for i, b := range bounds {
		labels := SubTableLabels(i)
		require.Len(t, labels, b.size, "sub-table %d", i+1)
		assert.Equal(t, b.first, labels[0])
		assert.Equal(t, b.last, labels[len(labels)-1])
		all = append(all, labels...)
	}
	if diff := cmp.Diff(AgeLabels(), all); diff != "" {
		t.Errorf("sub-tables do not partition the labels (-want +got):\n%s", diff)
	}
	assert.Nil(t, SubTableLabels(5))
	assert.Nil(t, SubTableLabels(-1))
}

func TestBucketLabel(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		want  string
	}{
		{"newborn", time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), "0 MO"},
		{"five months", time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), "5 MO"},
		{"eleven months", time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), "11 MO"},
		{"first birthday", time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC), "1 Y.O"},
		{"twelve", time.Date(2012, time.June, 15, 0, 0, 0, 0, time.UTC), "12 Y.O"},
		{"day before sixtieth", time.Date(1964, time.June, 16, 0, 0, 0, 0, time.UTC), "59 Y.O"},
		{"sixty", time.Date(1964, time.June, 15, 0, 0, 0, 0, time.UTC), "60+"},
		{"ninety", time.Date(1934, time.January, 1, 0, 0, 0, 0, time.UTC), "60+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketLabel(tt.birth, refNow))
		})
	}
}

func TestAgeDistribution_TwelveYearOldLandsInSecondTableOnly(t *testing.T) {
	d := NewAgeDistribution([]Person{
		{Gender: "male", DateOfBirth: "2012-06-15", Purok: "Purok 1"},
	}, refNow)

	assert.Equal(t, 1, SubTableOf("12 Y.O"))
	assert.Equal(t, GenderCount{Male: 1}, d.Count("12 Y.O"))

	doc := d.Document([]string{"Barangay Test"})
	require.Len(t, doc.Tables, 5)
	for i, table := range doc.Tables {
		total := table.Rows[len(table.Rows)-1]
		require.Equal(t, "TOTAL", total["purok"])
		if i == 1 {
			assert.Equal(t, 1, total["12 Y.O|M"])
			assert.Equal(t, 0, total["12 Y.O|F"])
			assert.Equal(t, 1, total["total"])
			continue
		}
		_, present := total["12 Y.O|M"]
		assert.False(t, present, "table %d should not carry the 12 Y.O column", i+1)
		assert.Equal(t, 0, total["total"], "table %d", i+1)
	}
}

func TestAgeDistribution_SkipsUnknowns(t *testing.T) {
	d := NewAgeDistribution([]Person{
		{Gender: "", DateOfBirth: "2000-01-01"},
		{Gender: "other", DateOfBirth: "2000-01-01"},
		{Gender: "female", DateOfBirth: "not a date"},
		{Gender: "female", DateOfBirth: "2030-01-01"},
		{Gender: "Female", DateOfBirth: "01-15-1990", Purok: " Purok 2 "},
	}, refNow)

	assert.Equal(t, 4, d.Skipped)
	assert.Equal(t, GenderCount{Female: 1}, d.Count("34 Y.O"))
	assert.Equal(t, []string{"Purok 2"}, d.Puroks())
}

func TestAgeDistribution_TableRows(t *testing.T) {
	d := NewAgeDistribution([]Person{
		{Gender: "male", DateOfBirth: "2024-05-01", Purok: "Purok 2"},
		{Gender: "female", DateOfBirth: "2024-05-20", Purok: "Purok 1"},
		{Gender: "female", DateOfBirth: "2021-01-01"},
	}, refNow)

	table := d.Table(0)
	assert.Equal(t, "Table 1: 0 MO to 3 Y.O", table.Caption)
	// purok + 15 labels x 2 + 3 totals
	assert.Len(t, table.Columns, 34)

	span := 0
	for _, g := range table.Groups {
		span += g.Span
	}
	assert.Equal(t, len(table.Columns), span)

	require.Len(t, table.Rows, 4)
	var names []string
	for _, r := range table.Rows {
		names = append(names, r["purok"].(string))
	}
	if diff := cmp.Diff([]string{"Purok 1", "Purok 2", UnassignedPurok, "TOTAL"}, names); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}

	total := table.Rows[3]
	assert.Equal(t, 1, total["1 MO|M"])
	assert.Equal(t, 1, total["0 MO|F"])
	assert.Equal(t, 1, total["3 Y.O|F"])
	assert.Equal(t, 1, total["total|M"])
	assert.Equal(t, 2, total["total|F"])
	assert.Equal(t, 3, total["total"])
}
