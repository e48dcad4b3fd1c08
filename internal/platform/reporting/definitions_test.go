package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	var ids []string
	for _, d := range c.All() {
		ids = append(ids, d.ID)
		assert.NotEmpty(t, d.Title, d.ID)
		for _, col := range d.Columns {
			assert.Contains(t, d.SQL, col.Key, "report %s selects no %s column", d.ID, col.Key)
		}
		for i := range d.Parameters {
			assert.Contains(t, d.SQL, "$"+string(rune('1'+i)), "report %s does not bind parameter %d", d.ID, i+1)
		}
	}
	assert.Equal(t, []string{
		"masterlist", "seniors", "pwd", "4ps", "voters",
		"inactive", "households", "deaths", "maternal", "immunization",
	}, ids)

	d, ok := c.Find("seniors")
	require.True(t, ok)
	assert.Equal(t, "Senior Citizens", d.Title)

	_, ok = c.Find("nope")
	assert.False(t, ok)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "reports: [\n"},
		{"missing id", "reports:\n  - title: X\n    sql: SELECT 1\n    columns: [{key: a, label: A}]\n"},
		{"reserved id", "reports:\n  - id: dashboard\n    sql: SELECT 1\n    columns: [{key: a, label: A}]\n"},
		{"missing sql", "reports:\n  - id: x\n    columns: [{key: a, label: A}]\n"},
		{"missing columns", "reports:\n  - id: x\n    sql: SELECT 1\n"},
		{"duplicate", "reports:\n  - id: x\n    sql: SELECT 1\n    columns: [{key: a, label: A}]\n  - id: x\n    sql: SELECT 2\n    columns: [{key: a, label: A}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
