// Package reporting builds tabular reports from registry data and renders
// them as PDF or XLSX downloads.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/barangay/records/pkg/dateutil"
)

// Column is one column of a table. Width is in millimetres on the PDF page;
// zero means "share the remaining width".
type Column struct {
	Key   string  `json:"key" yaml:"key"`
	Label string  `json:"label" yaml:"label"`
	Width float64 `json:"width,omitempty" yaml:"width"`
	Align string  `json:"align,omitempty" yaml:"align"` // L, C or R
}

// ColumnGroup is a super-header spanning Span consecutive columns.
type ColumnGroup struct {
	Label string `json:"label"`
	Span  int    `json:"span"`
}

// Row maps column keys to cell values.
type Row map[string]interface{}

// Table is a captioned grid. Groups, when set, must span all Columns.
type Table struct {
	Caption string        `json:"caption,omitempty"`
	Groups  []ColumnGroup `json:"groups,omitempty"`
	Columns []Column      `json:"columns"`
	Rows    []Row         `json:"rows"`
}

// Document is what the renderers consume and what the JSON format of the
// reports endpoints returns.
type Document struct {
	Title       string    `json:"title"`
	Header      []string  `json:"header"`
	Subtitle    string    `json:"subtitle,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Tables      []Table   `json:"tables"`
}

// RowCount sums the rows of every table.
func (d *Document) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.Rows)
	}
	return n
}

// Cell formats a value for display.
func Cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case time.Time:
		return x.Format(dateutil.Layout)
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.2f", x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

var fileNameReplacer = strings.NewReplacer(
	" ", "_", "/", "-", "\\", "-", ":", "-",
	"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

// FileName returns "<Title>_<yyyy-MM-dd>.<ext>" with spaces replaced by
// underscores and characters that are unsafe in file names removed.
func FileName(title string, date time.Time, ext string) string {
	return fileNameReplacer.Replace(strings.TrimSpace(title)) + "_" + date.Format(dateutil.Layout) + "." + ext
}
