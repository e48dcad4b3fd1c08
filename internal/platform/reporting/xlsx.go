package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var sheetNameReplacer = strings.NewReplacer("[", "", "]", "", ":", "", "*", "", "?", "", "/", "-", "\\", "-")

// RenderXLSX writes doc as a single-sheet workbook laid out like the PDF:
// header lines, then each table with its caption, group row and header row.
func RenderXLSX(w io.Writer, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(doc.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	width := 1
	for _, t := range doc.Tables {
		if len(t.Columns) > width {
			width = len(t.Columns)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(width)

	row := 1
	banner := func(text string, style int) error {
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(sheet, cell, text); err != nil {
			return err
		}
		if width > 1 {
			if err := f.MergeCell(sheet, cell, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, line := range doc.Header {
		if err := banner(line, st.center); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := banner(doc.Title, st.title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if doc.Subtitle != "" {
		if err := banner(doc.Subtitle, st.center); err != nil {
			return fmt.Errorf("write subtitle: %w", err)
		}
	}
	if err := banner("Generated "+doc.GeneratedAt.Format("January 2, 2006 3:04 PM"), st.center); err != nil {
		return fmt.Errorf("write generated: %w", err)
	}
	row++

	freezeRow := 0
	for _, t := range doc.Tables {
		if t.Caption != "" {
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetCellValue(sheet, cell, t.Caption); err != nil {
				return fmt.Errorf("write caption: %w", err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, st.caption); err != nil {
				return fmt.Errorf("style caption: %w", err)
			}
			row++
		}

		if len(t.Groups) > 0 {
			col := 1
			for _, g := range t.Groups {
				start, _ := excelize.CoordinatesToCellName(col, row)
				end, _ := excelize.CoordinatesToCellName(col+g.Span-1, row)
				if err := f.SetCellValue(sheet, start, g.Label); err != nil {
					return fmt.Errorf("write group: %w", err)
				}
				if g.Span > 1 {
					if err := f.MergeCell(sheet, start, end); err != nil {
						return fmt.Errorf("merge group: %w", err)
					}
				}
				if err := f.SetCellStyle(sheet, start, end, st.header); err != nil {
					return fmt.Errorf("style group: %w", err)
				}
				col += g.Span
			}
			row++
		}

		for i, c := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, c.Label); err != nil {
				return fmt.Errorf("write column header: %w", err)
			}
		}
		if len(t.Columns) > 0 {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(t.Columns), row)
			if err := f.SetCellStyle(sheet, first, last, st.header); err != nil {
				return fmt.Errorf("style column header: %w", err)
			}
		}
		if len(doc.Tables) == 1 {
			freezeRow = row
		}
		row++

		for ri, r := range t.Rows {
			style := st.cell
			if ri%2 == 1 {
				style = st.shaded
			}
			for i, c := range t.Columns {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(sheet, cell, xlsxValue(r[c.Key])); err != nil {
					return fmt.Errorf("write cell %s: %w", cell, err)
				}
			}
			if len(t.Columns) > 0 {
				first, _ := excelize.CoordinatesToCellName(1, row)
				last, _ := excelize.CoordinatesToCellName(len(t.Columns), row)
				if err := f.SetCellStyle(sheet, first, last, style); err != nil {
					return fmt.Errorf("style row: %w", err)
				}
			}
			row++
		}
		row++
	}

	if len(doc.Tables) == 1 {
		for i, c := range doc.Tables[0].Columns {
			name, _ := excelize.ColumnNumberToName(i + 1)
			w := c.Width / 2.2
			if w < 8 {
				w = 8
			}
			_ = f.SetColWidth(sheet, name, name, w)
		}
	} else {
		_ = f.SetColWidth(sheet, "A", "A", 16)
		if width > 1 {
			_ = f.SetColWidth(sheet, "B", lastCol, 7)
		}
	}

	if freezeRow > 0 {
		top := fmt.Sprintf("A%d", freezeRow+1)
		_ = f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      freezeRow,
			TopLeftCell: top,
			ActivePane:  "bottomLeft",
		})
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

type sheetStyles struct {
	title, center, caption, header, cell, shaded int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "B4B4B4", Style: 1},
		{Type: "top", Color: "B4B4B4", Style: 1},
		{Type: "bottom", Color: "B4B4B4", Style: 1},
		{Type: "right", Color: "B4B4B4", Style: 1},
	}
	st := &sheetStyles{}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&st.center, &excelize.Style{
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&st.caption, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 11},
		}},
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}},
		{&st.cell, &excelize.Style{Border: border}},
		{&st.shaded, &excelize.Style{
			Border: border,
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#EBF1F8"}, Pattern: 1},
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

// sheetName strips characters Excel rejects and truncates to 31 runes.
func sheetName(title string) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if name == "" {
		return "Report"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// xlsxValue keeps numbers numeric and formats everything else like the PDF.
func xlsxValue(v interface{}) interface{} {
	switch v.(type) {
	case int, int32, int64, float64:
		return v
	}
	return Cell(v)
}
