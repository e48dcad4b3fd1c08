package reporting

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin       = 10.0
	pdfBottomMargin = 15.0
	pdfRowHeight    = 6.0
	pdfFont         = "Helvetica"
)

// RenderPDF writes doc as a landscape A4 document: jurisdiction header,
// title, then each table with its header row repeated on every page and
// alternating row shading. Pages are numbered "Page n of N".
func RenderPDF(w io.Writer, doc *Document) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfBottomMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generated := doc.GeneratedAt.Format("January 2, 2006 3:04 PM")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 5, tr("Generated "+generated), "", 0, "L", false, 0, "")
		pdf.SetX(pdfMargin)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin

	pdf.SetTextColor(0, 0, 0)
	for i, line := range doc.Header {
		style := ""
		if i == len(doc.Header)-1 {
			style = "B"
		}
		pdf.SetFont(pdfFont, style, 10)
		pdf.CellFormat(0, 5, tr(line), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 8, tr(doc.Title), "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont(pdfFont, "", 9)
		pdf.CellFormat(0, 5, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	for ti := range doc.Tables {
		t := &doc.Tables[ti]
		widths := fitWidths(t.Columns, usable)
		fontSize := tableFontSize(len(t.Columns))

		drawHeader := func() {
			pdf.SetFont(pdfFont, "B", fontSize)
			pdf.SetFillColor(31, 78, 121)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetDrawColor(180, 180, 180)
			if len(t.Groups) > 0 {
				col := 0
				for _, g := range t.Groups {
					gw := 0.0
					for i := col; i < col+g.Span && i < len(widths); i++ {
						gw += widths[i]
					}
					pdf.CellFormat(gw, pdfRowHeight, tr(fit(pdf, g.Label, gw)), "1", 0, "C", true, 0, "")
					col += g.Span
				}
				pdf.Ln(-1)
			}
			for i, c := range t.Columns {
				pdf.CellFormat(widths[i], pdfRowHeight, tr(fit(pdf, c.Label, widths[i])), "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont(pdfFont, "", fontSize)
			pdf.SetTextColor(0, 0, 0)
		}

		// Keep the caption, header and at least one row together.
		need := pdfRowHeight * 3
		if len(t.Groups) > 0 {
			need += pdfRowHeight
		}
		if pdf.GetY()+need > pageH-pdfBottomMargin {
			pdf.AddPage()
		}
		if t.Caption != "" {
			pdf.SetFont(pdfFont, "B", 10)
			pdf.CellFormat(0, 7, tr(t.Caption), "", 1, "L", false, 0, "")
		}
		drawHeader()

		for ri, row := range t.Rows {
			if pdf.GetY()+pdfRowHeight > pageH-pdfBottomMargin {
				pdf.AddPage()
				drawHeader()
			}
			shade := ri%2 == 1
			if shade {
				pdf.SetFillColor(235, 241, 248)
			}
			for i, c := range t.Columns {
				align := c.Align
				if align == "" {
					align = "L"
				}
				text := fit(pdf, Cell(row[c.Key]), widths[i])
				pdf.CellFormat(widths[i], pdfRowHeight, tr(text), "1", 0, align, shade, 0, "")
			}
			pdf.Ln(-1)
		}
		if len(t.Rows) == 0 {
			pdf.SetFont(pdfFont, "I", fontSize)
			pdf.CellFormat(usable, pdfRowHeight, "No records found.", "1", 1, "C", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fitWidths fills zero widths with an equal share of the leftover space and
// scales everything down when the table is wider than the page.
func fitWidths(cols []Column, usable float64) []float64 {
	widths := make([]float64, len(cols))
	fixed, free := 0.0, 0
	for i, c := range cols {
		widths[i] = c.Width
		if c.Width > 0 {
			fixed += c.Width
		} else {
			free++
		}
	}
	if free > 0 {
		share := (usable - fixed) / float64(free)
		if share < 8 {
			share = 8
		}
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > usable {
		scale := usable / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

func tableFontSize(columns int) float64 {
	switch {
	case columns > 24:
		return 6
	case columns > 12:
		return 7
	}
	return 8
}

// fit truncates s so it fits in a cell of width w at the current font.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s)+pad <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"..")+pad > w {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}
