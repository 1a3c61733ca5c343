package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 7.0
	pdfFont      = "Helvetica"
)

// PDF lays the table out on A4 portrait pages, repeating the header row on
// every page and numbering pages in the footer.
func PDF(table Table) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	widths := columnWidths(table.Columns, pageWidth-2*pdfMargin)
	bottom := pageHeight - pdfMargin - 10

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin - 5)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	header := func() {
		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetFillColor(230, 243, 255)
		for i, column := range table.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight, fit(pdf, tr(column.Header), widths[i]), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 9)
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, tr(table.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	pdf.CellFormat(0, 6, tr(generatedLine(table)), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	header()

	if len(table.Rows) == 0 {
		pdf.CellFormat(sum(widths), pdfRowHeight, "No data for the selected period", "1", 1, "C", false, 0, "")
	}
	for _, row := range table.Rows {
		if pdf.GetY()+pdfRowHeight > bottom {
			pdf.AddPage()
			header()
		}
		for i := range table.Columns {
			value := ""
			if i < len(row) {
				value = tr(row[i])
			}
			pdf.CellFormat(widths[i], pdfRowHeight, fit(pdf, value, widths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths scales relative widths to fill the printable width.
func columnWidths(columns []Column, available float64) []float64 {
	total := 0.0
	for _, column := range columns {
		total += relativeWidth(column)
	}
	widths := make([]float64, len(columns))
	for i, column := range columns {
		widths[i] = available * relativeWidth(column) / total
	}
	return widths
}

func relativeWidth(column Column) float64 {
	if column.Width <= 0 {
		return defaultColumnWidth
	}
	return column.Width
}

// fit truncates an already-translated value so it stays inside its cell.
func fit(pdf *fpdf.Fpdf, value string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	trimmed := value
	for len(trimmed) > 0 && pdf.GetStringWidth(trimmed+"...") > limit {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed + "..."
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
