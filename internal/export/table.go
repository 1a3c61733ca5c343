// Package export renders report tables as PDF and XLSX files.
package export

import (
	"fmt"
	"time"
)

const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

type Column struct {
	Header string
	// Width is relative: spreadsheet character units, scaled to the page in PDFs.
	Width float64
}

type Table struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []Column
	Rows        [][]string
}

// Filename builds report_<name>_<dd-mm-yyyy>.<format>.
func Filename(name, format string, at time.Time) string {
	return fmt.Sprintf("report_%s_%s.%s", name, at.Format("02-01-2006"), format)
}

func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Render dispatches on format.
func Render(table Table, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return PDF(table)
	case FormatXLSX:
		return XLSX(table)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
