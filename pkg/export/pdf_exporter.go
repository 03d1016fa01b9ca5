package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Dataset as a one-table PDF. Weekly grids are wide,
// so pages are landscape A4 with the day columns sharing the width left
// after the slot column.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const pdfTableWidth = 277.0

// Render draws the title, a header row and one row per slot.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.AddPage()

	if title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		doc.Ln(4)
	}

	// Slot column stays narrow; the weekday columns split the rest.
	slotWidth := 25.0
	dayWidth := 0.0
	if len(data.Headers) > 1 {
		dayWidth = (pdfTableWidth - slotWidth) / float64(len(data.Headers)-1)
	} else {
		slotWidth = pdfTableWidth
	}
	widthOf := func(col int) float64 {
		if col == 0 {
			return slotWidth
		}
		return dayWidth
	}

	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(235, 235, 235)
	for i, header := range data.Headers {
		doc.CellFormat(widthOf(i), 8, header, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			align := "L"
			if i == 0 {
				align = "C"
			}
			doc.CellFormat(widthOf(i), 7, row[header], "1", 0, align, false, 0, "")
		}
		doc.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := doc.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
