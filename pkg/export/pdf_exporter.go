package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Usable horizontal span of an A4 portrait page with 10mm side margins.
const pageSpan = 190.0

// PDFExporter renders datasets into a tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. Column
// widths are weighted by the longest value in each column, so a transcript's
// subject names or a roster's email addresses don't truncate against an
// even-split grid while short score columns stay narrow.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	widths := columnWidths(data)

	pdf.SetFont("Arial", "B", 10)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths splits the page span proportionally to each column's longest
// value, flooring every column at half an even share so a column of one-digit
// marks still gets a readable cell.
func columnWidths(data Dataset) []float64 {
	longest := make([]float64, len(data.Headers))
	for i, header := range data.Headers {
		longest[i] = float64(len(header))
	}
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			if l := float64(len(row[header])); l > longest[i] {
				longest[i] = l
			}
		}
	}

	sum := 0.0
	for _, l := range longest {
		sum += l
	}
	even := pageSpan / float64(len(longest))
	if sum == 0 {
		widths := make([]float64, len(longest))
		for i := range widths {
			widths[i] = even
		}
		return widths
	}

	floor := even / 2
	total := 0.0
	widths := make([]float64, len(longest))
	for i, l := range longest {
		w := pageSpan * l / sum
		if w < floor {
			w = floor
		}
		widths[i] = w
		total += w
	}
	for i := range widths {
		widths[i] *= pageSpan / total
	}
	return widths
}
