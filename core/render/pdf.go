package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/pagemark/core"
	"github.com/gaurav-prasanna/pagemark/core/summarize"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders the snapshot as a short PDF report.
// Bullets found on the page are flagged.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the report into PDF bytes.
func (r *PDFRenderer) Render(report *core.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := report.Page.Title
	if title == "" {
		title = report.Page.URL
	}
	if title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr("Source: "+report.Page.URL), "", "L", false)
	pdf.MultiCell(0, 5, tr("Mode: "+string(report.Mode)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	s := report.Snapshot
	if s == nil {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, "No summary available.", "", "L", false)
		return output(pdf)
	}

	if s.About != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, tr(s.About), "", "L", false)
		pdf.Ln(4)
	}

	for _, sec := range summarize.Sections(s, report.Mode) {
		if len(sec.Bullets) == 0 {
			continue
		}
		renderHeading(pdf, tr(sec.Label), sec.Danger)
		for i, b := range sec.Bullets {
			text := strings.TrimSpace(b.Text)
			if text == "" {
				continue
			}
			line := "- " + text
			if report.Applied(summarize.BulletID(sec.IDPrefix, i)) {
				line += "  [on page]"
				pdf.SetFont("Helvetica", "B", 10)
			} else {
				pdf.SetFont("Helvetica", "", 10)
			}
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
		pdf.Ln(3)
	}
	return output(pdf)
}

func renderHeading(pdf *gofpdf.Fpdf, text string, danger bool) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 13)
	if danger {
		pdf.SetTextColor(185, 28, 28)
	}
	pdf.MultiCell(0, 7, text, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}
