package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ReportBlock is one suggestion entry in a generated report. Anonymous
// blocks carry a tracking id instead of a submitter line.
type ReportBlock struct {
	Department  string
	Role        string
	Submitted   string
	Anonymous   bool
	TrackingID  string
	Submitter   string
	Suggestion  string
	Response    string
	RespondedBy string
}

// ReportDocument is a standalone printable report over responded
// suggestions.
type ReportDocument struct {
	Title       string
	Summary     string
	GeneratedAt string
	Total       int
	Blocks      []ReportBlock
}

// PDFExporter renders datasets and report documents into PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
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

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderReport lays out one block per suggestion, distinguishing the
// anonymous and attributed variants.
func (e *PDFExporter) RenderReport(doc ReportDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	title := doc.Title
	if title == "" {
		title = "Suggestion Box Report"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	header := fmt.Sprintf("Generated %s  |  %d responded suggestion(s)", doc.GeneratedAt, doc.Total)
	pdf.CellFormat(0, 6, header, "", 1, "C", false, 0, "")
	if doc.Summary != "" {
		pdf.CellFormat(0, 6, doc.Summary, "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for i, block := range doc.Blocks {
		pdf.SetFont("Arial", "B", 11)
		heading := fmt.Sprintf("%d. %s - %s", i+1, block.Department, block.Role)
		pdf.CellFormat(0, 7, heading, "", 1, "", false, 0, "")

		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		if block.Anonymous {
			pdf.CellFormat(0, 5, fmt.Sprintf("Anonymous submission  |  Tracking ID: %s  |  %s", block.TrackingID, block.Submitted), "", 1, "", false, 0, "")
		} else {
			pdf.CellFormat(0, 5, fmt.Sprintf("Submitted by %s  |  %s", block.Submitter, block.Submitted), "", 1, "", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, block.Suggestion, "", "", false)
		pdf.Ln(1)

		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Response (%s):", block.RespondedBy), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, block.Response, "", "", false)
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
