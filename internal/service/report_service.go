package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
	"github.com/fms-portal/suggestion-api/pkg/export"
)

type suggestionViewer interface {
	View(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) (models.SuggestionView, error)
}

// ReportService builds printable reports over responded suggestions.
// Reports honour the caller's tier visibility and active filters, so a
// department admin can never export rows outside their department.
type ReportService struct {
	suggestions suggestionViewer
	pdf         *export.PDFExporter
	csv         *export.CSVExporter
	title       string
	logger      *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(suggestions suggestionViewer, pdf *export.PDFExporter, csv *export.CSVExporter, title string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Suggestion Box Report"
	}
	return &ReportService{suggestions: suggestions, pdf: pdf, csv: csv, title: title, logger: logger}
}

// Report is a generated document ready to stream to the caller.
type Report struct {
	Filename    string
	ContentType string
	Content     []byte
	Total       int
}

// GeneratePDF renders the responded subset of the admin's current view
// as a block-per-suggestion PDF.
func (s *ReportService) GeneratePDF(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) (*Report, error) {
	responded, err := s.respondedView(ctx, admin, filter, key)
	if err != nil {
		return nil, err
	}
	if len(responded) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no responded suggestions match the current filters")
	}

	now := time.Now().UTC()
	doc := export.ReportDocument{
		Title:       s.title,
		Summary:     summarizeFilters(filter, admin),
		GeneratedAt: now.Format("January 2, 2006 15:04 MST"),
		Total:       len(responded),
		Blocks:      make([]export.ReportBlock, 0, len(responded)),
	}

	for _, record := range responded {
		doc.Blocks = append(doc.Blocks, export.ReportBlock{
			Department:  record.Department,
			Role:        record.Role,
			Submitted:   formatSubmitted(record.SubmittedAt),
			Anonymous:   record.IsAnonymous,
			TrackingID:  record.TrackingID,
			Submitter:   record.SubmitterEmail,
			Suggestion:  record.Content,
			Response:    record.Response,
			RespondedBy: record.RespondedBy,
		})
	}

	content, err := s.pdf.RenderReport(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.logger.Info("report generated", zap.String("format", "pdf"), zap.Int("count", len(responded)))
	return &Report{
		Filename:    fmt.Sprintf("suggestion-report-%s.pdf", now.Format("2006-01-02")),
		ContentType: "application/pdf",
		Content:     content,
		Total:       len(responded),
	}, nil
}

// GenerateCSV renders the responded subset as a flat CSV table.
func (s *ReportService) GenerateCSV(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) (*Report, error) {
	responded, err := s.respondedView(ctx, admin, filter, key)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"Department", "Role", "Submitted", "Submitter", "Tracking ID", "Suggestion", "Response", "Responded By"},
		Rows:    make([]map[string]string, 0, len(responded)),
	}
	for _, record := range responded {
		submitter := record.SubmitterEmail
		if record.IsAnonymous {
			submitter = "Anonymous"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Department":   record.Department,
			"Role":         record.Role,
			"Submitted":    formatSubmitted(record.SubmittedAt),
			"Submitter":    submitter,
			"Tracking ID":  record.TrackingID,
			"Suggestion":   record.Content,
			"Response":     record.Response,
			"Responded By": record.RespondedBy,
		})
	}

	content, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}

	s.logger.Info("report generated", zap.String("format", "csv"), zap.Int("count", len(responded)))
	return &Report{
		Filename:    fmt.Sprintf("suggestion-report-%s.csv", time.Now().UTC().Format("2006-01-02")),
		ContentType: "text/csv",
		Content:     content,
		Total:       len(responded),
	}, nil
}

func (s *ReportService) respondedView(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) ([]models.Suggestion, error) {
	view, err := s.suggestions.View(ctx, admin, filter, key)
	if err != nil {
		return nil, err
	}

	responded := make([]models.Suggestion, 0, len(view.Suggestions))
	for _, record := range view.Suggestions {
		if record.Responded() {
			responded = append(responded, record)
		}
	}
	return responded, nil
}

// summarizeFilters renders the active filters into the report banner.
func summarizeFilters(filter models.FilterState, admin models.AdminInfo) string {
	parts := []string{}
	if admin.AccessLevel == models.AccessDepartment {
		parts = append(parts, fmt.Sprintf("Department: %s", admin.Department))
	} else if filter.Department != "" && filter.Department != "all" {
		parts = append(parts, fmt.Sprintf("Department: %s", filter.Department))
	}
	if filter.UserType != "" && filter.UserType != "all" {
		parts = append(parts, fmt.Sprintf("Submitted by: %s", filter.UserType))
	}
	if len(parts) == 0 {
		return "All departments and submitters"
	}
	return strings.Join(parts, "  |  ")
}

func formatSubmitted(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	return ts.Format("Jan 2, 2006 15:04")
}
