package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/models"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
	"github.com/fms-portal/suggestion-api/pkg/export"
)

type fakeViewer struct {
	view models.SuggestionView
	err  error
}

func (f *fakeViewer) View(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) (models.SuggestionView, error) {
	if f.err != nil {
		return models.SuggestionView{}, f.err
	}
	return f.view, nil
}

func reportRecords() []models.Suggestion {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []models.Suggestion{
		{ID: "1", Department: "Department of Business Management", Role: models.RoleStudent, Status: models.StatusNew, Content: "pending", SubmittedAt: base},
		{ID: "2", Department: "Department of Business Management", Role: models.RoleTeacher, Status: models.StatusResponded, Content: "answered", Response: "done", RespondedBy: "BM Admin", SubmitterEmail: "teacher@fms.edu", SubmittedAt: base},
		{ID: "3", Department: "Department of Tourism Management", Role: models.RoleStudent, Status: models.StatusResponded, Content: "anon entry", Response: "noted", RespondedBy: "Dean", IsAnonymous: true, TrackingID: "MFZ1ABC-K9Q2", SubmittedAt: base},
	}
}

func newReportFixture(view models.SuggestionView) *ReportService {
	return NewReportService(&fakeViewer{view: view}, export.NewPDFExporter(), export.NewCSVExporter(), "Suggestion Box Report", zap.NewNop())
}

func TestGeneratePDFRespondedOnly(t *testing.T) {
	svc := newReportFixture(models.SuggestionView{Suggestions: reportRecords(), Total: 3})

	report, err := svc.GeneratePDF(context.Background(), models.AdminInfo{AccessLevel: models.AccessAll}, models.FilterState{}, models.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasPrefix(string(report.Content), "%PDF"))
	assert.Contains(t, report.Filename, ".pdf")
}

func TestGeneratePDFNoRespondedRecords(t *testing.T) {
	records := []models.Suggestion{{ID: "1", Status: models.StatusNew}}
	svc := newReportFixture(models.SuggestionView{Suggestions: records, Total: 1})

	_, err := svc.GeneratePDF(context.Background(), models.AdminInfo{AccessLevel: models.AccessAll}, models.FilterState{}, models.SortNewest)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGenerateCSVMasksAnonymousSubmitter(t *testing.T) {
	svc := newReportFixture(models.SuggestionView{Suggestions: reportRecords(), Total: 3})

	report, err := svc.GenerateCSV(context.Background(), models.AdminInfo{AccessLevel: models.AccessAll}, models.FilterState{}, models.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)

	body := string(report.Content)
	assert.Contains(t, body, "teacher@fms.edu")
	assert.Contains(t, body, "Anonymous")
	assert.Contains(t, body, "MFZ1ABC-K9Q2")
	assert.NotContains(t, body, "pending")
}

func TestSummarizeFilters(t *testing.T) {
	all := models.AdminInfo{AccessLevel: models.AccessAll}

	assert.Equal(t, "All departments and submitters", summarizeFilters(models.FilterState{}, all))
	assert.Equal(t, "Department: Department of Tourism Management", summarizeFilters(models.FilterState{Department: "Department of Tourism Management"}, all))

	dept := models.AdminInfo{Department: "Department of Business Management", AccessLevel: models.AccessDepartment}
	summary := summarizeFilters(models.FilterState{Department: "ignored"}, dept)
	assert.Equal(t, "Department: Department of Business Management", summary)

	combined := summarizeFilters(models.FilterState{Department: "Department of Tourism Management", UserType: models.RoleStudent}, all)
	assert.Contains(t, combined, "Department: Department of Tourism Management")
	assert.Contains(t, combined, "Submitted by: Student")
}
