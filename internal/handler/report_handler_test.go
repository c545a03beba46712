package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fms-portal/suggestion-api/internal/middleware"
	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/internal/service"
	"github.com/fms-portal/suggestion-api/pkg/export"
)

type stubViewer struct {
	view models.SuggestionView
}

func (s *stubViewer) View(ctx context.Context, admin models.AdminInfo, filter models.FilterState, key models.SortKey) (models.SuggestionView, error) {
	return s.view, nil
}

func newReportFixture() *ReportHandler {
	view := models.SuggestionView{
		Suggestions: []models.Suggestion{
			{ID: "1", Department: "Other", Role: models.RoleStudent, Status: models.StatusResponded, Content: "hi", Response: "noted", RespondedBy: "Dean", SubmitterEmail: "s@fms.edu", SubmittedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
		Total: 1,
	}
	svc := service.NewReportService(&stubViewer{view: view}, export.NewPDFExporter(), export.NewCSVExporter(), "Suggestion Box Report", zap.NewNop())
	return NewReportHandler(svc)
}

func TestReportHandlerPDFDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/suggestions", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AdminID: "a1", AccessLevel: models.AccessAll})

	handler.Generate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "suggestion-report-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestReportHandlerCSVFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/suggestions?format=csv", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AdminID: "a1", AccessLevel: models.AccessAll})

	handler.Generate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "s@fms.edu")
}

func TestReportHandlerUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/suggestions?format=xlsx", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AdminID: "a1", AccessLevel: models.AccessAll})

	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
