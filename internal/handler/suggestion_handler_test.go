package handler

import (
	"context"
	"encoding/json"
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
	"github.com/fms-portal/suggestion-api/internal/repository"
	"github.com/fms-portal/suggestion-api/internal/service"
)

type stubSheet struct {
	records   []models.Suggestion
	submitErr error
}

func (s *stubSheet) GetSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	out := make([]models.Suggestion, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *stubSheet) SubmitResponse(ctx context.Context, rowIndex int, responseText, respondedBy string, respondedAt time.Time) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	for i := range s.records {
		if s.records[i].RowIndex == rowIndex {
			s.records[i].Status = models.StatusResponded
			s.records[i].Response = responseText
			s.records[i].RespondedBy = respondedBy
		}
	}
	return nil
}

type stubAudit struct{}

func (stubAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error { return nil }

func dashboardRecords() []models.Suggestion {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []models.Suggestion{
		{ID: "1", Department: "Department of Business Management", Role: models.RoleStudent, Status: models.StatusNew, SubmittedAt: base, RowIndex: 2},
		{ID: "2", Department: "Department of Tourism Management", Role: models.RoleTeacher, Status: models.StatusNew, SubmittedAt: base.Add(time.Hour), RowIndex: 3},
	}
}

func newSuggestionHandlerFixture(records []models.Suggestion) *SuggestionHandler {
	svc := service.NewSuggestionService(&stubSheet{records: records}, repository.NewSnapshot(), stubAudit{}, zap.NewNop())
	return NewSuggestionHandler(svc)
}

func deptClaims() *models.JWTClaims {
	return &models.JWTClaims{
		AdminID:     "a1",
		DisplayName: "BM Department Admin",
		Department:  "Department of Business Management",
		AccessLevel: models.AccessDepartment,
	}
}

func TestSuggestionHandlerListRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/suggestions", nil)

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSuggestionHandlerListDepartmentScoped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	c.Set(middleware.ContextUserKey, deptClaims())

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.SuggestionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Total)
	assert.Equal(t, "1", envelope.Data.SelectedID)
}

func TestSuggestionHandlerRespondSuperAdminForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/suggestions/1/response", strings.NewReader(`{"response":"thanks"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{AdminID: "sa", AccessLevel: models.AccessSuperAdmin})

	handler.Respond(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSuggestionHandlerRespondSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/suggestions/1/response", strings.NewReader(`{"response":"we hear you"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Set(middleware.ContextUserKey, deptClaims())

	handler.Respond(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.Suggestion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.StatusResponded, envelope.Data.Status)
	assert.Equal(t, "we hear you", envelope.Data.Response)
}

func TestSuggestionHandlerRespondMissingBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/suggestions/1/response", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Set(middleware.ContextUserKey, deptClaims())

	handler.Respond(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionHandlerGetNotFoundOutsideTier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/suggestions/2", nil)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Set(middleware.ContextUserKey, deptClaims())

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSuggestionHandlerReloadAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSuggestionHandlerFixture(dashboardRecords())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/suggestions/reload", nil)

	handler.Reload(c)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/suggestions/status", nil)

	handler.Status(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data service.SnapshotStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Loaded)
}
