package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/internal/service"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
	"github.com/fms-portal/suggestion-api/pkg/response"
)

// ReportHandler exposes report generation endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Generate godoc
// @Summary Generate a suggestion report
// @Description Renders the responded subset of the current view as PDF or CSV
// @Tags Reports
// @Produce application/pdf
// @Param format query string false "Report format (pdf, csv)"
// @Param status query string false "Status filter"
// @Param department query string false "Department filter"
// @Param user_type query string false "Submitter type filter"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /reports/suggestions [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.FilterState
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter parameters"))
		return
	}

	var (
		report *service.Report
		err    error
	)
	switch c.DefaultQuery("format", "pdf") {
	case "csv":
		report, err = h.reports.GenerateCSV(c.Request.Context(), claims.Identity(), filter, sortKeyFromQuery(c))
	case "pdf":
		report, err = h.reports.GeneratePDF(c.Request.Context(), claims.Identity(), filter, sortKeyFromQuery(c))
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", report.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
