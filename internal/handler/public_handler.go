package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fms-portal/suggestion-api/internal/service"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
	"github.com/fms-portal/suggestion-api/pkg/response"
)

// PublicHandler exposes the unauthenticated submission surface: the
// wizard, the suggestion form and anonymous tracking lookups.
type PublicHandler struct {
	submissions *service.SubmissionService
	wizard      *service.WizardService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(submissions *service.SubmissionService, wizard *service.WizardService) *PublicHandler {
	return &PublicHandler{submissions: submissions, wizard: wizard}
}

// Departments godoc
// @Summary Department directory
// @Description Lists departments with their form themes and prompts
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/departments [get]
func (h *PublicHandler) Departments(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.wizard.DepartmentDirectory(), nil)
}

// Submit godoc
// @Summary Submit a suggestion
// @Description Validates and forwards a suggestion to the store; returns a tracking id for anonymous submissions
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /public/suggestions [post]
func (h *PublicHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// A missing or expired session is not actionable after a successful
	// write.
	if sessionID := c.GetHeader("X-Wizard-Session"); sessionID != "" {
		_, _ = h.wizard.Complete(c.Request.Context(), sessionID)
	}

	response.Created(c, result)
}

// Track godoc
// @Summary Track submissions
// @Description Looks up suggestions by tracking id or sender email
// @Tags Public
// @Produce json
// @Param tracking_id query string false "Tracking ID"
// @Param email query string false "Sender email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /public/track [get]
func (h *PublicHandler) Track(c *gin.Context) {
	if trackingID := c.Query("tracking_id"); trackingID != "" {
		results, err := h.submissions.TrackByID(c.Request.Context(), trackingID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, results, nil)
		return
	}

	if email := c.Query("email"); email != "" {
		results, err := h.submissions.TrackByEmail(c.Request.Context(), email)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, results, nil)
		return
	}

	response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tracking_id or email is required"))
}

// StartWizard godoc
// @Summary Start a wizard session
// @Tags Wizard
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /public/wizard [post]
func (h *PublicHandler) StartWizard(c *gin.Context) {
	state, err := h.wizard.Start(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// GetWizard godoc
// @Summary Get wizard session state
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/wizard/{id} [get]
func (h *PublicHandler) GetWizard(c *gin.Context) {
	state, err := h.wizard.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// ChooseRole godoc
// @Summary Choose the submitter role
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body object true "Role"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /public/wizard/{id}/role [post]
func (h *PublicHandler) ChooseRole(c *gin.Context) {
	var payload struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "role required"))
		return
	}

	state, err := h.wizard.ChooseRole(c.Request.Context(), c.Param("id"), payload.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// ChooseDepartment godoc
// @Summary Choose the destination department
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body object true "Department"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /public/wizard/{id}/department [post]
func (h *PublicHandler) ChooseDepartment(c *gin.Context) {
	var payload struct {
		Department string `json:"department" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "department required"))
		return
	}

	state, err := h.wizard.ChooseDepartment(c.Request.Context(), c.Param("id"), payload.Department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// WizardBack godoc
// @Summary Navigate the wizard backwards
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/wizard/{id}/back [post]
func (h *PublicHandler) WizardBack(c *gin.Context) {
	state, err := h.wizard.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// AbandonWizard godoc
// @Summary Abandon a wizard session
// @Tags Wizard
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Router /public/wizard/{id} [delete]
func (h *PublicHandler) AbandonWizard(c *gin.Context) {
	if err := h.wizard.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
