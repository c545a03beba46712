package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fms-portal/suggestion-api/internal/models"
	"github.com/fms-portal/suggestion-api/internal/service"
	appErrors "github.com/fms-portal/suggestion-api/pkg/errors"
	"github.com/fms-portal/suggestion-api/pkg/response"
)

// SuggestionHandler exposes the admin dashboard endpoints.
type SuggestionHandler struct {
	service *service.SuggestionService
}

// NewSuggestionHandler constructs handler.
func NewSuggestionHandler(svc *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: svc}
}

// List godoc
// @Summary List suggestions
// @Description Returns the filtered, sorted suggestion view for the current admin
// @Tags Suggestions
// @Produce json
// @Param status query string false "Status filter (new, responded, all)"
// @Param department query string false "Department filter"
// @Param user_type query string false "Submitter type filter (student, teacher, all)"
// @Param sort query string false "Sort order (newest, oldest)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /suggestions [get]
func (h *SuggestionHandler) List(c *gin.Context) {
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

	view, err := h.service.View(c.Request.Context(), claims.Identity(), filter, sortKeyFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// Get godoc
// @Summary Get one suggestion
// @Tags Suggestions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /suggestions/{id} [get]
func (h *SuggestionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.Get(c.Request.Context(), claims.Identity(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// Respond godoc
// @Summary Respond to a suggestion
// @Description Writes an admin response to the suggestion store and reconciles the local snapshot
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param id path string true "Suggestion ID"
// @Param payload body object true "Response text"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /suggestions/{id}/response [post]
func (h *SuggestionHandler) Respond(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "response text required"))
		return
	}

	record, err := h.service.Respond(c.Request.Context(), claims.Identity(), service.RespondRequest{
		SuggestionID: c.Param("id"),
		Response:     payload.Response,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// Reload godoc
// @Summary Reload the suggestion snapshot
// @Description Fetches the full record set from the suggestion store
// @Tags Suggestions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /suggestions/reload [post]
func (h *SuggestionHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status(), nil)
}

// Status godoc
// @Summary Snapshot status
// @Description Reports snapshot freshness and the last reload error
// @Tags Suggestions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /suggestions/status [get]
func (h *SuggestionHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status(), nil)
}

func sortKeyFromQuery(c *gin.Context) models.SortKey {
	if c.Query("sort") == string(models.SortOldest) {
		return models.SortOldest
	}
	return models.SortNewest
}
