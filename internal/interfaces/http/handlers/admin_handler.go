package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/interfaces/http/middleware"
	"hack-portal.backend/internal/interfaces/http/response"
	"hack-portal.backend/internal/usecases"
)

// AdminHandler handles the review console endpoints. Role enforcement
// happens in the gateway before these run; the usecases re-check anyway.
type AdminHandler struct {
	adminUsecase *usecases.AdminUsecase
	appUsecase   *usecases.ApplicationUsecase
	store        ObjectStore
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase *usecases.AdminUsecase, appUsecase *usecases.ApplicationUsecase, store ObjectStore) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
		appUsecase:   appUsecase,
		store:        store,
	}
}

// ListApplications lists the review queue with search and status filters
// GET /api/v1/admin/applications
func (h *AdminHandler) ListApplications(c *gin.Context) {
	sess := middleware.GetSession(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	filter := entities.ApplicationFilter{
		Search: c.Query("search"),
		Status: entities.ApplicationStatus(c.Query("status")),
	}

	rows, meta, err := h.adminUsecase.ListApplications(c.Request.Context(), sess, filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"applications": rows,
		"pagination":   meta,
	})
}

// GetStats returns the review queue summary counters
// GET /api/v1/admin/applications/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	sess := middleware.GetSession(c)

	stats, err := h.adminUsecase.ComputeStats(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GetApplication returns one application for the review detail view
// GET /api/v1/admin/applications/:id
func (h *AdminHandler) GetApplication(c *gin.Context) {
	sess := middleware.GetSession(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	app, err := h.adminUsecase.GetApplication(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// ResumeURL returns a short-lived download URL for an applicant's resume
// GET /api/v1/admin/applications/:id/resume
func (h *AdminHandler) ResumeURL(c *gin.Context) {
	sess := middleware.GetSession(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	app, err := h.adminUsecase.GetApplication(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !app.ResumeKey.Valid || app.ResumeKey.String == "" {
		response.Error(c, domainerrors.NotFound("No resume on file"))
		return
	}

	bucket, objectKey, ok := strings.Cut(app.ResumeKey.String, "/")
	if !ok {
		response.Error(c, domainerrors.InternalError(nil))
		return
	}

	url, err := h.store.SignedURL(c.Request.Context(), bucket, objectKey, resumeURLTTL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// UpdateStatus applies a status transition to one application
// PUT /api/v1/admin/applications/:id/status
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	sess := middleware.GetSession(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid application ID"))
		return
	}

	var input struct {
		Status entities.ApplicationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.appUsecase.Transition(c.Request.Context(), id, input.Status, sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// BulkUpdateStatus applies a status transition to a batch of
// applications, reporting per-id outcomes
// POST /api/v1/admin/applications/bulk-status
func (h *AdminHandler) BulkUpdateStatus(c *gin.Context) {
	sess := middleware.GetSession(c)

	var input struct {
		IDs    []uuid.UUID                `json:"ids" binding:"required,min=1"`
		Status entities.ApplicationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.appUsecase.BulkTransition(c.Request.Context(), input.IDs, input.Status, sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
