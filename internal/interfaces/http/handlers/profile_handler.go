package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/interfaces/http/middleware"
	"hack-portal.backend/internal/interfaces/http/response"
	"hack-portal.backend/internal/usecases"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileUsecase *usecases.ProfileUsecase
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileUsecase *usecases.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profileUsecase: profileUsecase}
}

// GetProfile returns the caller's profile
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.Anonymous() {
		response.Error(c, domainerrors.Unauthorized("Not signed in"))
		return
	}

	profile, err := h.profileUsecase.GetProfile(c.Request.Context(), sess.Identity.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// CompleteProfile merges the completion form and marks the profile
// complete
// PUT /api/v1/profile
func (h *ProfileHandler) CompleteProfile(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.Anonymous() {
		response.Error(c, domainerrors.Unauthorized("Not signed in"))
		return
	}

	var input entities.CompleteProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	profile, err := h.profileUsecase.MarkComplete(c.Request.Context(), sess.Identity.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}
