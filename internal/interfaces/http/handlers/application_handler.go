package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/interfaces/http/middleware"
	"hack-portal.backend/internal/interfaces/http/response"
	"hack-portal.backend/internal/usecases"
)

const (
	maxResumeSize = 5 << 20 // 5 MiB
	resumeURLTTL  = 15 * time.Minute
)

// ObjectStore is the resume storage collaborator
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// ApplicationHandler handles applicant-facing application endpoints
type ApplicationHandler struct {
	appUsecase   *usecases.ApplicationUsecase
	store        ObjectStore
	resumeBucket string
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appUsecase *usecases.ApplicationUsecase, store ObjectStore, resumeBucket string) *ApplicationHandler {
	return &ApplicationHandler{
		appUsecase:   appUsecase,
		store:        store,
		resumeBucket: resumeBucket,
	}
}

// Submit submits the caller's application for review
// POST /api/v1/dashboard/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.Anonymous() {
		response.Error(c, domainerrors.Unauthorized("Not signed in"))
		return
	}

	var input entities.SubmitApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.appUsecase.Submit(c.Request.Context(), sess.Identity.ID, sess, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"application": app})
}

// SaveDraft stores form progress without submitting
// PUT /api/v1/dashboard/applications/draft
func (h *ApplicationHandler) SaveDraft(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.Anonymous() {
		response.Error(c, domainerrors.Unauthorized("Not signed in"))
		return
	}

	var input entities.SubmitApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.appUsecase.SaveDraft(c.Request.Context(), sess.Identity.ID, sess, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// GetOwn returns the caller's application
// GET /api/v1/dashboard/applications/me
func (h *ApplicationHandler) GetOwn(c *gin.Context) {
	sess := middleware.GetSession(c)

	app, err := h.appUsecase.GetOwn(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// UploadResume streams the caller's resume into the object store and
// records the key on their application. The portal never inspects the
// file beyond size and extension.
// POST /api/v1/dashboard/applications/resume
func (h *ApplicationHandler) UploadResume(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.Anonymous() {
		response.Error(c, domainerrors.Unauthorized("Not signed in"))
		return
	}

	file, err := c.FormFile("resume")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("resume file is required"))
		return
	}
	if file.Size > maxResumeSize {
		response.Error(c, domainerrors.Validation("resume must be 5MB or smaller"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" && ext != ".doc" && ext != ".docx" {
		response.Error(c, domainerrors.Validation("resume must be a PDF or Word document"))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}
	defer src.Close()

	// One object per applicant; re-uploads overwrite in place.
	objectKey := fmt.Sprintf("%s%s", sess.Identity.ID, ext)
	key, err := h.store.Upload(c.Request.Context(), h.resumeBucket, objectKey, src, file.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.appUsecase.AttachResume(c.Request.Context(), sess, key); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resumeKey": key})
}

// ResumeURL returns a short-lived download URL for the caller's resume
// GET /api/v1/dashboard/applications/resume
func (h *ApplicationHandler) ResumeURL(c *gin.Context) {
	sess := middleware.GetSession(c)

	app, err := h.appUsecase.GetOwn(c.Request.Context(), sess)
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
