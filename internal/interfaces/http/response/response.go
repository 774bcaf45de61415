package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "hack-portal.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps a domain error onto its HTTP response. Sentinel errors get
// their canonical status; anything unrecognized is an internal error
// with a generic body, never a stack trace.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"error":   appErr.Message,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		status, message = http.StatusNotFound, "resource not found"
	case errors.Is(err, domainerrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domainerrors.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domainerrors.ErrValidation), errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domainerrors.ErrAlreadySubmitted):
		status, message = http.StatusConflict, "you already have an application"
	case errors.Is(err, domainerrors.ErrInvalidTransition):
		status, message = http.StatusConflict, "invalid status transition"
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		status, message = http.StatusConflict, "resource already exists"
	case errors.Is(err, domainerrors.ErrProvider):
		// Fail closed: the caller sees a generic retry page.
		status, message = http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"error":   message,
	})
}
