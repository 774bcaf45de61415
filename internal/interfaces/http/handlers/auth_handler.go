package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/interfaces/http/middleware"
	"hack-portal.backend/internal/interfaces/http/response"
	"hack-portal.backend/internal/usecases"
	"hack-portal.backend/pkg/logger"
	"hack-portal.backend/pkg/redis"
)

const (
	// sessionTTL outlives the provider access token; the browser session
	// stays valid as long as the stored refresh token does.
	sessionTTL = 7 * 24 * time.Hour
)

// AuthHandler handles sign-in, OAuth callback and sign-out endpoints
type AuthHandler struct {
	provider       usecases.IdentityProvider
	profileUsecase *usecases.ProfileUsecase
	sessions       *redis.SessionStore
	oauthRedirect  string
}

// NewAuthHandler creates a new auth handler. oauthRedirect is the
// absolute callback URL registered with the identity provider.
func NewAuthHandler(provider usecases.IdentityProvider, profileUsecase *usecases.ProfileUsecase, sessions *redis.SessionStore, oauthRedirect string) *AuthHandler {
	return &AuthHandler{
		provider:       provider,
		profileUsecase: profileUsecase,
		sessions:       sessions,
		oauthRedirect:  oauthRedirect,
	}
}

// Login handles password sign-in
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.PasswordSignInInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	providerSession, err := h.provider.SignInWithPassword(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.ensureProfileFor(c, providerSession)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.openSession(c, providerSession); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":    providerSession.Identity,
		"profile": profile,
	})
}

// OAuthURL returns the provider authorization URL for an OAuth sign-in
// GET /api/v1/auth/oauth/:provider
func (h *AuthHandler) OAuthURL(c *gin.Context) {
	providerName := c.Param("provider")
	if providerName == "" {
		response.Error(c, domainerrors.BadRequest("OAuth provider is required"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"url": h.provider.OAuthURL(providerName, h.oauthRedirect),
	})
}

// Callback handles the OAuth redirect back from the identity provider.
// Browser-facing: every failure lands back on the login page rather
// than a JSON error.
// GET /api/v1/auth/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, usecases.LoginPath)
		return
	}

	providerSession, err := h.provider.ExchangeCodeForSession(c.Request.Context(), code)
	if err != nil {
		logger.Warn(c.Request.Context(), "OAuth code exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, usecases.LoginPath)
		return
	}

	profile, err := h.ensureProfileFor(c, providerSession)
	if err != nil {
		logger.Error(c.Request.Context(), "Profile provisioning failed", zap.Error(err))
		c.Redirect(http.StatusFound, usecases.LoginPath)
		return
	}

	if err := h.openSession(c, providerSession); err != nil {
		c.Redirect(http.StatusFound, usecases.LoginPath)
		return
	}

	// First-time users land on the completion form, returning users on
	// their dashboard.
	if profile != nil && profile.IsProfileComplete {
		c.Redirect(http.StatusFound, usecases.DashboardPath)
		return
	}
	c.Redirect(http.StatusFound, usecases.ProfilePath)
}

// Logout revokes the provider session and drops the browser session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.GetAccessToken(c); token != "" {
		// Best effort; the browser session dies either way.
		if err := h.provider.SignOut(c.Request.Context(), token); err != nil {
			logger.Warn(c.Request.Context(), "Provider sign-out failed", zap.Error(err))
		}
	}

	if sessionID := middleware.GetSessionID(c); sessionID != "" {
		_ = h.sessions.DeleteSession(c.Request.Context(), sessionID)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{"message": "Signed out"})
}

// GetMe returns the resolved session for the current request
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess.Anonymous() {
		response.Error(c, domainerrors.Unauthorized("Not signed in"))
		return
	}
	response.Success(c, http.StatusOK, sess)
}

// ensureProfileFor provisions the profile row for a verified identity.
// Unverified identities get no profile yet; it appears on their first
// sign-in after verification.
func (h *AuthHandler) ensureProfileFor(c *gin.Context, providerSession *entities.ProviderSession) (*entities.Profile, error) {
	ident := providerSession.Identity
	if ident == nil || !ident.EmailVerified {
		return nil, nil
	}
	displayName := usecases.DisplayNameFromMetadata(providerSession.Metadata, ident.Email)
	return h.profileUsecase.EnsureProfile(c.Request.Context(), ident, displayName)
}

// openSession stores the provider token pair and sets the session cookie
func (h *AuthHandler) openSession(c *gin.Context, providerSession *entities.ProviderSession) error {
	sessionID := uuid.New().String()
	tokens := &redis.SessionTokens{
		AccessToken:  providerSession.AccessToken,
		RefreshToken: providerSession.RefreshToken,
	}
	if err := h.sessions.CreateSession(c.Request.Context(), sessionID, tokens, sessionTTL); err != nil {
		return domainerrors.InternalError(err)
	}

	c.SetCookie(middleware.SessionCookie, sessionID, int(sessionTTL.Seconds()), "/", "", false, true)
	return nil
}
