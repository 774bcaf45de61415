package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/interfaces/http/middleware"
	"hack-portal.backend/internal/usecases"
	"hack-portal.backend/pkg/redis"
)

func newTestSessionStore(t *testing.T) *redis.SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	store, err := redis.NewSessionStore(strings.Repeat("0", 64))
	require.NoError(t, err)
	return store
}

func verifiedProviderSession(id uuid.UUID) *entities.ProviderSession {
	return &entities.ProviderSession{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresIn:    3600,
		Identity:     &entities.Identity{ID: id, Email: "jane@x.io", EmailVerified: true},
		Metadata:     map[string]interface{}{"full_name": "Jane Doe"},
	}
}

func newAuthRouter(h *AuthHandler, injected ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	for _, mw := range injected {
		r.Use(mw)
	}
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/oauth/:provider", h.OAuthURL)
		auth.GET("/callback", h.Callback)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.GetMe)
	}
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			return ck
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	id := uuid.New()
	store := newTestSessionStore(t)

	var created *entities.Profile
	profiles := &profileRepoStub{
		createFn: func(_ context.Context, p *entities.Profile) error { created = p; return nil },
	}
	provider := &identityStub{
		signInFn: func(_ context.Context, email, password string) (*entities.ProviderSession, error) {
			assert.Equal(t, "jane@x.io", email)
			assert.Equal(t, "hunter2", password)
			return verifiedProviderSession(id), nil
		},
	}

	h := NewAuthHandler(provider, usecases.NewProfileUsecase(profiles), store, "http://portal.local/api/v1/auth/callback")
	r := newAuthRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"jane@x.io","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@x.io")

	// Sign-in provisions the profile with applicant defaults.
	require.NotNil(t, created)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "Jane Doe", created.DisplayName)
	assert.Equal(t, entities.RoleApplicant, created.Role)

	// The browser session holds the provider token pair.
	ck := sessionCookie(t, w)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	tokens, err := store.GetSession(context.Background(), ck.Value)
	require.NoError(t, err)
	assert.Equal(t, "at-1", tokens.AccessToken)
	assert.Equal(t, "rt-1", tokens.RefreshToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&identityStub{}, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"jane@x.io","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(t, w))
}

func TestLogin_MalformedPayload(t *testing.T) {
	h := NewAuthHandler(&identityStub{}, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthURL(t *testing.T) {
	provider := &identityStub{
		oauthURLFn: func(name, redirectTo string) string {
			assert.Equal(t, "github", name)
			assert.Equal(t, "http://portal.local/api/v1/auth/callback", redirectTo)
			return "https://idp.local/authorize?provider=github"
		},
	}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "http://portal.local/api/v1/auth/callback")
	r := newAuthRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/github", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://idp.local/authorize?provider=github")
}

func TestCallback_MissingCode(t *testing.T) {
	h := NewAuthHandler(&identityStub{}, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/callback", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, usecases.LoginPath, w.Header().Get("Location"))
}

func TestCallback_ExchangeFails(t *testing.T) {
	provider := &identityStub{
		exchangeFn: func(context.Context, string) (*entities.ProviderSession, error) {
			return nil, domainerrors.ErrUnauthorized
		},
	}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/callback?code=stale", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, usecases.LoginPath, w.Header().Get("Location"))
}

func TestCallback_FirstTimeUserLandsOnProfileForm(t *testing.T) {
	id := uuid.New()
	provider := &identityStub{
		exchangeFn: func(_ context.Context, code string) (*entities.ProviderSession, error) {
			assert.Equal(t, "code-1", code)
			return verifiedProviderSession(id), nil
		},
	}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/callback?code=code-1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, usecases.ProfilePath, w.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(t, w))
}

func TestCallback_ReturningUserLandsOnDashboard(t *testing.T) {
	id := uuid.New()
	provider := &identityStub{
		exchangeFn: func(context.Context, string) (*entities.ProviderSession, error) {
			return verifiedProviderSession(id), nil
		},
	}
	profiles := &profileRepoStub{
		getByIDFn: func(context.Context, uuid.UUID) (*entities.Profile, error) {
			return &entities.Profile{ID: id, Role: entities.RoleApplicant, IsProfileComplete: true}, nil
		},
	}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(profiles), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/callback?code=code-1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, usecases.DashboardPath, w.Header().Get("Location"))
}

func TestCallback_UnverifiedIdentityGetsNoProfile(t *testing.T) {
	id := uuid.New()
	provider := &identityStub{
		exchangeFn: func(context.Context, string) (*entities.ProviderSession, error) {
			sess := verifiedProviderSession(id)
			sess.Identity.EmailVerified = false
			return sess, nil
		},
	}
	createCalled := false
	profiles := &profileRepoStub{
		createFn: func(context.Context, *entities.Profile) error { createCalled = true; return nil },
	}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(profiles), newTestSessionStore(t), "")
	r := newAuthRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/callback?code=code-1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.False(t, createCalled)
}

func TestLogout(t *testing.T) {
	store := newTestSessionStore(t)
	require.NoError(t, store.CreateSession(context.Background(), "sess-1",
		&redis.SessionTokens{AccessToken: "at-1"}, sessionTTL))

	provider := &identityStub{}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(&profileRepoStub{}), store, "")

	r := newAuthRouter(h, func(c *gin.Context) {
		c.Set(middleware.AccessTokenKey, "at-1")
		c.Set(middleware.SessionIDKey, "sess-1")
		c.Next()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, provider.signOutCalled)

	_, err := store.GetSession(context.Background(), "sess-1")
	assert.Error(t, err)

	ck := sessionCookie(t, w)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
}

func TestLogout_ProviderFailureStillDropsSession(t *testing.T) {
	store := newTestSessionStore(t)
	require.NoError(t, store.CreateSession(context.Background(), "sess-1",
		&redis.SessionTokens{AccessToken: "at-1"}, sessionTTL))

	provider := &identityStub{
		signOutFn: func(context.Context, string) error { return domainerrors.ErrProvider },
	}
	h := NewAuthHandler(provider, usecases.NewProfileUsecase(&profileRepoStub{}), store, "")

	r := newAuthRouter(h, func(c *gin.Context) {
		c.Set(middleware.AccessTokenKey, "at-1")
		c.Set(middleware.SessionIDKey, "sess-1")
		c.Next()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	_, err := store.GetSession(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestGetMe(t *testing.T) {
	h := NewAuthHandler(&identityStub{}, usecases.NewProfileUsecase(&profileRepoStub{}), newTestSessionStore(t), "")

	r := newAuthRouter(h, withSession(applicantWith(uuid.New())))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@x.io")

	anon := newAuthRouter(h)
	w = httptest.NewRecorder()
	anon.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
