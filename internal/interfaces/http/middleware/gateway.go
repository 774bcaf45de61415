package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"hack-portal.backend/internal/domain/entities"
	"hack-portal.backend/internal/usecases"
	"hack-portal.backend/pkg/logger"
	"hack-portal.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionCookie is the browser session cookie name
	SessionCookie = "hp_session"

	// SessionKey is the gin context key for the resolved session
	SessionKey = "session"
	// AccessTokenKey is the gin context key for the provider access token
	AccessTokenKey = "accessToken"
	// SessionIDKey is the gin context key for the browser session id
	SessionIDKey = "sessionId"
)

// TokenStore looks up provider tokens for a browser session id
type TokenStore interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionTokens, error)
}

// GatewayMiddleware runs every request through the access-control
// decision table exactly once. Handlers behind it read the resolved
// session from the gin context and never re-check roles or verification
// themselves.
func GatewayMiddleware(gateway *usecases.Gateway, sessions TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, ok := extractToken(c, sessions)
		if !ok {
			// Session backend unreachable: fail closed.
			deny(c)
			return
		}

		sess, decision := gateway.Evaluate(c.Request.Context(), c.Request.URL.Path, accessToken)
		class := usecases.ClassifyRoute(c.Request.URL.Path)
		logger.LogDecision(c.Request.Context(), c.Request.URL.Path, string(class), string(decision.Outcome), decision.Target)

		switch decision.Outcome {
		case usecases.OutcomeAllow:
			c.Set(SessionKey, sess)
			c.Set(AccessTokenKey, accessToken)
			c.Next()
		case usecases.OutcomeRedirect:
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
		default:
			deny(c)
		}
	}
}

func deny(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
		"error": "service temporarily unavailable",
	})
}

// extractToken pulls the provider access token from the Authorization
// header or, failing that, from the redis-backed browser session.
func extractToken(c *gin.Context, sessions TokenStore) (string, bool) {
	if authHeader := c.GetHeader(AuthorizationHeader); strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix), true
	}

	sessionID, err := c.Cookie(SessionCookie)
	if err != nil || sessionID == "" {
		return "", true
	}
	c.Set(SessionIDKey, sessionID)

	tokens, err := sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Expired or unknown session: plain anonymous.
			return "", true
		}
		return "", false
	}
	return tokens.AccessToken, true
}

// GetSession gets the resolved session from context
func GetSession(c *gin.Context) *entities.Session {
	if v, exists := c.Get(SessionKey); exists {
		if sess, ok := v.(*entities.Session); ok {
			return sess
		}
	}
	return &entities.Session{}
}

// GetAccessToken gets the provider access token from context
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}

// GetSessionID gets the browser session id from context
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
