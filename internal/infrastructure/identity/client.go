package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
)

// Client talks to the external identity provider's REST API (a
// GoTrue-style service). It owns credentials, OAuth handshakes and email
// verification; the portal only ever consumes the resolved
// (id, email, email_verified) triple.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates a new identity provider client. The timeout bounds
// every provider call; an exceeded deadline is reported as ErrProvider
// so callers fail closed.
func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type providerUser struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at"`
	UserMetadata     map[string]interface{} `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         providerUser `json:"user"`
}

// GetUser fetches the user record for an access token. A 401/403 means
// the token no longer identifies anyone (expired, revoked) and maps to
// ErrUnauthorized; transport faults and 5xx map to ErrProvider.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*entities.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrProvider
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var user providerUser
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, domainerrors.ErrProvider
		}
		return toIdentity(&user)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domainerrors.ErrUnauthorized
	default:
		return nil, domainerrors.ErrProvider
	}
}

// SignInWithPassword exchanges email/password credentials for a provider
// session. Invalid credentials map to ErrInvalidCredentials.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*entities.ProviderSession, error) {
	body := map[string]string{"email": email, "password": password}
	return c.tokenRequest(ctx, "password", body, domainerrors.ErrInvalidCredentials)
}

// ExchangeCodeForSession trades an OAuth callback code for a provider
// session (PKCE grant).
func (c *Client) ExchangeCodeForSession(ctx context.Context, code string) (*entities.ProviderSession, error) {
	body := map[string]string{"auth_code": code}
	return c.tokenRequest(ctx, "pkce", body, domainerrors.ErrUnauthorized)
}

// OAuthURL returns the provider's authorize URL for the given OAuth
// provider name. The browser is redirected there; the provider calls
// back with a code.
func (c *Client) OAuthURL(provider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// SignOut revokes the access token at the provider. A failed revocation
// is not fatal for the caller; the local session is discarded anyway.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.ErrProvider
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return domainerrors.ErrProvider
	}
	return nil
}

func (c *Client) tokenRequest(ctx context.Context, grantType string, body map[string]string, badRequestErr error) (*entities.ProviderSession, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", c.baseURL, grantType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrProvider
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var token tokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
			return nil, domainerrors.ErrProvider
		}
		ident, err := toIdentity(&token.User)
		if err != nil {
			return nil, err
		}
		return &entities.ProviderSession{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresIn:    token.ExpiresIn,
			Identity:     ident,
			Metadata:     token.User.UserMetadata,
		}, nil
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return nil, badRequestErr
	default:
		return nil, domainerrors.ErrProvider
	}
}

func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

// toIdentity validates the provider payload. A user record without a
// parseable id is provider misbehavior, not an unauthenticated request.
func toIdentity(user *providerUser) (*entities.Identity, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, domainerrors.ErrProvider
	}
	return &entities.Identity{
		ID:            id,
		Email:         user.Email,
		EmailVerified: user.EmailConfirmedAt != nil,
	}, nil
}
