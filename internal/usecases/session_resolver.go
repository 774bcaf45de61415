package usecases

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
)

// IdentityProvider is the external identity collaborator. The portal
// consumes only the resolved (id, email, email_verified) triple from it.
type IdentityProvider interface {
	GetUser(ctx context.Context, accessToken string) (*entities.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*entities.ProviderSession, error)
	ExchangeCodeForSession(ctx context.Context, code string) (*entities.ProviderSession, error)
	OAuthURL(provider, redirectTo string) string
	SignOut(ctx context.Context, accessToken string) error
}

// SessionResolver maps request credentials to an Identity. Resolution
// happens fresh on every request; nothing is cached across requests.
type SessionResolver struct {
	provider  IdentityProvider
	jwtSecret []byte
}

// NewSessionResolver creates a new session resolver. jwtSecret is the
// provider's token signing secret, used to reject garbage tokens locally
// before spending a provider round trip.
func NewSessionResolver(provider IdentityProvider, jwtSecret string) *SessionResolver {
	return &SessionResolver{
		provider:  provider,
		jwtSecret: []byte(jwtSecret),
	}
}

// Resolve returns the identity for an access token, or (nil, nil) for an
// anonymous request. "No session" is a normal result, never an error;
// only a misbehaving or unreachable provider returns ErrProvider, which
// callers must treat as deny.
func (r *SessionResolver) Resolve(ctx context.Context, accessToken string) (*entities.Identity, error) {
	if accessToken == "" {
		return nil, nil
	}

	// An expired or mis-signed token identifies nobody. Rejecting it
	// here keeps invalid-credential traffic off the provider.
	if len(r.jwtSecret) > 0 && !r.verifyToken(accessToken) {
		return nil, nil
	}

	ident, err := r.provider.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUnauthorized) {
			// Token revoked since issue: anonymous, not a fault.
			return nil, nil
		}
		return nil, domainerrors.ErrProvider
	}
	return ident, nil
}

func (r *SessionResolver) verifyToken(accessToken string) bool {
	_, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		return r.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil
}
