package entities

import (
	"github.com/google/uuid"
)

// Identity is an authenticated principal resolved from the external
// identity provider. It carries only what the gateway needs; credential
// material never leaves the provider.
type Identity struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
}

// Session is the per-request (Identity, Profile) pair. It is resolved
// fresh on every request and never cached across requests, because role
// and verification state can change between requests.
type Session struct {
	Identity *Identity `json:"identity,omitempty"`
	Profile  *Profile  `json:"profile,omitempty"`
}

// Anonymous reports whether the session has no resolved identity.
func (s *Session) Anonymous() bool {
	return s == nil || s.Identity == nil
}

// Verified reports whether the session identity exists and has a
// verified email address.
func (s *Session) Verified() bool {
	return !s.Anonymous() && s.Identity.EmailVerified
}

// IsAdmin reports whether the session profile carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Profile != nil && s.Profile.Role == RoleAdmin
}

// ProfileComplete reports whether the session profile exists and has
// been completed by the user.
func (s *Session) ProfileComplete() bool {
	return s != nil && s.Profile != nil && s.Profile.IsProfileComplete
}

// ProviderSession is the token set issued by the identity provider after
// a successful sign-in or code exchange.
type ProviderSession struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int64     `json:"expiresIn"`
	Identity     *Identity `json:"identity"`
	// Metadata holds provider-supplied user metadata (OAuth display
	// names and the like); keys vary by provider.
	Metadata map[string]interface{} `json:"-"`
}

// PasswordSignInInput represents input for password sign-in
type PasswordSignInInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
