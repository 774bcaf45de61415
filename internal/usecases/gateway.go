package usecases

import (
	"context"
	"errors"
	"strings"

	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/domain/repositories"
)

// RouteClass classifies every route in the product. The UI layer must
// map each of its routes onto exactly one class or the gateway cannot
// make a decision for it.
type RouteClass string

const (
	RoutePublic      RouteClass = "public"
	RouteAuthOnly    RouteClass = "auth_only"
	RouteProfileGate RouteClass = "profile_gate"
	RouteProtected   RouteClass = "protected"
	RouteAdminOnly   RouteClass = "admin_only"
)

// Redirect targets used by the decision table.
const (
	LoginPath       = "/auth/login"
	VerifyEmailPath = "/auth/verify-email"
	ProfilePath     = "/profile"
	DashboardPath   = "/dashboard"
)

// ClassifyRoute maps a request path onto its route class. API routes
// under /api/v1 classify the same as the pages they back. Unknown paths
// are public.
func ClassifyRoute(path string) RouteClass {
	path = strings.TrimPrefix(path, "/api/v1")
	switch {
	case path == ProfilePath || strings.HasPrefix(path, ProfilePath+"/"):
		return RouteProfileGate
	// Sign-out and session introspection must stay reachable for
	// signed-in callers; only the sign-in surfaces are auth-only.
	case path == "/auth/logout" || path == "/auth/me":
		return RoutePublic
	case strings.HasPrefix(path, "/auth/") || path == "/auth":
		return RouteAuthOnly
	case path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/"):
		return RouteProtected
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return RouteAdminOnly
	default:
		return RoutePublic
	}
}

// Outcome is the gateway verdict kind
type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeRedirect Outcome = "redirect"
	OutcomeDeny     Outcome = "deny"
)

// Decision is the gateway verdict for one request
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Target  string  `json:"target,omitempty"`
}

func Allow() Decision              { return Decision{Outcome: OutcomeAllow} }
func RedirectTo(target string) Decision { return Decision{Outcome: OutcomeRedirect, Target: target} }
func Deny() Decision               { return Decision{Outcome: OutcomeDeny} }

// Decide is the ordered access-control decision table; first match
// wins. It is pure: same inputs, same verdict. Verification gates before
// completion gates, because an unverified identity cannot yet be trusted
// to own the profile it is editing; completion gates before general
// protected access, because downstream pages assume a populated profile.
// The admin check is role-based only.
//
//  1. provider unreachable            -> deny (fail closed)
//  2. anonymous, auth route           -> allow
//  3. anonymous, gated route          -> redirect to login
//  4. unverified, auth route          -> allow (finish verification)
//  5. unverified, gated route         -> redirect to verify-email
//  6. verified, auth route            -> redirect to dashboard
//  7. verified, protected, incomplete -> redirect to profile
//  8. verified, admin route, no role  -> redirect to dashboard
//  9. otherwise                       -> allow
//
// A store fault while the table needs the profile (rules 7 and 8) is a
// deny, never silently "complete" or "admin".
func Decide(class RouteClass, sess *entities.Session, providerErr, storeErr error) Decision {
	if providerErr != nil {
		return Deny()
	}

	if sess.Anonymous() {
		switch class {
		case RouteAuthOnly:
			return Allow()
		case RouteProfileGate, RouteProtected, RouteAdminOnly:
			return RedirectTo(LoginPath)
		}
		return Allow()
	}

	if !sess.Verified() {
		switch class {
		case RouteAuthOnly:
			return Allow()
		case RouteProfileGate, RouteProtected, RouteAdminOnly:
			return RedirectTo(VerifyEmailPath)
		}
		return Allow()
	}

	switch class {
	case RouteAuthOnly:
		return RedirectTo(DashboardPath)
	case RouteProtected:
		if storeErr != nil {
			return Deny()
		}
		if !sess.ProfileComplete() {
			return RedirectTo(ProfilePath)
		}
	case RouteAdminOnly:
		if storeErr != nil {
			return Deny()
		}
		if !sess.IsAdmin() {
			return RedirectTo(DashboardPath)
		}
	}
	return Allow()
}

// Gateway resolves the session for a request and runs it through the
// decision table. It is invoked exactly once per request; no per-page
// re-checks exist anywhere else.
type Gateway struct {
	resolver    *SessionResolver
	profileRepo repositories.ProfileRepository
}

// NewGateway creates a new access-control gateway
func NewGateway(resolver *SessionResolver, profileRepo repositories.ProfileRepository) *Gateway {
	return &Gateway{
		resolver:    resolver,
		profileRepo: profileRepo,
	}
}

// Evaluate classifies the path, resolves the session fresh from the
// provider and store, and returns the session alongside the verdict.
func (g *Gateway) Evaluate(ctx context.Context, path, accessToken string) (*entities.Session, Decision) {
	class := ClassifyRoute(path)

	ident, providerErr := g.resolver.Resolve(ctx, accessToken)
	sess := &entities.Session{Identity: ident}

	var storeErr error
	if providerErr == nil && ident != nil && ident.EmailVerified {
		profile, err := g.profileRepo.GetByID(ctx, ident.ID)
		switch {
		case err == nil:
			sess.Profile = profile
		case errors.Is(err, domainerrors.ErrNotFound):
			// No profile yet: treated as incomplete, never as admin.
		default:
			storeErr = err
		}
	}

	return sess, Decide(class, sess, providerErr, storeErr)
}
