package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/usecases"
)

func TestClassifyRoute(t *testing.T) {
	cases := []struct {
		path string
		want usecases.RouteClass
	}{
		{"/", usecases.RoutePublic},
		{"/about", usecases.RoutePublic},
		{"/auth", usecases.RouteAuthOnly},
		{"/auth/login", usecases.RouteAuthOnly},
		{"/auth/signup", usecases.RouteAuthOnly},
		{"/auth/callback", usecases.RouteAuthOnly},
		{"/auth/logout", usecases.RoutePublic},
		{"/auth/me", usecases.RoutePublic},
		{"/profile", usecases.RouteProfileGate},
		{"/profile/edit", usecases.RouteProfileGate},
		{"/dashboard", usecases.RouteProtected},
		{"/dashboard/applications", usecases.RouteProtected},
		{"/admin", usecases.RouteAdminOnly},
		{"/admin/applications", usecases.RouteAdminOnly},
		{"/api/v1/profile", usecases.RouteProfileGate},
		{"/api/v1/dashboard/applications/me", usecases.RouteProtected},
		{"/api/v1/admin/applications/stats", usecases.RouteAdminOnly},
		{"/api/v1/auth/login", usecases.RouteAuthOnly},
		{"/api/v1/auth/logout", usecases.RoutePublic},
		{"/administrator", usecases.RoutePublic}, // prefix must respect segment boundary
		{"/profiles", usecases.RoutePublic},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, usecases.ClassifyRoute(tc.path), "path %s", tc.path)
	}
}

func TestDecide_DecisionTable(t *testing.T) {
	anon := &entities.Session{}
	unverified := &entities.Session{
		Identity: &entities.Identity{ID: uuid.New(), Email: "u@x.io", EmailVerified: false},
	}
	verifiedNoProfile := &entities.Session{
		Identity: &entities.Identity{ID: uuid.New(), Email: "v@x.io", EmailVerified: true},
	}
	verifiedIncomplete := &entities.Session{
		Identity: &entities.Identity{ID: uuid.New(), Email: "v@x.io", EmailVerified: true},
		Profile:  &entities.Profile{Role: entities.RoleApplicant, IsProfileComplete: false},
	}
	verifiedComplete := &entities.Session{
		Identity: &entities.Identity{ID: uuid.New(), Email: "v@x.io", EmailVerified: true},
		Profile:  &entities.Profile{Role: entities.RoleApplicant, IsProfileComplete: true},
	}
	admin := &entities.Session{
		Identity: &entities.Identity{ID: uuid.New(), Email: "a@x.io", EmailVerified: true},
		Profile:  &entities.Profile{Role: entities.RoleAdmin, IsProfileComplete: true},
	}

	type tc struct {
		name  string
		class usecases.RouteClass
		sess  *entities.Session
		want  usecases.Decision
	}

	cases := []tc{
		// anonymous
		{"anon public", usecases.RoutePublic, anon, usecases.Allow()},
		{"anon auth-only", usecases.RouteAuthOnly, anon, usecases.Allow()},
		{"anon profile gate", usecases.RouteProfileGate, anon, usecases.RedirectTo(usecases.LoginPath)},
		{"anon protected", usecases.RouteProtected, anon, usecases.RedirectTo(usecases.LoginPath)},
		{"anon admin", usecases.RouteAdminOnly, anon, usecases.RedirectTo(usecases.LoginPath)},
		// unverified
		{"unverified public", usecases.RoutePublic, unverified, usecases.Allow()},
		{"unverified auth-only", usecases.RouteAuthOnly, unverified, usecases.Allow()},
		{"unverified profile gate", usecases.RouteProfileGate, unverified, usecases.RedirectTo(usecases.VerifyEmailPath)},
		{"unverified protected", usecases.RouteProtected, unverified, usecases.RedirectTo(usecases.VerifyEmailPath)},
		{"unverified admin", usecases.RouteAdminOnly, unverified, usecases.RedirectTo(usecases.VerifyEmailPath)},
		// verified, no profile row yet (counts as incomplete, never admin)
		{"verified no profile auth-only", usecases.RouteAuthOnly, verifiedNoProfile, usecases.RedirectTo(usecases.DashboardPath)},
		{"verified no profile protected", usecases.RouteProtected, verifiedNoProfile, usecases.RedirectTo(usecases.ProfilePath)},
		{"verified no profile admin", usecases.RouteAdminOnly, verifiedNoProfile, usecases.RedirectTo(usecases.DashboardPath)},
		{"verified no profile profile gate", usecases.RouteProfileGate, verifiedNoProfile, usecases.Allow()},
		// verified, incomplete profile
		{"verified incomplete protected", usecases.RouteProtected, verifiedIncomplete, usecases.RedirectTo(usecases.ProfilePath)},
		{"verified incomplete profile gate", usecases.RouteProfileGate, verifiedIncomplete, usecases.Allow()},
		{"verified incomplete public", usecases.RoutePublic, verifiedIncomplete, usecases.Allow()},
		// verified, complete profile
		{"verified complete auth-only", usecases.RouteAuthOnly, verifiedComplete, usecases.RedirectTo(usecases.DashboardPath)},
		{"verified complete protected", usecases.RouteProtected, verifiedComplete, usecases.Allow()},
		{"verified complete profile gate", usecases.RouteProfileGate, verifiedComplete, usecases.Allow()},
		{"verified complete admin", usecases.RouteAdminOnly, verifiedComplete, usecases.RedirectTo(usecases.DashboardPath)},
		// admin
		{"admin admin route", usecases.RouteAdminOnly, admin, usecases.Allow()},
		{"admin protected", usecases.RouteProtected, admin, usecases.Allow()},
		{"admin auth-only", usecases.RouteAuthOnly, admin, usecases.RedirectTo(usecases.DashboardPath)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := usecases.Decide(c.class, c.sess, nil, nil)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestDecide_ProviderDownDeniesEverything(t *testing.T) {
	providerErr := domainerrors.ErrProvider
	for _, class := range []usecases.RouteClass{
		usecases.RoutePublic,
		usecases.RouteAuthOnly,
		usecases.RouteProfileGate,
		usecases.RouteProtected,
		usecases.RouteAdminOnly,
	} {
		got := usecases.Decide(class, &entities.Session{}, providerErr, nil)
		assert.Equal(t, usecases.Deny(), got, "class %s", class)
	}
}

func TestDecide_StoreFaultDeniesGatedRoutes(t *testing.T) {
	verified := &entities.Session{
		Identity: &entities.Identity{ID: uuid.New(), Email: "v@x.io", EmailVerified: true},
	}
	storeErr := errors.New("db down")

	assert.Equal(t, usecases.Deny(), usecases.Decide(usecases.RouteProtected, verified, nil, storeErr))
	assert.Equal(t, usecases.Deny(), usecases.Decide(usecases.RouteAdminOnly, verified, nil, storeErr))
	// Routes that never consult the profile are unaffected.
	assert.Equal(t, usecases.Allow(), usecases.Decide(usecases.RoutePublic, verified, nil, storeErr))
	assert.Equal(t, usecases.RedirectTo(usecases.DashboardPath), usecases.Decide(usecases.RouteAuthOnly, verified, nil, storeErr))
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user"})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestGatewayEvaluate_AnonymousOnProtected(t *testing.T) {
	provider := new(MockIdentityProvider)
	profileRepo := new(MockProfileRepository)
	gw := usecases.NewGateway(usecases.NewSessionResolver(provider, "secret"), profileRepo)

	sess, decision := gw.Evaluate(context.Background(), "/dashboard", "")
	assert.True(t, sess.Anonymous())
	assert.Equal(t, usecases.RedirectTo(usecases.LoginPath), decision)
	provider.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestGatewayEvaluate_LoadsProfileForVerified(t *testing.T) {
	id := uuid.New()
	token := signToken(t, "secret")

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, token).
		Return(&entities.Identity{ID: id, Email: "v@x.io", EmailVerified: true}, nil)

	profileRepo := new(MockProfileRepository)
	profileRepo.On("GetByID", mock.Anything, id).
		Return(&entities.Profile{ID: id, Role: entities.RoleApplicant, IsProfileComplete: true}, nil)

	gw := usecases.NewGateway(usecases.NewSessionResolver(provider, "secret"), profileRepo)

	sess, decision := gw.Evaluate(context.Background(), "/dashboard", token)
	assert.Equal(t, usecases.Allow(), decision)
	assert.True(t, sess.ProfileComplete())
}

func TestGatewayEvaluate_MissingProfileIsIncomplete(t *testing.T) {
	id := uuid.New()
	token := signToken(t, "secret")

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, token).
		Return(&entities.Identity{ID: id, Email: "v@x.io", EmailVerified: true}, nil)

	profileRepo := new(MockProfileRepository)
	profileRepo.On("GetByID", mock.Anything, id).Return(nil, domainerrors.ErrNotFound)

	gw := usecases.NewGateway(usecases.NewSessionResolver(provider, "secret"), profileRepo)

	sess, decision := gw.Evaluate(context.Background(), "/dashboard", token)
	assert.Equal(t, usecases.RedirectTo(usecases.ProfilePath), decision)
	assert.Nil(t, sess.Profile)
}

func TestGatewayEvaluate_StoreFaultDenies(t *testing.T) {
	id := uuid.New()
	token := signToken(t, "secret")

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, token).
		Return(&entities.Identity{ID: id, Email: "a@x.io", EmailVerified: true}, nil)

	profileRepo := new(MockProfileRepository)
	profileRepo.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection refused"))

	gw := usecases.NewGateway(usecases.NewSessionResolver(provider, "secret"), profileRepo)

	_, decision := gw.Evaluate(context.Background(), "/admin/applications", token)
	assert.Equal(t, usecases.Deny(), decision)
}

func TestGatewayEvaluate_ProviderDownDenies(t *testing.T) {
	token := signToken(t, "secret")

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, token).Return(nil, domainerrors.ErrProvider)

	profileRepo := new(MockProfileRepository)
	gw := usecases.NewGateway(usecases.NewSessionResolver(provider, "secret"), profileRepo)

	_, decision := gw.Evaluate(context.Background(), "/", token)
	assert.Equal(t, usecases.Deny(), decision)
	profileRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGatewayEvaluate_UnverifiedSkipsProfileLoad(t *testing.T) {
	id := uuid.New()
	token := signToken(t, "secret")

	provider := new(MockIdentityProvider)
	provider.On("GetUser", mock.Anything, token).
		Return(&entities.Identity{ID: id, Email: "u@x.io", EmailVerified: false}, nil)

	profileRepo := new(MockProfileRepository)
	gw := usecases.NewGateway(usecases.NewSessionResolver(provider, "secret"), profileRepo)

	_, decision := gw.Evaluate(context.Background(), "/dashboard", token)
	assert.Equal(t, usecases.RedirectTo(usecases.VerifyEmailPath), decision)
	profileRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
