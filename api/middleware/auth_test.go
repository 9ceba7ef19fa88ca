package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/talentsync-backend/internal/access"
	pkgAuth "github.com/hirelane/talentsync-backend/pkg/auth"
	"github.com/hirelane/talentsync-backend/pkg/config"
	"github.com/hirelane/talentsync-backend/pkg/enums"
	pkgerrors "github.com/hirelane/talentsync-backend/pkg/errors"
	"github.com/hirelane/talentsync-backend/pkg/logger"
)

type fakeResolver struct {
	ctx        *access.Context
	err        error
	lastLookup string
}

func (f *fakeResolver) Resolve(_ context.Context, externalIdentityID string) (*access.Context, error) {
	f.lastLookup = externalIdentityID
	if f.err != nil {
		return nil, f.err
	}
	return f.ctx, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "talentsync-test",
		ExpirationMinutes: 5,
	}
}

func mintAuthToken(t *testing.T, cfg config.JWTConfig, externalIdentityID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:             uuid.New(),
		ExternalIdentityID: externalIdentityID,
		Role:               enums.RoleRecruiter,
	})
	require.NoError(t, err)
	return token
}

func newAuthHandler(cfg config.JWTConfig, resolver AccessResolver, onRequest func(r *http.Request)) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "middleware-test", Output: io.Discard})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		w.WriteHeader(http.StatusOK)
	})
	return Auth(cfg, resolver, logg)(next)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := newAuthHandler(testJWTConfig(), &fakeResolver{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedToken(t *testing.T) {
	handler := newAuthHandler(testJWTConfig(), &fakeResolver{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthSeedsAccessContext(t *testing.T) {
	cfg := testJWTConfig()
	identityID := uuid.New()
	resolver := &fakeResolver{ctx: &access.Context{
		IdentityUserID: identityID,
		Roles:          []enums.PlatformRole{enums.RoleRecruiter},
	}}

	var seenAccess *access.Context
	var seenUserID, seenRole string
	handler := newAuthHandler(cfg, resolver, func(r *http.Request) {
		seenAccess = AccessFromContext(r.Context())
		seenUserID = UserIDFromContext(r.Context())
		seenRole = RoleFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintAuthToken(t, cfg, "auth0|mw-test"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth0|mw-test", resolver.lastLookup)
	require.NotNil(t, seenAccess)
	assert.Equal(t, identityID, seenAccess.IdentityUserID)
	assert.Equal(t, identityID.String(), seenUserID)
	assert.Equal(t, string(enums.RoleRecruiter), seenRole)
}

func TestAuthUnknownIdentityReadsAsUnauthorized(t *testing.T) {
	cfg := testJWTConfig()
	resolver := &fakeResolver{err: pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")}
	handler := newAuthHandler(cfg, resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintAuthToken(t, cfg, "auth0|ghost"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "identity not recognized")
}

func TestAuthForbiddenIdentityPassesThrough(t *testing.T) {
	cfg := testJWTConfig()
	resolver := &fakeResolver{err: pkgerrors.New(pkgerrors.CodeForbidden, "account deactivated")}
	handler := newAuthHandler(cfg, resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintAuthToken(t, cfg, "auth0|locked"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthResolverOutageIsDependencyFailure(t *testing.T) {
	cfg := testJWTConfig()
	resolver := &fakeResolver{err: context.DeadlineExceeded}
	handler := newAuthHandler(cfg, resolver, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintAuthToken(t, cfg, "auth0|mw-test"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
