package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	_, err := RequireAuth(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := WithUserClaims(context.Background(), &UserClaims{UID: "user-1"})
	claims, err := RequireAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UID)
}

func TestRequireUserAccess(t *testing.T) {
	ctx := WithUserClaims(context.Background(), &UserClaims{UID: "user-1"})

	_, err := RequireUserAccess(ctx, "user-1")
	assert.NoError(t, err)

	_, err = RequireUserAccess(ctx, "")
	assert.NoError(t, err, "empty requested user defaults to the caller")

	_, err = RequireUserAccess(ctx, "user-2")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Basic abc123")
	assert.Error(t, err)
}

func TestLocalDevMiddleware(t *testing.T) {
	var got *UserClaims
	handler := LocalDevMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUserClaims(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "local-dev-user", got.UID)

	req = httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	req.Header.Set("X-Debug-Impersonate-User", "alice")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.UID)
}

func TestLocalDevMiddleware_PublicEndpointSkipsClaims(t *testing.T) {
	var hasClaims bool
	handler := LocalDevMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasClaims = GetUserClaims(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, hasClaims)
}
