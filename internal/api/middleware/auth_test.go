package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, roles []string) string {
	t.Helper()
	claims := IdentityClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func captureIdentity(captured *domain.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddleware(t *testing.T) {
	t.Run("resolves a valid bearer token", func(t *testing.T) {
		var got domain.Identity
		handler := Identity(testSecret)(captureIdentity(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42", []string{"member", "admin"}))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, got.Authenticated)
		assert.Equal(t, "42", got.UserID)
		assert.Equal(t, []string{"member", "admin"}, got.Roles)
	})

	t.Run("missing token yields a guest", func(t *testing.T) {
		var got domain.Identity
		handler := Identity(testSecret)(captureIdentity(&got))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, got.Authenticated)
	})

	t.Run("wrong signature yields a guest", func(t *testing.T) {
		var got domain.Identity
		handler := Identity(testSecret)(captureIdentity(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "42", nil))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, got.Authenticated)
	})

	t.Run("expired token yields a guest", func(t *testing.T) {
		claims := IdentityClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		var got domain.Identity
		handler := Identity(testSecret)(captureIdentity(&got))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, got.Authenticated)
	})

	t.Run("token without a subject yields a guest", func(t *testing.T) {
		var got domain.Identity
		handler := Identity(testSecret)(captureIdentity(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "", nil))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, got.Authenticated)
	})
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passes authenticated callers", func(t *testing.T) {
		handler := Identity(testSecret)(RequireAuth(ok))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42", nil))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects guests with 401", func(t *testing.T) {
		handler := Identity(testSecret)(RequireAuth(ok))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), domain.ErrCodeUnauthorized)
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passes holders of the role", func(t *testing.T) {
		handler := Identity(testSecret)(RequireRole("admin")(ok))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42", []string{"admin"}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("authenticated without the role is 403", func(t *testing.T) {
		handler := Identity(testSecret)(RequireRole("admin")(ok))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42", []string{"member"}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("guests are 401, not 403", func(t *testing.T) {
		handler := Identity(testSecret)(RequireRole("admin")(ok))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", ClientIP(req))
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.9")
		assert.Equal(t, "203.0.113.9", ClientIP(req))
	})

	t.Run("falls back to the remote address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.11:54321"
		assert.Equal(t, "203.0.113.11", ClientIP(req))
	})
}
