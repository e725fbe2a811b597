package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kraft-solutions/kraftchat/internal/api"
	"github.com/kraft-solutions/kraftchat/internal/domain"
)

const IdentityKey contextKey = "identity"

// IdentityClaims is the token shape the identity provider issues: the
// subject is the user id, roles carries the user's role names.
type IdentityClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity resolves the caller's identity from an optional bearer token.
// Requests without a token (or with an invalid one) proceed as guests;
// route-level RequireAuth decides whether that is acceptable.
func Identity(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := domain.Guest

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if parsed := parseToken(token, secret); parsed != nil {
					identity = *parsed
				}
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(token, secret string) *domain.Identity {
	claims := &IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil
	}
	return &domain.Identity{
		Authenticated: true,
		UserID:        claims.Subject,
		Roles:         claims.Roles,
	}
}

// RequireAuth rejects unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())
		if !identity.Authenticated {
			api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers that do not hold the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if !identity.Authenticated {
				api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "authentication required")
				return
			}
			if !identity.HasRole(role) {
				api.Error(w, http.StatusForbidden, domain.ErrCodeForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity returns the resolved caller identity from context.
func GetIdentity(ctx context.Context) domain.Identity {
	identity, _ := ctx.Value(IdentityKey).(domain.Identity)
	return identity
}
