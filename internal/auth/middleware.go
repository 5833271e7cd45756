package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const userClaimsKey contextKey = "user_claims"

func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// WithUserClaims is the exported version for testing purposes.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context.
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context.
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}

// Middleware verifies the Firebase bearer token on every request and attaches
// the resulting claims to the request context.
func Middleware(firebaseAuth *FirebaseAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthenticated(w, err.Error())
				return
			}

			claims, err := firebaseAuth.VerifyToken(r.Context(), token)
			if err != nil {
				unauthenticated(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware provides a mock user context for local development.
// X-Debug-Impersonate-User switches the identity; never enable in production.
func LocalDevMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		claims := &UserClaims{
			UID:         "local-dev-user",
			Email:       "dev@localhost",
			DisplayName: "Local Dev User",
			Verified:    true,
		}
		if impersonate := r.Header.Get("X-Debug-Impersonate-User"); impersonate != "" {
			claims = &UserClaims{
				UID:   impersonate,
				Email: impersonate + "@debug.local",
			}
		}

		next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), claims)))
	})
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication.
func isPublicEndpoint(path string) bool {
	switch path {
	case "/health", "/ping":
		return true
	}
	return false
}

func unauthenticated(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
