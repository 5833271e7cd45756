package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when no identity is attached to the context.
var ErrUnauthenticated = errors.New("user not authenticated")

// ErrPermissionDenied is returned when a caller addresses another user's data.
var ErrPermissionDenied = errors.New("cannot access another user's resources")

// RequireAuth extracts user claims from context or returns ErrUnauthenticated.
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// RequireUserAccess verifies the authenticated user matches the requested
// user ID. An empty requestedUserID defaults to the caller's own data.
func RequireUserAccess(ctx context.Context, requestedUserID string) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if requestedUserID != "" && requestedUserID != claims.UID {
		return nil, fmt.Errorf("user %s: %w", requestedUserID, ErrPermissionDenied)
	}

	return claims, nil
}
