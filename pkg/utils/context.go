package utils

import (
	"context"

	"cineclub/internal/data/entity"

	"github.com/google/uuid"
)

type contextKey int

const (
	userIDKey contextKey = iota
	roleKey
	tokenKey
)

// SetUserContext stores the authenticated user for downstream handlers
func SetUserContext(ctx context.Context, userID uuid.UUID, role entity.UserRole) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// GetRoleFromContext reports false when no role was recorded for the request.
func GetRoleFromContext(ctx context.Context) (entity.UserRole, bool) {
	role, ok := ctx.Value(roleKey).(entity.UserRole)
	return role, ok && role != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// GetTokenFromContext returns the bearer session token of the request
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}
