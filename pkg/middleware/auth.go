package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cineclub/internal/data/entity"
	"cineclub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionFinder resolves a bearer token to a live session
type SessionFinder interface {
	FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error)
}

// UserFinder loads the session owner
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// RoleChecker answers role membership questions
type RoleChecker interface {
	HasRole(ctx context.Context, id uuid.UUID, role entity.UserRole) (bool, error)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthSession validates the bearer session token and puts the user id, role
// and token into the request context.
func AuthSession(sessions SessionFinder, users UserFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.With(zap.String("middleware", "auth"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			raw, ok := bearerToken(authHeader)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			token, err := uuid.Parse(raw)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			session, err := sessions.FindValidSession(r.Context(), token)
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if session == nil || !session.Active(time.Now()) {
				logger.Warn("Invalid or expired session", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			user, err := users.FindByID(r.Context(), session.UserID)
			if err != nil {
				logger.Error("Failed to load session user",
					zap.Error(err), zap.String("user_id", session.UserID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil || !user.IsActive {
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, user.Role)
			ctx = utils.SetTokenContext(ctx, raw)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin rejects users without the admin role. It must run after AuthSession.
func Admin(roles RoleChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// AuthSession already loaded the role for this request
			role, known := utils.GetRoleFromContext(r.Context())
			isAdmin := known && role == entity.RoleAdmin

			var err error
			if !known {
				isAdmin, err = roles.HasRole(r.Context(), userID, entity.RoleAdmin)
			}
			if err != nil {
				logger.Error("Admin check: failed to get role",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if !isAdmin {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
