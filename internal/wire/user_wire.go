package wire

import (
	"net/http"

	"cineclub/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures profile and admin user listing routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	auth func(http.Handler) http.Handler,
	admin func(http.Handler) http.Handler,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.With(auth).Get("/api/user/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.With(auth, admin).Get("/api/admin/users", userHandler.GetAllUsers) // ?page=1&per_page=10
}
