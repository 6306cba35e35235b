package wire

import (
	"net/http"

	"cineclub/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	auth func(http.Handler) http.Handler,
	limit func(http.Handler) http.Handler,
) {
	// ==================== PUBLIC ROUTES ====================
	r.With(limit).Post("/api/register", authHandler.Register)
	r.With(limit).Post("/api/login", authHandler.Login)

	// ==================== PROTECTED ROUTES ====================
	r.With(auth).Post("/api/logout", authHandler.Logout)
}
