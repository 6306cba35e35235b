package wire

import (
	"net/http"

	"cineclub/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	reviewAPI *adaptor.ReviewAPIHandler,
	auth func(http.Handler) http.Handler,
	limit func(http.Handler) http.Handler,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/reviews/{movieId} - reviews of one movie, newest first
	r.Get("/api/reviews/{movieId}", reviewAPI.GetMovieReviews)

	r.Get("/review", reviewHandler.Index)
	r.Get("/review/details/{id}", reviewHandler.Details)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.With(limit).Post("/review/create", reviewHandler.Create)

		r.Get("/review/edit/{id}", reviewHandler.EditForm)
		r.With(limit).Post("/review/edit/{id}", reviewHandler.Edit)

		r.Get("/review/delete/{id}", reviewHandler.DeleteForm)
		r.With(limit).Post("/review/delete/{id}", reviewHandler.Delete)
	})
}
