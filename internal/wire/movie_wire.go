package wire

import (
	"cineclub/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireMovie(r chi.Router, movieHandler *adaptor.MovieHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/movies", func(r chi.Router) {
		r.Get("/", movieHandler.ListMovies)
		r.Get("/search", movieHandler.SearchMovies) // ?q=
		r.Get("/top-rated", movieHandler.TopRated)  // average rating, best first
		r.Get("/{id}", movieHandler.GetMovie)
	})
}
