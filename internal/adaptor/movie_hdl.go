package adaptor

import (
	"errors"
	"net/http"

	"cineclub/internal/usecase"
	"cineclub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MovieHandler serves the public movie API. Bodies are plain JSON without
// the response envelope.
type MovieHandler struct {
	service usecase.MovieService
	log     *zap.Logger
}

func NewMovieHandler(service usecase.MovieService, log *zap.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		log:     log.With(zap.String("handler", "movie")),
	}
}

// ListMovies handles GET /api/movies
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.ListMovies(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list movies")
		return
	}

	utils.WriteJSON(w, http.StatusOK, movies)
}

// GetMovie handles GET /api/movies/{id}
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.service.GetMovie(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get movie")
		return
	}

	utils.WriteJSON(w, http.StatusOK, movie)
}

// SearchMovies handles GET /api/movies/search?q=
func (h *MovieHandler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.SearchMovies(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleServiceError(w, err, "search movies")
		return
	}

	utils.WriteJSON(w, http.StatusOK, movies)
}

// TopRated handles GET /api/movies/top-rated
func (h *MovieHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.TopRated(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "top rated")
		return
	}

	utils.WriteJSON(w, http.StatusOK, movies)
}

func (h *MovieHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.MessageResponse{Message: "Movie not found"})

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.MessageResponse{Message: "Internal server error"})
	}
}
