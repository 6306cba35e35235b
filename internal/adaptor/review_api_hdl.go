package adaptor

import (
	"errors"
	"net/http"

	"cineclub/internal/usecase"
	"cineclub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewAPIHandler serves the read-only review feed of a movie.
type ReviewAPIHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewAPIHandler(service usecase.ReviewService, log *zap.Logger) *ReviewAPIHandler {
	return &ReviewAPIHandler{
		service: service,
		log:     log.With(zap.String("handler", "review_api")),
	}
}

// GetMovieReviews handles GET /api/reviews/{movieId}
func (h *ReviewAPIHandler) GetMovieReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListMovieReviews(r.Context(), chi.URLParam(r, "movieId"))
	if errors.Is(err, usecase.ErrNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.MessageResponse{Message: "Movie not found"})
		return
	}
	if err != nil {
		h.log.Error("Failed to get movie reviews", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.MessageResponse{Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, reviews)
}
