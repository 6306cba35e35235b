package adaptor

import (
	"errors"
	"net/http"

	"cineclub/internal/dto/request"
	"cineclub/internal/usecase"
	"cineclub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewHandler is the review management surface. It accepts JSON or
// url-encoded form bodies and answers with the standard envelope.
type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// Index handles GET /review
func (h *ReviewHandler) Index(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListReviews(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list reviews")
		return
	}

	utils.ResponseSuccess(w, "Reviews retrieved successfully", reviews)
}

// Details handles GET /review/details/{id}
func (h *ReviewHandler) Details(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get review")
		return
	}

	utils.ResponseSuccess(w, "Review retrieved successfully", review)
}

// Create handles POST /review/create (protected)
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReviewRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", err.Error())
		return
	}

	review, err := h.service.CreateReview(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "create review")
		return
	}

	utils.ResponseCreated(w, "Review created successfully", review)
}

// EditForm handles GET /review/edit/{id} (owner or admin)
func (h *ReviewHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	review, err := h.service.GetReviewForEdit(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "load review for edit")
		return
	}

	utils.ResponseSuccess(w, "Review retrieved successfully", review)
}

// Edit handles POST /review/edit/{id} (owner or admin)
func (h *ReviewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateReviewRequest
	if err := utils.DecodeRequest(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", err.Error())
		return
	}

	review, err := h.service.UpdateReview(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update review")
		return
	}

	utils.ResponseSuccess(w, "Review updated successfully", review)
}

// DeleteForm handles GET /review/delete/{id} (owner or admin)
func (h *ReviewHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	review, err := h.service.GetReviewForDelete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "load review for delete")
		return
	}

	utils.ResponseSuccess(w, "Confirm deletion of this review", review)
}

// Delete handles POST /review/delete/{id} (owner or admin)
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteReview(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "Review deleted successfully", nil)
}

// handleServiceError maps service errors to envelope responses
func (h *ReviewHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.log.Warn(operation+" validation failed", zap.Any("fields", validationErr.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrAlreadyReviewed):
		h.log.Warn(operation+" failed - already reviewed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrMovieNotFound):
		h.log.Warn(operation+" failed - movie not found", zap.Error(err))
		utils.ResponseNotFound(w, "Movie not found")

	case errors.Is(err, usecase.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Review not found")

	case errors.Is(err, usecase.ErrUnauthenticated):
		utils.ResponseUnauthorized(w, "Authentication required")

	case errors.Is(err, usecase.ErrForbidden):
		h.log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "You can only change your own reviews")

	case errors.Is(err, usecase.ErrEditConflict):
		h.log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
