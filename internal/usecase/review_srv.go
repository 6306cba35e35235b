package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cineclub/internal/data/entity"
	"cineclub/internal/data/repository"
	"cineclub/internal/dto/request"
	"cineclub/internal/dto/response"
	"cineclub/pkg/metrics"
	"cineclub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	ListMovieReviews(ctx context.Context, movieID string) ([]response.MovieReview, error)
	ListReviews(ctx context.Context) ([]response.ReviewResponse, error)
	GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error)
	GetReviewForEdit(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error)
	GetReviewForDelete(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error)
	CreateReview(ctx context.Context, actorID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	UpdateReview(ctx context.Context, actorID uuid.UUID, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, actorID uuid.UUID, reviewID string) error
}

type reviewService struct {
	repo     *repository.Repository
	identity IdentityProvider
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewReviewService(
	repo *repository.Repository,
	identity IdentityProvider,
	loc *time.Location,
	log *zap.Logger,
) ReviewService {
	return &reviewService{
		repo:     repo,
		identity: identity,
		loc:      loc,
		now:      time.Now,
		log:      log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) ListMovieReviews(ctx context.Context, movieID string) ([]response.MovieReview, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("movie %q: %w", movieID, ErrMovieNotFound)
	}

	exists, err := s.repo.Movie.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list movie reviews: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrMovieNotFound)
	}

	reviews, err := s.repo.Review.FindByMovieID(ctx, id)
	if err != nil {
		s.log.Error("Failed to list movie reviews", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("list movie reviews: %w", err)
	}

	names := s.newNameResolver()
	items := make([]response.MovieReview, len(reviews))
	for i, review := range reviews {
		username, err := names.resolve(ctx, review.UserID)
		if err != nil {
			return nil, err
		}
		items[i] = response.MovieReviewToResponse(review, username, s.loc)
	}

	return items, nil
}

func (s *reviewService) ListReviews(ctx context.Context) ([]response.ReviewResponse, error) {
	reviews, err := s.repo.Review.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list reviews", zap.Error(err))
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	names := s.newNameResolver()
	items := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		username, err := names.resolve(ctx, review.UserID)
		if err != nil {
			return nil, err
		}
		items[i] = response.ReviewToResponse(&review.Review, review.MovieTitle, username, s.loc)
	}

	return items, nil
}

func (s *reviewService) GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, review)
}

func (s *reviewService) GetReviewForEdit(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error) {
	return s.loadAuthorized(ctx, actorID, reviewID)
}

func (s *reviewService) GetReviewForDelete(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error) {
	return s.loadAuthorized(ctx, actorID, reviewID)
}

func (s *reviewService) CreateReview(ctx context.Context, actorID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	movieID, err := uuid.Parse(req.MovieID)
	if err != nil {
		return nil, newValidationError(map[string]string{"movieId": "Must be a valid UUID"})
	}

	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", req.MovieID, ErrMovieNotFound)
	}

	existing, err := s.repo.Review.FindByUserAndMovie(ctx, actorID, movieID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	isAdmin := false
	if existing != nil {
		if isAdmin, err = s.identity.HasRole(ctx, actorID, entity.RoleAdmin); err != nil {
			return nil, fmt.Errorf("check admin role: %w", err)
		}
		if !isAdmin {
			return nil, s.rejectDuplicate(actorID, req.MovieID)
		}
	}

	review := &entity.Review{
		ID:           uuid.New(),
		Content:      req.Content,
		Rating:       req.Rating,
		CreatedAtUtc: s.now().UTC(),
		UserID:       actorID,
		MovieID:      movieID,
		Version:      1,
	}

	if isAdmin {
		err = s.repo.Review.Create(ctx, review)
	} else {
		// the lookup above can race with a concurrent create
		err = s.repo.Review.CreateFirst(ctx, review)
		if errors.Is(err, repository.ErrDuplicate) {
			if isAdmin, err = s.identity.HasRole(ctx, actorID, entity.RoleAdmin); err != nil {
				return nil, fmt.Errorf("check admin role: %w", err)
			}
			if !isAdmin {
				return nil, s.rejectDuplicate(actorID, req.MovieID)
			}
			err = s.repo.Review.Create(ctx, review)
		}
	}
	if err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", actorID.String()),
			zap.String("movie_id", req.MovieID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	metrics.RecordReviewMutation("create", "ok")
	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", actorID.String()),
		zap.String("movie_id", req.MovieID),
	)

	return s.toResponse(ctx, &entity.ReviewWithMovie{Review: *review, MovieTitle: movie.Title})
}

func (s *reviewService) UpdateReview(ctx context.Context, actorID uuid.UUID, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	// a body addressing another review than the path is treated as missing
	if req.ID != "" {
		bodyID, err := uuid.Parse(req.ID)
		if err != nil || bodyID != review.ID {
			return nil, fmt.Errorf("review %s: %w", req.ID, ErrNotFound)
		}
	}

	if err := s.authorize(ctx, actorID, &review.Review); err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update review validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	if req.Version != nil {
		review.Version = *req.Version
	}
	updatedAt := s.now().UTC()
	review.Content = req.Content
	review.Rating = req.Rating
	review.UpdatedAtUtc = &updatedAt

	err = s.repo.Review.Update(ctx, &review.Review)
	if errors.Is(err, repository.ErrVersionConflict) {
		return nil, s.resolveConflict(ctx, review.ID)
	}
	if err != nil {
		s.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, fmt.Errorf("update review: %w", err)
	}

	metrics.RecordReviewMutation("update", "ok")
	s.log.Info("Review updated",
		zap.String("review_id", review.ID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Int("version", review.Version),
	)

	return s.toResponse(ctx, review)
}

// DeleteReview removes a review the actor owns, or any review for an admin.
// A missing review is reported as ErrNotFound.
func (s *reviewService) DeleteReview(ctx context.Context, actorID uuid.UUID, reviewID string) error {
	if actorID == uuid.Nil {
		return ErrUnauthenticated
	}

	id, err := uuid.Parse(reviewID)
	if err != nil {
		return fmt.Errorf("review %q: %w", reviewID, ErrNotFound)
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if review == nil {
		metrics.RecordReviewMutation("delete", "not_found")
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}

	if err := s.authorize(ctx, actorID, review); err != nil {
		return err
	}

	err = s.repo.Review.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordReviewMutation("delete", "not_found")
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}
	if err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete review: %w", err)
	}

	metrics.RecordReviewMutation("delete", "ok")
	s.log.Info("Review deleted",
		zap.String("review_id", reviewID),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) rejectDuplicate(actorID uuid.UUID, movieID string) error {
	s.log.Info("Duplicate review rejected",
		zap.String("user_id", actorID.String()),
		zap.String("movie_id", movieID),
	)
	metrics.RecordReviewMutation("create", "duplicate")
	return ErrAlreadyReviewed
}

func (s *reviewService) load(ctx context.Context, reviewID string) (*entity.ReviewWithMovie, error) {
	id, err := uuid.Parse(reviewID)
	if err != nil {
		return nil, fmt.Errorf("review %q: %w", reviewID, ErrNotFound)
	}

	review, err := s.repo.Review.FindWithMovie(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	if review == nil {
		return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}

	return review, nil
}

func (s *reviewService) loadAuthorized(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, actorID, &review.Review); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, review)
}

// authorize allows the review owner and administrators.
func (s *reviewService) authorize(ctx context.Context, actorID uuid.UUID, review *entity.Review) error {
	if review.UserID == actorID {
		return nil
	}

	isAdmin, err := s.identity.HasRole(ctx, actorID, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("check admin role: %w", err)
	}
	if !isAdmin {
		metrics.RecordReviewMutation("authorize", "forbidden")
		s.log.Warn("Review access denied",
			zap.String("review_id", review.ID.String()),
			zap.String("actor_id", actorID.String()),
		)
		return ErrForbidden
	}

	return nil
}

// a lost version race is not found if the row vanished, a conflict otherwise
func (s *reviewService) resolveConflict(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.Review.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("recheck review: %w", err)
	}
	if !exists {
		metrics.RecordReviewMutation("update", "not_found")
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}

	metrics.RecordReviewMutation("update", "conflict")
	s.log.Warn("Review edit conflict", zap.String("review_id", id.String()))
	return ErrEditConflict
}

func (s *reviewService) toResponse(ctx context.Context, review *entity.ReviewWithMovie) (*response.ReviewResponse, error) {
	username, _, err := s.identity.UsernameFor(ctx, review.UserID)
	if err != nil {
		s.log.Error("Failed to resolve username", zap.Error(err), zap.String("user_id", review.UserID.String()))
		return nil, fmt.Errorf("resolve username: %w", err)
	}

	resp := response.ReviewToResponse(&review.Review, review.MovieTitle, username, s.loc)
	return &resp, nil
}

// nameResolver memoises username lookups for one listing.
type nameResolver struct {
	identity IdentityProvider
	log      *zap.Logger
	seen     map[uuid.UUID]string
}

func (s *reviewService) newNameResolver() *nameResolver {
	return &nameResolver{identity: s.identity, log: s.log, seen: make(map[uuid.UUID]string)}
}

func (n *nameResolver) resolve(ctx context.Context, id uuid.UUID) (string, error) {
	if name, ok := n.seen[id]; ok {
		return name, nil
	}

	name, _, err := n.identity.UsernameFor(ctx, id)
	if err != nil {
		n.log.Error("Failed to resolve username", zap.Error(err), zap.String("user_id", id.String()))
		return "", fmt.Errorf("resolve username: %w", err)
	}

	n.seen[id] = name
	return name, nil
}
