package adaptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"cineclub/internal/data/entity"
	"cineclub/internal/dto/request"
	"cineclub/internal/dto/response"
	"cineclub/pkg/utils"

	"github.com/google/uuid"
)

type stubMovieService struct {
	list   []response.MovieListItem
	detail *response.MovieDetail
	err    error
	query  string
}

func (s *stubMovieService) ListMovies(ctx context.Context) ([]response.MovieListItem, error) {
	return s.list, s.err
}

func (s *stubMovieService) GetMovie(ctx context.Context, movieID string) (*response.MovieDetail, error) {
	return s.detail, s.err
}

func (s *stubMovieService) SearchMovies(ctx context.Context, query string) ([]response.MovieListItem, error) {
	s.query = query
	return s.list, s.err
}

func (s *stubMovieService) TopRated(ctx context.Context) ([]response.TopRatedMovie, error) {
	return nil, s.err
}

// stubReviewService records the last call and returns err for every method.
type stubReviewService struct {
	err error

	actor     uuid.UUID
	reviewID  string
	createReq *request.CreateReviewRequest
	updateReq *request.UpdateReviewRequest
	reviews   []response.MovieReview
}

func (s *stubReviewService) result() (*response.ReviewResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &response.ReviewResponse{ID: uuid.NewString(), Version: 1}, nil
}

func (s *stubReviewService) ListMovieReviews(ctx context.Context, movieID string) ([]response.MovieReview, error) {
	s.reviewID = movieID
	return s.reviews, s.err
}

func (s *stubReviewService) ListReviews(ctx context.Context) ([]response.ReviewResponse, error) {
	return nil, s.err
}

func (s *stubReviewService) GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error) {
	s.reviewID = reviewID
	return s.result()
}

func (s *stubReviewService) GetReviewForEdit(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error) {
	s.actor, s.reviewID = actorID, reviewID
	return s.result()
}

func (s *stubReviewService) GetReviewForDelete(ctx context.Context, actorID uuid.UUID, reviewID string) (*response.ReviewResponse, error) {
	s.actor, s.reviewID = actorID, reviewID
	return s.result()
}

func (s *stubReviewService) CreateReview(ctx context.Context, actorID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	s.actor, s.createReq = actorID, req
	return s.result()
}

func (s *stubReviewService) UpdateReview(ctx context.Context, actorID uuid.UUID, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	s.actor, s.reviewID, s.updateReq = actorID, reviewID, req
	return s.result()
}

func (s *stubReviewService) DeleteReview(ctx context.Context, actorID uuid.UUID, reviewID string) error {
	s.actor, s.reviewID = actorID, reviewID
	return s.err
}

func newRequest(method, target, contentType, body string, user uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != uuid.Nil {
		req = req.WithContext(utils.SetUserContext(req.Context(), user, entity.RoleMember))
	}
	return req
}
