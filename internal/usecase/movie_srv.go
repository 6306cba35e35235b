package usecase

import (
	"context"
	"fmt"
	"strings"

	"cineclub/internal/data/repository"
	"cineclub/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchLimit caps the number of search results
const SearchLimit = 10

type MovieService interface {
	ListMovies(ctx context.Context) ([]response.MovieListItem, error)
	GetMovie(ctx context.Context, movieID string) (*response.MovieDetail, error)
	SearchMovies(ctx context.Context, query string) ([]response.MovieListItem, error)
	TopRated(ctx context.Context) ([]response.TopRatedMovie, error)
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMovieService(repo *repository.Repository, log *zap.Logger) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
	}
}

func (s *movieService) ListMovies(ctx context.Context) ([]response.MovieListItem, error) {
	movies, err := s.repo.Movie.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list movies", zap.Error(err))
		return nil, fmt.Errorf("list movies: %w", err)
	}

	items := make([]response.MovieListItem, len(movies))
	for i, movie := range movies {
		items[i] = response.MovieToListItem(movie)
	}

	return items, nil
}

func (s *movieService) GetMovie(ctx context.Context, movieID string) (*response.MovieDetail, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("movie %q: %w", movieID, ErrMovieNotFound)
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get movie", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie %s: %w", movieID, ErrMovieNotFound)
	}

	detail := response.MovieToDetail(movie)
	return &detail, nil
}

func (s *movieService) SearchMovies(ctx context.Context, query string) ([]response.MovieListItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []response.MovieListItem{}, nil
	}

	movies, err := s.repo.Movie.Search(ctx, query, SearchLimit)
	if err != nil {
		s.log.Error("Failed to search movies", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("search movies: %w", err)
	}

	if len(movies) > SearchLimit {
		movies = movies[:SearchLimit]
	}

	items := make([]response.MovieListItem, len(movies))
	for i, movie := range movies {
		items[i] = response.MovieToListItem(movie)
	}

	return items, nil
}

// TopRated lists reviewed movies by mean rating. Reviews without a rating
// count as zero, so they pull the mean down instead of being skipped.
func (s *movieService) TopRated(ctx context.Context) ([]response.TopRatedMovie, error) {
	ratings, err := s.repo.Movie.TopRated(ctx)
	if err != nil {
		s.log.Error("Failed to get top rated movies", zap.Error(err))
		return nil, fmt.Errorf("top rated: %w", err)
	}

	items := make([]response.TopRatedMovie, len(ratings))
	for i, rating := range ratings {
		items[i] = response.RatingToTopRated(rating)
	}

	return items, nil
}
