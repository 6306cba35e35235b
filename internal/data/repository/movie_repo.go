package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cineclub/internal/data/entity"
	"cineclub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MovieRepository interface {
	Create(ctx context.Context, movie *entity.Movie) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.MovieWithGenre, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindAll(ctx context.Context) ([]*entity.MovieWithGenre, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.MovieWithGenre, error)
	TopRated(ctx context.Context) ([]*entity.MovieRating, error)
	CountAll(ctx context.Context) (int64, error)
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

const movieColumns = `
	m.id, m.title, m.description, m.release_year, m.genre_id, m.created_at, g.name
`

func scanMovie(row pgx.Row) (*entity.MovieWithGenre, error) {
	var movie entity.MovieWithGenre
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.ReleaseYear,
		&movie.GenreID,
		&movie.CreatedAt,
		&movie.GenreName,
	)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) collect(rows pgx.Rows) ([]*entity.MovieWithGenre, error) {
	defer rows.Close()

	movies := make([]*entity.MovieWithGenre, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			r.log.Error("Failed to scan movie row", zap.Error(err))
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate movie rows: %w", err)
	}

	return movies, nil
}

func (r *movieRepository) Create(ctx context.Context, movie *entity.Movie) error {
	query := `
		INSERT INTO movies (id, title, description, release_year, genre_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Description,
		movie.ReleaseYear,
		movie.GenreID,
		movie.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create movie",
			zap.Error(err),
			zap.String("title", movie.Title),
		)
		return fmt.Errorf("create movie %s: %w", movie.Title, err)
	}

	return nil
}

func (r *movieRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.MovieWithGenre, error) {
	query := `SELECT` + movieColumns + `
		FROM movies m
		JOIN genres g ON g.id = m.genre_id
		WHERE m.id = $1
	`

	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find movie by ID",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return nil, fmt.Errorf("find movie by ID %s: %w", id.String(), err)
	}

	return movie, nil
}

func (r *movieRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		r.log.Error("Failed to check movie existence",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return false, fmt.Errorf("check movie %s exists: %w", id.String(), err)
	}

	return exists, nil
}

func (r *movieRepository) FindAll(ctx context.Context) ([]*entity.MovieWithGenre, error) {
	query := `SELECT` + movieColumns + `
		FROM movies m
		JOIN genres g ON g.id = m.genre_id
		ORDER BY m.title, m.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all movies", zap.Error(err))
		return nil, fmt.Errorf("find all movies: %w", err)
	}

	return r.collect(rows)
}

// Search matches term as a literal, case-insensitive substring of the title.
func (r *movieRepository) Search(ctx context.Context, term string, limit int) ([]*entity.MovieWithGenre, error) {
	query := `SELECT` + movieColumns + `
		FROM movies m
		JOIN genres g ON g.id = m.genre_id
		WHERE m.title ILIKE $1 ESCAPE '\'
		ORDER BY m.title, m.id
		LIMIT $2
	`

	pattern := "%" + EscapeLike(term) + "%"
	rows, err := r.db.Query(ctx, query, pattern, limit)
	if err != nil {
		r.log.Error("Failed to search movies",
			zap.Error(err),
			zap.String("term", term),
		)
		return nil, fmt.Errorf("search movies %q: %w", term, err)
	}

	return r.collect(rows)
}

// TopRated averages ratings per reviewed movie, counting a missing rating as zero.
func (r *movieRepository) TopRated(ctx context.Context) ([]*entity.MovieRating, error) {
	query := `
		SELECT m.id, m.title, m.release_year,
		       AVG(COALESCE(rv.rating, 0))::float8 AS rate
		FROM movies m
		JOIN reviews rv ON rv.movie_id = m.id
		GROUP BY m.id, m.title, m.release_year
		ORDER BY rate DESC, m.title
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to query top rated movies", zap.Error(err))
		return nil, fmt.Errorf("top rated movies: %w", err)
	}
	defer rows.Close()

	ratings := make([]*entity.MovieRating, 0)
	for rows.Next() {
		var rating entity.MovieRating
		if err := rows.Scan(&rating.MovieID, &rating.Title, &rating.ReleaseYear, &rating.Rate); err != nil {
			r.log.Error("Failed to scan rating row", zap.Error(err))
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	return ratings, nil
}

func (r *movieRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM movies`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count movies", zap.Error(err))
		return 0, fmt.Errorf("count movies: %w", err)
	}

	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike neutralises LIKE wildcards so term matches literally.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}
