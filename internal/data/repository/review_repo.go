package repository

import (
	"context"
	"errors"
	"fmt"

	"cineclub/internal/data/entity"
	"cineclub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	// CreateFirst inserts review unless its author already reviewed the
	// movie, returning ErrDuplicate in that case. Concurrent calls for the
	// same author and movie are serialized.
	CreateFirst(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindWithMovie(ctx context.Context, id uuid.UUID) (*entity.ReviewWithMovie, error)
	FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Review, error)
	FindAll(ctx context.Context) ([]*entity.ReviewWithMovie, error)
	FindByUserAndMovie(ctx context.Context, userID, movieID uuid.UUID) (*entity.Review, error)
	// Update writes content, rating and updated_at_utc only if the stored
	// version still equals review.Version, then bumps review.Version.
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `
	rv.id, rv.content, rv.rating, rv.created_at_utc, rv.updated_at_utc,
	rv.user_id, rv.movie_id, rv.version
`

func reviewFields(review *entity.Review) []any {
	return []any{
		&review.ID,
		&review.Content,
		&review.Rating,
		&review.CreatedAtUtc,
		&review.UpdatedAtUtc,
		&review.UserID,
		&review.MovieID,
		&review.Version,
	}
}

const insertReview = `
	INSERT INTO reviews (id, content, rating, created_at_utc, user_id, movie_id, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	_, err := r.db.Exec(ctx, insertReview,
		review.ID,
		review.Content,
		review.Rating,
		review.CreatedAtUtc.UTC(),
		review.UserID,
		review.MovieID,
		review.Version,
	)

	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("movie_id", review.MovieID.String()),
		)
		return fmt.Errorf("create review for movie %s by user %s: %w",
			review.MovieID.String(), review.UserID.String(), err)
	}

	return nil
}

func (r *reviewRepository) CreateFirst(ctx context.Context, review *entity.Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin review insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// released on commit or rollback
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || $2::text))`,
		review.UserID, review.MovieID)
	if err != nil {
		return fmt.Errorf("lock review author %s: %w", review.UserID.String(), err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND movie_id = $2)`,
		review.UserID, review.MovieID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check review by user %s and movie %s: %w",
			review.UserID.String(), review.MovieID.String(), err)
	}
	if exists {
		return ErrDuplicate
	}

	_, err = tx.Exec(ctx, insertReview,
		review.ID,
		review.Content,
		review.Rating,
		review.CreatedAtUtc.UTC(),
		review.UserID,
		review.MovieID,
		review.Version,
	)
	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("movie_id", review.MovieID.String()),
		)
		return fmt.Errorf("create review for movie %s by user %s: %w",
			review.MovieID.String(), review.UserID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review insert: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `SELECT` + reviewColumns + `FROM reviews rv WHERE rv.id = $1`

	var review entity.Review
	err := r.db.QueryRow(ctx, query, id).Scan(reviewFields(&review)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) FindWithMovie(ctx context.Context, id uuid.UUID) (*entity.ReviewWithMovie, error) {
	query := `SELECT` + reviewColumns + `, m.title
		FROM reviews rv
		JOIN movies m ON m.id = rv.movie_id
		WHERE rv.id = $1
	`

	var review entity.ReviewWithMovie
	err := r.db.QueryRow(ctx, query, id).Scan(append(reviewFields(&review.Review), &review.MovieTitle)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review with movie",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review %s with movie: %w", id.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Review, error) {
	query := `SELECT` + reviewColumns + `
		FROM reviews rv
		WHERE rv.movie_id = $1
		ORDER BY rv.created_at_utc DESC, rv.id
	`

	rows, err := r.db.Query(ctx, query, movieID)
	if err != nil {
		r.log.Error("Failed to find reviews by movie ID",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return nil, fmt.Errorf("find reviews by movie ID %s: %w", movieID.String(), err)
	}
	defer rows.Close()

	reviews := make([]*entity.Review, 0)
	for rows.Next() {
		var review entity.Review
		if err := rows.Scan(reviewFields(&review)...); err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &review)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) FindAll(ctx context.Context) ([]*entity.ReviewWithMovie, error) {
	query := `SELECT` + reviewColumns + `, m.title
		FROM reviews rv
		JOIN movies m ON m.id = rv.movie_id
		ORDER BY rv.created_at_utc DESC, rv.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all reviews", zap.Error(err))
		return nil, fmt.Errorf("find all reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*entity.ReviewWithMovie, 0)
	for rows.Next() {
		var review entity.ReviewWithMovie
		if err := rows.Scan(append(reviewFields(&review.Review), &review.MovieTitle)...); err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &review)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) FindByUserAndMovie(ctx context.Context, userID, movieID uuid.UUID) (*entity.Review, error) {
	query := `SELECT` + reviewColumns + `
		FROM reviews rv
		WHERE rv.user_id = $1 AND rv.movie_id = $2
		ORDER BY rv.created_at_utc
		LIMIT 1
	`

	var review entity.Review
	err := r.db.QueryRow(ctx, query, userID, movieID).Scan(reviewFields(&review)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and movie",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("movie_id", movieID.String()),
		)
		return nil, fmt.Errorf("find review by user %s and movie %s: %w",
			userID.String(), movieID.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	query := `
		UPDATE reviews
		SET content = $3, rating = $4, updated_at_utc = $5, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var updatedAt any
	if review.UpdatedAtUtc != nil {
		updatedAt = review.UpdatedAtUtc.UTC()
	}

	err := r.db.QueryRow(ctx, query,
		review.ID,
		review.Version,
		review.Content,
		review.Rating,
		updatedAt,
	).Scan(&review.Version)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	if err != nil {
		r.log.Error("Failed to update review",
			zap.Error(err),
			zap.String("review_id", review.ID.String()),
		)
		return fmt.Errorf("update review %s: %w", review.ID.String(), err)
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

func (r *reviewRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		r.log.Error("Failed to check review existence",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return false, fmt.Errorf("check review %s exists: %w", id.String(), err)
	}

	return exists, nil
}
