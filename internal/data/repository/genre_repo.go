package repository

import (
	"context"
	"errors"
	"fmt"

	"cineclub/internal/data/entity"
	"cineclub/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	FindByName(ctx context.Context, name string) (*entity.Genre, error)
}

type genreRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGenreRepository(db database.PgxIface, log *zap.Logger) GenreRepository {
	return &genreRepository{
		db:  db,
		log: log.With(zap.String("repository", "genre")),
	}
}

func (r *genreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	query := `INSERT INTO genres (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, genre.ID, genre.Name, genre.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create genre", zap.Error(err), zap.String("name", genre.Name))
		return fmt.Errorf("create genre %s: %w", genre.Name, err)
	}

	return nil
}

func (r *genreRepository) FindByName(ctx context.Context, name string) (*entity.Genre, error) {
	query := `SELECT id, name, created_at FROM genres WHERE name = $1`

	var genre entity.Genre
	err := r.db.QueryRow(ctx, query, name).Scan(&genre.ID, &genre.Name, &genre.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find genre by name", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("find genre %s: %w", name, err)
	}

	return &genre, nil
}
