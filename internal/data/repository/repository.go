package repository

import (
	"cineclub/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Genre   GenreRepository
	Movie   MovieRepository
	Review  ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Genre:   NewGenreRepository(db, log),
		Movie:   NewMovieRepository(db, log),
		Review:  NewReviewRepository(db, log),
	}
}
