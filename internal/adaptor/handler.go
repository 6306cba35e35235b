package adaptor

import (
	"cineclub/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Movie     *MovieHandler
	Review    *ReviewHandler
	ReviewAPI *ReviewAPIHandler
	Health    *HealthHandler
}

func NewHandler(service *usecase.Service, db Pinger, log *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(service.Auth, log),
		User:      NewUserHandler(service.User, log),
		Movie:     NewMovieHandler(service.Movie, log),
		Review:    NewReviewHandler(service.Review, log),
		ReviewAPI: NewReviewAPIHandler(service.Review, log),
		Health:    NewHealthHandler(db, log),
	}
}
