package usecase

import (
	"time"

	"cineclub/internal/data/repository"
	"cineclub/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Movie    MovieService
	Review   ReviewService
	Identity IdentityProvider
}

// NewService builds every service. cache may be nil, usernames are then read
// straight from the user repository.
func NewService(repo *repository.Repository, config *utils.Config, loc *time.Location, cache UsernameCache, log *zap.Logger) *Service {
	identity := NewIdentityProvider(repo.User, log)
	if cache != nil {
		identity = NewCachedIdentityProvider(identity, cache, log)
	}

	return &Service{
		Auth:     NewAuthService(repo, config, log),
		User:     NewUserService(repo.User, log),
		Movie:    NewMovieService(repo, log),
		Review:   NewReviewService(repo, identity, loc, log),
		Identity: identity,
	}
}
