// internal/wire/wire.go
package wire

import (
	"time"

	"cineclub/internal/adaptor"
	"cineclub/internal/data/repository"
	"cineclub/internal/usecase"
	"cineclub/pkg/middleware"
	"cineclub/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the wired router and the services background jobs need
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes. cache may be nil.
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	loc *time.Location,
	cache usecase.UsernameCache,
	db adaptor.Pinger,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, loc, cache, logger)
	handler := adaptor.NewHandler(service, db, logger)

	router := setupRouter(handler, repo, service, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	service *usecase.Service,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(config.HTTP.CORSAllowedOrigins))
	if config.App.RequestTimeout > 0 {
		r.Use(chimw.Timeout(config.App.RequestTimeout))
	}

	auth := middleware.AuthSession(repo.Session, repo.User, logger)
	limit := middleware.RateLimit(config.HTTP.RateLimitRequests, config.HTTP.RateLimitWindow)

	wireAuth(r, handler.Auth, auth, limit)
	wireUser(r, handler.User, auth, middleware.Admin(service.Identity, logger))
	wireMovie(r, handler.Movie)
	wireReview(r, handler.Review, handler.ReviewAPI, auth, limit)

	r.Get("/health", handler.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
