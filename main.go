// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"cineclub/cmd"
	"cineclub/internal/data/repository"
	"cineclub/internal/data/seed"
	"cineclub/internal/usecase"
	"cineclub/internal/wire"
	"cineclub/pkg/cache"
	"cineclub/pkg/database"
	"cineclub/pkg/metrics"
	"cineclub/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := utils.LoadDisplayLocation(config.App.Timezone)
	if err != nil {
		logger.Fatal("Invalid APP_TIMEZONE", zap.String("timezone", config.App.Timezone), zap.Error(err))
	}

	if config.Bootstrap.MigrateOnStart {
		if err := database.Migrate(config.Database.DSN(), logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if err := metrics.RegisterPoolStats(prometheus.DefaultRegisterer, db.Stat); err != nil {
		logger.Warn("Failed to register pool metrics", zap.Error(err))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	if config.Bootstrap.SeedOnStart {
		if err := seed.EnsurePopulated(ctx, repos, config.Bootstrap, logger); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	var usernames usecase.UsernameCache
	if rdb := cache.NewRedisClient(ctx, config.Redis, logger); rdb != nil {
		defer rdb.Close()
		usernames = cache.NewUsernameCache(rdb, config.Redis.UsernameTTL)
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, loc, usernames, db, logger)

	go cmd.RunSessionCleanup(ctx, app.Service.Auth, config.Session.CleanupInterval, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
	logger.Info("Server stopped")
}
