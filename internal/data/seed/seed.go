// Package seed fills an empty database with reference genres and movies and
// makes sure an administrator account exists.
package seed

import (
	"context"
	"fmt"
	"time"

	"cineclub/internal/data/entity"
	"cineclub/internal/data/repository"
	"cineclub/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type movieSeed struct {
	Title       string
	Description string
	Year        int
	Genre       string
}

var genres = []string{"Drama", "Comedy", "Science Fiction", "Crime", "Animation"}

var movies = []movieSeed{
	{"The Shawshank Redemption", "Two imprisoned men bond over a number of years.", 1994, "Drama"},
	{"Kış Uykusu", "A retired actor runs a small hotel in Cappadocia.", 2014, "Drama"},
	{"Babam ve Oğlum", "A father and son reconcile in an Aegean village.", 2005, "Drama"},
	{"G.O.R.A.", "A carpet salesman is abducted by aliens.", 2004, "Comedy"},
	{"Inception", "A thief steals secrets through dream-sharing technology.", 2010, "Science Fiction"},
	{"Interstellar", "Explorers travel through a wormhole in space.", 2014, "Science Fiction"},
	{"The Godfather", "The aging patriarch of a crime dynasty transfers control to his son.", 1972, "Crime"},
	{"Spirited Away", "A girl wanders into a world ruled by spirits.", 2001, "Animation"},
}

// EnsurePopulated seeds reference data when the movie table is empty and
// makes sure the configured admin account exists with the admin role. An
// existing account of that name keeps its password and is promoted.
func EnsurePopulated(ctx context.Context, repo *repository.Repository, cfg utils.BootstrapConfig, log *zap.Logger) error {
	log = log.With(zap.String("component", "seed"))

	count, err := repo.Movie.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("count movies: %w", err)
	}

	if count == 0 {
		if err := seedCatalog(ctx, repo); err != nil {
			return err
		}
		log.Info("Seeded movie catalog", zap.Int("genres", len(genres)), zap.Int("movies", len(movies)))
	}

	return ensureAdmin(ctx, repo.User, cfg, log)
}

func seedCatalog(ctx context.Context, repo *repository.Repository) error {
	now := time.Now().UTC()
	genreIDs := make(map[string]uuid.UUID, len(genres))

	for _, name := range genres {
		existing, err := repo.Genre.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			genreIDs[name] = existing.ID
			continue
		}

		genre := &entity.Genre{
			Record: entity.NewRecord(now),
			Name:   name,
		}
		if err := repo.Genre.Create(ctx, genre); err != nil {
			return err
		}
		genreIDs[name] = genre.ID
	}

	for _, m := range movies {
		description := m.Description
		movie := &entity.Movie{
			Record:      entity.NewRecord(now),
			Title:       m.Title,
			Description: &description,
			ReleaseYear: m.Year,
			GenreID:     genreIDs[m.Genre],
		}
		if err := repo.Movie.Create(ctx, movie); err != nil {
			return err
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, users repository.UserRepository, cfg utils.BootstrapConfig, log *zap.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Warn("Admin seed skipped, SEED_ADMIN_USERNAME or SEED_ADMIN_PASSWORD is empty")
		return nil
	}

	existing, err := users.FindByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Role == entity.RoleAdmin {
			return nil
		}
		existing.Role = entity.RoleAdmin
		existing.UpdatedAt = time.Now().UTC()
		if err := users.Update(ctx, existing); err != nil {
			return fmt.Errorf("promote %s to admin: %w", existing.Username, err)
		}
		log.Info("Promoted existing account to admin", zap.String("username", existing.Username))
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &entity.User{
		Audited:      entity.NewAudited(now),
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Info("Seeded admin account", zap.String("username", admin.Username))
	return nil
}
