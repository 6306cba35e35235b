package usecase

import (
	"context"
	"fmt"

	"cineclub/internal/data/entity"
	"cineclub/internal/data/repository"
	"cineclub/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdentityProvider is all the review flow knows about users.
type IdentityProvider interface {
	// UsernameFor reports false when the user does not exist.
	UsernameFor(ctx context.Context, id uuid.UUID) (string, bool, error)
	HasRole(ctx context.Context, id uuid.UUID, role entity.UserRole) (bool, error)
}

type identityProvider struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewIdentityProvider(users repository.UserRepository, log *zap.Logger) IdentityProvider {
	return &identityProvider{
		users: users,
		log:   log.With(zap.String("service", "identity")),
	}
}

func (p *identityProvider) UsernameFor(ctx context.Context, id uuid.UUID) (string, bool, error) {
	user, err := p.users.FindByID(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("lookup user %s: %w", id, err)
	}
	if user == nil {
		return "", false, nil
	}
	return user.Username, true, nil
}

func (p *identityProvider) HasRole(ctx context.Context, id uuid.UUID, role entity.UserRole) (bool, error) {
	user, err := p.users.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("lookup user %s: %w", id, err)
	}
	if user == nil || !user.IsActive {
		return false, nil
	}
	return user.Role == role, nil
}

// UsernameCache is implemented by cache.UsernameCache.
type UsernameCache interface {
	Get(ctx context.Context, id uuid.UUID) (string, bool, error)
	Set(ctx context.Context, id uuid.UUID, username string) error
}

type cachedIdentityProvider struct {
	IdentityProvider
	cache UsernameCache
	log   *zap.Logger
}

// NewCachedIdentityProvider reads usernames through cache. Role checks are
// never cached. Cache failures fall back to next.
func NewCachedIdentityProvider(next IdentityProvider, cache UsernameCache, log *zap.Logger) IdentityProvider {
	return &cachedIdentityProvider{
		IdentityProvider: next,
		cache:            cache,
		log:              log.With(zap.String("service", "identity_cache")),
	}
}

func (p *cachedIdentityProvider) UsernameFor(ctx context.Context, id uuid.UUID) (string, bool, error) {
	name, ok, err := p.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		p.log.Warn("Username cache read failed", zap.Error(err), zap.String("user_id", id.String()))
	case ok:
		metrics.RecordCacheLookup("hit")
		return name, true, nil
	default:
		metrics.RecordCacheLookup("miss")
	}

	name, ok, err = p.IdentityProvider.UsernameFor(ctx, id)
	if err != nil || !ok {
		return name, ok, err
	}

	if err := p.cache.Set(ctx, id, name); err != nil {
		p.log.Warn("Username cache write failed", zap.Error(err), zap.String("user_id", id.String()))
	}
	return name, true, nil
}
