package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/foodbridge/services/donation/internal/cache"
	"example.com/foodbridge/services/donation/internal/models"
	"example.com/foodbridge/services/donation/internal/repository"
)

const roleCacheTTL = 10 * time.Minute

// UserService stores and serves the role each identity subject picked at
// onboarding. Roles change rarely and are read on every dashboard load, so
// they are cached.
type UserService struct {
	users repository.UserRepository
	cache *cache.RedisCache
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, redisCache *cache.RedisCache) *UserService {
	return &UserService{
		users: users,
		cache: redisCache,
	}
}

// SaveRole records the role chosen for an identity subject
func (s *UserService) SaveRole(ctx context.Context, sub string, role models.RaterRole) error {
	if sub == "" {
		return ErrMissingSubject
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	user := &models.User{ID: sub, Role: role}
	if err := s.users.SaveRole(ctx, user); err != nil {
		return dependencyError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.RoleCacheKey(sub), role, roleCacheTTL); err != nil {
			log.Warn().Err(err).Str("sub", sub).Msg("Failed to cache user role")
		}
	}

	log.Info().Str("sub", sub).Str("role", string(role)).Msg("User role saved")
	return nil
}

// GetRole returns the role recorded for an identity subject
func (s *UserService) GetRole(ctx context.Context, sub string) (models.RaterRole, error) {
	if s.cache != nil {
		var role models.RaterRole
		if err := s.cache.Get(ctx, cache.RoleCacheKey(sub), &role); err == nil {
			return role, nil
		}
	}

	user, err := s.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", dependencyError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.RoleCacheKey(sub), user.Role, roleCacheTTL); err != nil {
			log.Warn().Err(err).Str("sub", sub).Msg("Failed to cache user role")
		}
	}

	return user.Role, nil
}
