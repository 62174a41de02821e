package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/model"
	"github.com/aliskhannn/debt-notifier/internal/preference"
	preferencerepo "github.com/aliskhannn/debt-notifier/internal/repository/preference"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/preference/mock.go -package=mocks

type preferenceRepository interface {
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)
	SavePreferences(ctx context.Context, p model.Preferences) error
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Service serves user preferences, creating defaults on first use.
type Service struct {
	repo      preferenceRepository
	cache     cache
	validator *validator.Validate
	strategy  retry.Strategy
	now       func() time.Time
}

// NewService creates a preference service. cache may be nil.
func NewService(repo preferenceRepository, cache cache, v *validator.Validate, strategy retry.Strategy) *Service {
	return &Service{repo: repo, cache: cache, validator: v, strategy: strategy, now: time.Now}
}

func cacheKey(userID string) string {
	return "prefs:" + userID
}

// Get returns the preferences of userID.
func (s *Service) Get(ctx context.Context, userID string) (model.Preferences, error) {
	if p, ok := s.fromCache(ctx, userID); ok {
		return p, nil
	}

	p, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, preferencerepo.ErrPreferencesNotFound) {
		p = preference.Defaults(userID)
		p.UpdatedAt = s.now().UTC()

		if err := s.repo.SavePreferences(ctx, p); err != nil {
			return model.Preferences{}, fmt.Errorf("save default preferences: %w", err)
		}
	} else if err != nil {
		return model.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}

	s.toCache(ctx, p)

	return p, nil
}

// Set validates and stores the preferences of userID.
func (s *Service) Set(ctx context.Context, userID string, p model.Preferences) (model.Preferences, error) {
	if err := preference.Validate(s.validator, p); err != nil {
		return model.Preferences{}, err
	}

	p.UserID = userID
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.SavePreferences(ctx, p); err != nil {
		return model.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}

	s.toCache(ctx, p)

	return p, nil
}

func (s *Service) fromCache(ctx context.Context, userID string) (model.Preferences, bool) {
	if s.cache == nil {
		return model.Preferences{}, false
	}

	raw, err := s.cache.GetWithRetry(ctx, s.strategy, cacheKey(userID))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to get preferences from cache")
		}
		return model.Preferences{}, false
	}

	var p model.Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID).Msg("failed to decode cached preferences")
		return model.Preferences{}, false
	}

	return p, true
}

func (s *Service) toCache(ctx context.Context, p model.Preferences) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return
	}

	if err := s.cache.SetWithRetry(ctx, s.strategy, cacheKey(p.UserID), string(raw)); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", p.UserID).Msg("failed to cache preferences")
	}
}
