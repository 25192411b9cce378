package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/openlms/facetoface-api/pkg/errors"
)

type visibilityCounter interface {
	CountVisibleUsers(ctx context.Context, userID int64) (int, error)
}

type visibilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CapabilityService computes read-time permission predicates. Manager
// visibility is true when anyone reports to the acting user through the
// hierarchy or a profile-field link; the result gates attendance data
// beyond the user's explicit grants and is cached per user.
type CapabilityService struct {
	visibility visibilityCounter
	cache      visibilityCache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewCapabilityService constructs CapabilityService.
func NewCapabilityService(visibility visibilityCounter, cache visibilityCache, cacheTTL time.Duration, logger *zap.Logger) *CapabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &CapabilityService{visibility: visibility, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ManagerVisibility reports whether the acting user oversees anyone.
func (s *CapabilityService) ManagerVisibility(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("visibility:manager:%d", userID)

	if s.cache != nil {
		var cached bool
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("visibility cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	count, err := s.visibility.CountVisibleUsers(ctx, userID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute manager visibility")
	}
	visible := count > 0

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, visible, s.cacheTTL); err != nil {
			s.logger.Warn("visibility cache write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	return visible, nil
}
