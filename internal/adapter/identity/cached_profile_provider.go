package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"votist/internal/cache"
	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultProfileTTL = 10 * time.Minute

// CachedProfileProvider serves profiles from the shared cache and collapses
// concurrent misses for one subject into a single upstream call.
type CachedProfileProvider struct {
	next    domain.ProfileProvider
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
}

func NewCachedProfileProvider(next domain.ProfileProvider, c domain.Cache, ttl time.Duration) *CachedProfileProvider {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &CachedProfileProvider{next: next, cache: c, ttl: ttl}
}

func (p *CachedProfileProvider) GetProfile(ctx context.Context, subject string) (*domain.Profile, error) {
	key := cache.ProfileKey(subject)

	cached, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		var profile domain.Profile
		errDecode := json.Unmarshal([]byte(cached), &profile)
		if errDecode == nil {
			return &profile, nil
		}
		logger.Get().Warn("Discarding undecodable cached profile", zap.String("cacheKey", key), zap.Error(errDecode))
	case !errors.Is(err, domain.ErrCacheMiss):
		logger.Get().Warn("Profile cache read failed", zap.String("cacheKey", key), zap.Error(err))
	}

	res, err, _ := p.sfGroup.Do(key, func() (interface{}, error) {
		profile, fetchErr := p.next.GetProfile(ctx, subject)
		if fetchErr != nil || profile == nil {
			return profile, fetchErr
		}
		data, errEncode := json.Marshal(profile)
		if errEncode != nil {
			return profile, nil
		}
		if errSet := p.cache.Set(ctx, key, string(data), p.ttl); errSet != nil {
			logger.Get().Warn("Profile cache write failed", zap.String("cacheKey", key), zap.Error(errSet))
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	profile, _ := res.(*domain.Profile)
	return profile, nil
}

// Invalidate drops the cached profile of subject.
func (p *CachedProfileProvider) Invalidate(ctx context.Context, subject string) error {
	return p.cache.Delete(ctx, cache.ProfileKey(subject))
}
