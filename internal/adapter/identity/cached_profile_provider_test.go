package identity

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"votist/internal/adapter"
	"votist/internal/cache"
	"votist/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfileProvider struct {
	calls   int32
	profile *domain.Profile
	err     error
}

func (s *stubProfileProvider) GetProfile(ctx context.Context, subject string) (*domain.Profile, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.profile, s.err
}

func TestCachedProfileProvider_GetProfile(t *testing.T) {
	ctx := context.Background()
	key := cache.ProfileKey("user_2abc")
	profile := &domain.Profile{Subject: "user_2abc", FirstName: "Ada", Role: "admin"}
	encoded, err := json.Marshal(profile)
	require.NoError(t, err)

	t.Run("Hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		upstream := &stubProfileProvider{}
		p := NewCachedProfileProvider(upstream, adapter.NewRedisCacheAdapter(db), time.Minute)

		mock.ExpectGet(key).SetVal(string(encoded))

		got, err := p.GetProfile(ctx, "user_2abc")
		require.NoError(t, err)
		assert.Equal(t, profile, got)
		assert.Zero(t, upstream.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissFillsCache", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		upstream := &stubProfileProvider{profile: profile}
		p := NewCachedProfileProvider(upstream, adapter.NewRedisCacheAdapter(db), time.Minute)

		mock.ExpectGet(key).SetErr(redis.Nil)
		mock.ExpectSet(key, string(encoded), time.Minute).SetVal("OK")

		got, err := p.GetProfile(ctx, "user_2abc")
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.FirstName)
		assert.Equal(t, int32(1), upstream.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownSubjectNotCached", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		upstream := &stubProfileProvider{}
		p := NewCachedProfileProvider(upstream, adapter.NewRedisCacheAdapter(db), time.Minute)

		mock.ExpectGet(key).SetErr(redis.Nil)

		got, err := p.GetProfile(ctx, "user_2abc")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CacheDownFallsThrough", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		upstream := &stubProfileProvider{profile: profile}
		p := NewCachedProfileProvider(upstream, adapter.NewRedisCacheAdapter(db), time.Minute)

		mock.ExpectGet(key).SetErr(errors.New("connection refused"))
		mock.ExpectSet(key, string(encoded), time.Minute).SetErr(errors.New("connection refused"))

		got, err := p.GetProfile(ctx, "user_2abc")
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.FirstName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpstreamError", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		upstream := &stubProfileProvider{err: errors.New("timeout")}
		p := NewCachedProfileProvider(upstream, adapter.NewRedisCacheAdapter(db), time.Minute)

		mock.ExpectGet(key).SetErr(redis.Nil)

		_, err := p.GetProfile(ctx, "user_2abc")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCachedProfileProvider_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := NewCachedProfileProvider(&stubProfileProvider{}, adapter.NewRedisCacheAdapter(db), 0)
	assert.Equal(t, defaultProfileTTL, p.ttl)

	mock.ExpectDel(cache.ProfileKey("user_2abc")).SetVal(1)
	assert.NoError(t, p.Invalidate(context.Background(), "user_2abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
