package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
)

const staffListKey = "staff:list"

// errCacheMiss is returned by listCache.get when nothing is cached.
var errCacheMiss = errors.New("staff list not cached")

// listCache holds the encoded staff list under a single key.
type listCache interface {
	get(ctx context.Context) ([]byte, error)
	// fill stores payload only if the key is empty.
	fill(ctx context.Context, payload []byte) error
	put(ctx context.Context, payload []byte) error
	drop(ctx context.Context) error
}

type redisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c redisListCache) get(ctx context.Context) ([]byte, error) {
	raw, err := c.client.Get(ctx, staffListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	return raw, err
}

func (c redisListCache) fill(ctx context.Context, payload []byte) error {
	return c.client.SetNX(ctx, staffListKey, payload, c.ttl).Err()
}

func (c redisListCache) put(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, staffListKey, payload, c.ttl).Err()
}

func (c redisListCache) drop(ctx context.Context) error {
	return c.client.Del(ctx, staffListKey).Err()
}

type cachedStaffRepository struct {
	next   StaffRepository
	cache  listCache
	logger *zap.Logger
}

// NewCachedStaffRepository puts a redis read-through cache in front of next.
// A nil client returns next unchanged. Redis failures are logged and the
// request goes to next.
func NewCachedStaffRepository(next StaffRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) StaffRepository {
	if client == nil {
		return next
	}
	return newCachedStaffRepository(next, redisListCache{client: client, ttl: ttl}, logger)
}

func newCachedStaffRepository(next StaffRepository, cache listCache, logger *zap.Logger) *cachedStaffRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedStaffRepository{next: next, cache: cache, logger: logger}
}

// List serves the cached list, or reads next and fills the cache. The fill
// never overwrites a value, so a read that raced a ReplaceAll cannot put
// the older list back.
func (r *cachedStaffRepository) List(ctx context.Context) (domain.StaffList, error) {
	raw, err := r.cache.get(ctx)
	switch {
	case err == nil:
		var list domain.StaffList
		if jsonErr := json.Unmarshal(raw, &list); jsonErr == nil {
			return list, nil
		}
		r.logger.Warn("discarding unreadable cached staff list")
		if err := r.cache.drop(ctx); err != nil {
			r.logger.Warn("staff cache invalidation failed", zap.Error(err))
		}
	case !errors.Is(err, errCacheMiss):
		r.logger.Warn("staff cache read failed", zap.Error(err))
	}

	list, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(list); err == nil {
		if err := r.cache.fill(ctx, payload); err != nil {
			r.logger.Warn("staff cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

// ReplaceAll writes through: the new list replaces the cached one. If that
// fails the key is dropped so reads go to next.
func (r *cachedStaffRepository) ReplaceAll(ctx context.Context, list domain.StaffList) error {
	if err := r.next.ReplaceAll(ctx, list); err != nil {
		return err
	}

	payload, err := json.Marshal(list)
	if err == nil {
		err = r.cache.put(ctx, payload)
	}
	if err == nil {
		return nil
	}
	r.logger.Warn("staff cache update failed; dropping cached list", zap.Error(err))
	if err := r.cache.drop(ctx); err != nil {
		r.logger.Error("stale staff list may be served until it expires", zap.Error(err))
	}
	return nil
}
