package auth

import (
	"context"
	"time"

	"flytrap/internal/cache"
)

const rootStatusKeyPrefix = "is_root:"

// CachedRootStatus mirrors root status from the credential store into redis.
// Reads always go to the store so a demoted root cannot mint root tokens;
// the redis entry is written through on every successful read.
type CachedRootStatus struct {
	source RootStatusSource
	cache  *cache.Client
	ttl    time.Duration
}

// Ensure CachedRootStatus implements RootStatusSource
var _ RootStatusSource = (*CachedRootStatus)(nil)

// NewCachedRootStatus wraps source with a write-through cache. A non-positive ttl disables the cache.
func NewCachedRootStatus(source RootStatusSource, cache *cache.Client, ttl time.Duration) *CachedRootStatus {
	return &CachedRootStatus{source: source, cache: cache, ttl: ttl}
}

// IsRoot loads the current root status from the store and refreshes the cached copy.
// Store errors are returned as is and leave the cache untouched.
func (s *CachedRootStatus) IsRoot(ctx context.Context, userUUID string) (bool, error) {
	isRoot, err := s.source.IsRoot(ctx, userUUID)
	if err != nil {
		return false, err
	}
	if s.ttl <= 0 {
		return isRoot, nil
	}

	value := "0"
	if isRoot {
		value = "1"
	}
	_ = s.cache.Set(ctx, rootStatusKeyPrefix+userUUID, []byte(value), s.ttl)
	return isRoot, nil
}

// Invalidate drops the cached root status of a user.
func (s *CachedRootStatus) Invalidate(ctx context.Context, userUUID string) error {
	return s.cache.Delete(ctx, rootStatusKeyPrefix+userUUID)
}
