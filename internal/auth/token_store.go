package auth

import (
	"context"
	"time"

	"postboard/internal/cache"
)

const denylistKeyPrefix = "denylist:token:"

// TokenStoreInterface is the denylist consulted on every authenticated
// request and written on logout.
type TokenStoreInterface interface {
	DenylistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenDenylisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps logged-out token IDs in Redis until their natural expiry.
// It inherits the cache's fail-safe behaviour: with Redis unreachable the
// check degrades to the bounded-staleness contract (tokens stay valid for
// their remaining TTL) instead of failing requests.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token denylist store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// DenylistToken marks a token ID as revoked for the given remaining TTL.
func (s *TokenStore) DenylistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, denylistKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsTokenDenylisted reports whether a token ID was revoked by logout.
func (s *TokenStore) IsTokenDenylisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, denylistKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
