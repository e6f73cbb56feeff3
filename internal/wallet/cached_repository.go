package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletd/internal/logging"
)

const walletCachePrefix = "wallet:v1:"

// CachedRepository is a Redis read-through cache in front of another Repository.
//
// Writes invalidate the cached entry before touching the backing store and refill it
// afterwards, so a failed refill only costs a cache miss. Cache faults on the read path
// fall back to the backing store.
type CachedRepository struct {
	next   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRepository wraps next with a Redis cache.
func NewCachedRepository(next Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, ttl: ttl, logger: logging.OrDiscard(logger)}
}

func cacheKey(id string) string {
	return walletCachePrefix + id
}

// Create persists through the backing store and primes the cache.
func (r *CachedRepository) Create(ctx context.Context, initialBalance decimal.Decimal) (Wallet, error) {
	w, err := r.next.Create(ctx, initialBalance)
	if err != nil {
		return Wallet{}, err
	}
	r.store(ctx, w)
	return w, nil
}

// FindByID serves from Redis when possible.
func (r *CachedRepository) FindByID(ctx context.Context, id string) (Wallet, error) {
	cached, err := r.cache.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var w Wallet
		decodeErr := json.Unmarshal(cached, &w)
		if decodeErr == nil {
			return w, nil
		}
		r.logger.Warn("discarding undecodable cached wallet", slog.String("wallet_id", id), slog.Any("error", decodeErr))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("wallet cache lookup failed", slog.String("wallet_id", id), slog.Any("error", err))
	}

	w, err := r.next.FindByID(ctx, id)
	if err != nil {
		return Wallet{}, err
	}
	r.store(ctx, w)
	return w, nil
}

// Upsert invalidates, writes through, then refills the cache.
func (r *CachedRepository) Upsert(ctx context.Context, wallet Wallet) (Wallet, error) {
	if err := r.cache.Del(ctx, cacheKey(wallet.ID)).Err(); err != nil {
		return Wallet{}, fmt.Errorf("invalidate cached wallet: %w", err)
	}
	w, err := r.next.Upsert(ctx, wallet)
	if err != nil {
		return Wallet{}, err
	}
	r.store(ctx, w)
	return w, nil
}

func (r *CachedRepository) store(ctx context.Context, w Wallet) {
	payload, err := json.Marshal(w)
	if err != nil {
		r.logger.Warn("encode wallet for cache", slog.String("wallet_id", w.ID), slog.Any("error", err))
		return
	}
	if err := r.cache.Set(ctx, cacheKey(w.ID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("wallet cache refill failed", slog.String("wallet_id", w.ID), slog.Any("error", err))
	}
}
