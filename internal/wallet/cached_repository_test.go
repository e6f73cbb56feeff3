package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletd/internal/logging"
)

type countingRepository struct {
	Repository
	finds int
}

func (r *countingRepository) FindByID(ctx context.Context, id string) (Wallet, error) {
	r.finds++
	return r.Repository.FindByID(ctx, id)
}

func setupCachedRepository(t *testing.T) (*CachedRepository, *countingRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	backing := &countingRepository{Repository: NewMemoryRepository()}
	return NewCachedRepository(backing, cache, time.Minute, logging.Discard()), backing, mr
}

func TestCachedRepositoryServesFromCache(t *testing.T) {
	repo, backing, mr := setupCachedRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists(cacheKey(created.ID)) {
		t.Fatal("expected create to prime the cache")
	}

	fetched, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !fetched.CurrentBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000, got %s", fetched.CurrentBalance)
	}
	if backing.finds != 0 {
		t.Fatalf("expected cache hit, backing store was queried %d times", backing.finds)
	}
}

func TestCachedRepositoryUpsertRefreshesCache(t *testing.T) {
	repo, backing, _ := setupCachedRepository(t)
	ctx := context.Background()

	created, _ := repo.Create(ctx, decimal.NewFromInt(1000))
	created.Credit(decimal.NewFromInt(250))
	if _, err := repo.Upsert(ctx, created); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	fetched, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !fetched.CurrentBalance.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("expected 1250 after upsert, got %s", fetched.CurrentBalance)
	}
	if backing.finds != 0 {
		t.Fatalf("expected cache hit after upsert")
	}
}

func TestCachedRepositoryMissLoadsAndFills(t *testing.T) {
	repo, backing, mr := setupCachedRepository(t)
	ctx := context.Background()

	created, _ := repo.Create(ctx, decimal.NewFromInt(10))
	mr.Del(cacheKey(created.ID))

	if _, err := repo.FindByID(ctx, created.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	if backing.finds != 1 || !mr.Exists(cacheKey(created.ID)) {
		t.Fatalf("expected a single backing lookup and a refill, finds=%d", backing.finds)
	}
}

func TestCachedRepositoryFallsBackWhenCacheDown(t *testing.T) {
	repo, backing, mr := setupCachedRepository(t)
	ctx := context.Background()

	created, _ := repo.Create(ctx, decimal.NewFromInt(10))
	mr.Close()

	fetched, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find should fall back to backing store: %v", err)
	}
	if fetched.ID != created.ID || backing.finds != 1 {
		t.Fatalf("unexpected fallback result %+v finds=%d", fetched, backing.finds)
	}

	if _, err := repo.Upsert(ctx, created); err == nil {
		t.Fatal("expected upsert to fail when the cache cannot be invalidated")
	}
}

func TestCachedRepositoryDoesNotCacheMisses(t *testing.T) {
	repo, _, mr := setupCachedRepository(t)

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists(cacheKey("missing")) {
		t.Fatal("missing wallets must not be cached")
	}
}
