package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, initialBalance decimal.Decimal) (Wallet, error) {
	now := time.Now().UTC()
	wallet := Wallet{
		ID:             uuid.NewString(),
		CurrentBalance: initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[wallet.ID] = wallet
	return wallet, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wallet, ok := r.storage[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return wallet, nil
}

func (r *memoryRepository) Upsert(_ context.Context, wallet Wallet) (Wallet, error) {
	now := time.Now().UTC()
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = now
	}
	wallet.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[wallet.ID] = wallet
	return wallet, nil
}
