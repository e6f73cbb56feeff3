package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists wallet records. FindByID returns ErrWalletNotFound when no
// record exists; every other error is an infrastructure failure.
type Repository interface {
	Create(ctx context.Context, initialBalance decimal.Decimal) (Wallet, error)
	FindByID(ctx context.Context, id string) (Wallet, error)
	Upsert(ctx context.Context, wallet Wallet) (Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `id, current_balance::text, created_at, updated_at`

// Create inserts a wallet with a fresh identifier.
func (r *PostgresRepository) Create(ctx context.Context, initialBalance decimal.Decimal) (Wallet, error) {
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, `INSERT INTO wallets (id, current_balance, created_at, updated_at)
        VALUES ($1, $2::numeric, $3, $3)
        RETURNING `+walletColumns, uuid.New(), initialBalance.String(), now)
	return scanWallet(row)
}

// FindByID fetches a wallet by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrWalletNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, walletID)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrWalletNotFound
	}
	return w, err
}

// Upsert writes the wallet balance in a single statement.
func (r *PostgresRepository) Upsert(ctx context.Context, wallet Wallet) (Wallet, error) {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse wallet id: %w", err)
	}
	now := time.Now().UTC()
	createdAt := wallet.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	row := r.db.QueryRow(ctx, `INSERT INTO wallets (id, current_balance, created_at, updated_at)
        VALUES ($1, $2::numeric, $3, $4)
        ON CONFLICT (id) DO UPDATE
        SET current_balance = EXCLUDED.current_balance, updated_at = EXCLUDED.updated_at
        RETURNING `+walletColumns, walletID, wallet.CurrentBalance.String(), createdAt.UTC(), now)
	return scanWallet(row)
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		id        uuid.UUID
		balance   string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &balance, &createdAt, &updatedAt); err != nil {
		return Wallet{}, err
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return Wallet{}, fmt.Errorf("decode balance %q: %w", balance, err)
	}
	return Wallet{
		ID:             id.String(),
		CurrentBalance: amount,
		CreatedAt:      createdAt.UTC(),
		UpdatedAt:      updatedAt.UTC(),
	}, nil
}
