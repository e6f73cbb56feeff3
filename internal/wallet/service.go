package wallet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/walletd/internal/logging"
	"github.com/congo-pay/walletd/internal/notification"
	"github.com/congo-pay/walletd/internal/payment"
)

const (
	opCreate   = "create"
	opGet      = "get"
	opRecharge = "recharge"
	opCharge   = "charge"
)

// Service is the only component that mutates balances. Operations on one wallet id are
// serialized through a per-id Guard: reads share it, recharges and charges hold it
// exclusively from lookup until the write has been persisted.
type Service struct {
	repo       Repository
	authorizer payment.Authorizer
	notifier   notification.Notifier
	guard      *Guard
	logger     *slog.Logger
}

// NewService builds a wallet service. notifier may be nil.
func NewService(repo Repository, authorizer payment.Authorizer, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		notifier:   notifier,
		guard:      NewGuard(),
		logger:     logging.OrDiscard(logger),
	}
}

// Create persists a new wallet holding initialBalance.
func (s *Service) Create(ctx context.Context, initialBalance decimal.Decimal) (Wallet, error) {
	if initialBalance.IsNegative() {
		return Wallet{}, s.fail(opCreate, "", invalidRequest("initial balance must not be negative, got %s", initialBalance))
	}

	w, err := s.repo.Create(ctx, initialBalance)
	if err != nil {
		return Wallet{}, s.fail(opCreate, "", technical("create wallet", err))
	}

	s.logger.Info("wallet created", slog.String("wallet_id", w.ID), slog.String("balance", w.CurrentBalance.String()))
	s.notify(ctx, notification.KindWalletCreated, w, initialBalance)
	return w, nil
}

// Get returns the current state of a wallet. It never observes a wallet mid-mutation.
func (s *Service) Get(ctx context.Context, id string) (Wallet, error) {
	key, ok := canonicalID(id)
	if !ok {
		return Wallet{}, s.fail(opGet, id, notFound(id))
	}
	unlock := s.guard.RLock(key)
	defer unlock()

	w, err := s.find(ctx, key)
	if err != nil {
		return Wallet{}, s.fail(opGet, id, err)
	}
	return w, nil
}

// Recharge pulls req.Amount from the payment instrument and credits it to the wallet.
// The balance changes only if the processor approves the charge.
func (s *Service) Recharge(ctx context.Context, id string, req RechargeRequest) (Wallet, error) {
	if err := req.Validate(); err != nil {
		return Wallet{}, s.fail(opRecharge, id, err)
	}
	amount := req.Amount.Decimal

	w, err := s.mutate(ctx, id, func(w *Wallet) error {
		if _, err := s.authorizer.Authorize(ctx, req.PaymentInstrument, amount); err != nil {
			var decline *payment.DeclineError
			if errors.As(err, &decline) {
				return &AuthorizationError{Instrument: req.PaymentInstrument, Amount: amount, Reason: decline.Reason}
			}
			if errors.Is(err, payment.ErrDeclined) {
				return &AuthorizationError{Instrument: req.PaymentInstrument, Amount: amount, Reason: err.Error()}
			}
			return technical("authorize payment", errors.Join(ErrAuthorizerUnavailable, err))
		}
		w.Credit(amount)
		return nil
	})
	if err != nil {
		return Wallet{}, s.fail(opRecharge, id, err)
	}

	s.logger.Info("wallet recharged",
		slog.String("wallet_id", w.ID),
		slog.String("amount", amount.String()),
		slog.String("balance", w.CurrentBalance.String()),
	)
	s.notify(ctx, notification.KindWalletRecharged, w, amount)
	return w, nil
}

// Charge debits amount from the wallet. A debit that would leave a negative balance
// is rejected whole.
func (s *Service) Charge(ctx context.Context, id string, amount decimal.NullDecimal) (Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return Wallet{}, s.fail(opCharge, id, err)
	}

	w, err := s.mutate(ctx, id, func(w *Wallet) error {
		return w.Debit(amount.Decimal)
	})
	if err != nil {
		return Wallet{}, s.fail(opCharge, id, err)
	}

	s.logger.Info("wallet charged",
		slog.String("wallet_id", w.ID),
		slog.String("amount", amount.Decimal.String()),
		slog.String("balance", w.CurrentBalance.String()),
	)
	s.notify(ctx, notification.KindWalletCharged, w, amount.Decimal)
	return w, nil
}

// mutate runs lookup, apply and persist as one exclusive section for id. The loaded
// copy is discarded unless apply succeeds and the upsert commits.
func (s *Service) mutate(ctx context.Context, id string, apply func(w *Wallet) error) (Wallet, error) {
	key, ok := canonicalID(id)
	if !ok {
		return Wallet{}, notFound(id)
	}
	unlock := s.guard.Lock(key)
	defer unlock()

	w, err := s.find(ctx, key)
	if err != nil {
		return Wallet{}, err
	}
	if err := apply(&w); err != nil {
		return Wallet{}, err
	}

	// Past this point the change has been decided (and possibly paid for), so a caller
	// giving up must not abort the write.
	saved, err := s.repo.Upsert(context.WithoutCancel(ctx), w)
	if err != nil {
		return Wallet{}, technical("persist wallet", err)
	}
	return saved, nil
}

// canonicalID folds every spelling uuid.Parse accepts (case, braces, urn prefix, no
// dashes) into one string, so aliases of a wallet share a guard entry and a cache key.
// Anything else cannot name a wallet.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func (s *Service) find(ctx context.Context, id string) (Wallet, error) {
	w, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrWalletNotFound) {
		return Wallet{}, notFound(id)
	}
	if err != nil {
		return Wallet{}, technical("find wallet", err)
	}
	return w, nil
}

func (s *Service) fail(op, id string, err error) error {
	attrs := []any{slog.String("operation", op), slog.Any("error", err)}
	if id != "" {
		attrs = append(attrs, slog.String("wallet_id", id))
	}
	if Kind(err) == KindTechnical {
		s.logger.Error("wallet operation failed", attrs...)
	} else {
		s.logger.Warn("wallet operation rejected", attrs...)
	}
	return err
}

func (s *Service) notify(ctx context.Context, kind string, w Wallet, amount decimal.Decimal) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Send(context.WithoutCancel(ctx), notification.Message{
		Kind:       kind,
		WalletID:   w.ID,
		Amount:     amount,
		Balance:    w.CurrentBalance,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("wallet notification failed", slog.String("wallet_id", w.ID), slog.String("kind", kind), slog.Any("error", err))
	}
}
