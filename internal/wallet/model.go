package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a balance-holding record. CurrentBalance never drops below zero through
// Credit or Debit.
type Wallet struct {
	ID             string          `json:"id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Credit adds amount to the balance. Authorization of the funds is the caller's job.
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.CurrentBalance = w.CurrentBalance.Add(amount)
}

// Debit subtracts amount from the balance, or leaves it untouched and returns an
// *InsufficientBalanceError when the result would be negative.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	next := w.CurrentBalance.Sub(amount)
	if next.IsNegative() {
		return &InsufficientBalanceError{WalletID: w.ID, Amount: amount}
	}
	w.CurrentBalance = next
	return nil
}

// RechargeRequest asks for funds to be pulled from a payment instrument into a wallet.
type RechargeRequest struct {
	PaymentInstrument string
	Amount            decimal.NullDecimal
}

// Validate checks the request before any collaborator is contacted.
func (r RechargeRequest) Validate() error {
	if r.PaymentInstrument == "" {
		return invalidRequest("payment instrument is required")
	}
	return validateAmount(r.Amount)
}

func validateAmount(amount decimal.NullDecimal) error {
	if !amount.Valid {
		return invalidRequest("amount is required")
	}
	if !amount.Decimal.IsPositive() {
		return invalidRequest("amount must be positive, got %s", amount.Decimal)
	}
	return nil
}
