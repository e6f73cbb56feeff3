package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRequest is returned for malformed or missing input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrWalletNotFound is returned when no wallet exists for an id.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrPaymentAuthorizationFailed is returned when the payment processor declines a recharge.
	ErrPaymentAuthorizationFailed = errors.New("payment authorization failed")
	// ErrInsufficientBalance is returned when a debit would make a balance negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrTechnical wraps storage and payment infrastructure failures.
	ErrTechnical = errors.New("technical failure")
	// ErrAuthorizerUnavailable narrows ErrTechnical to payment processor faults.
	ErrAuthorizerUnavailable = errors.New("payment authorizer unavailable")
)

// InsufficientBalanceError identifies the wallet and the debit that was refused.
type InsufficientBalanceError struct {
	WalletID string
	Amount   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: wallet %s cannot be charged %s", ErrInsufficientBalance, e.WalletID, e.Amount)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// AuthorizationError describes a declined recharge.
type AuthorizationError struct {
	Instrument string
	Amount     decimal.Decimal
	Reason     string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s for instrument %s and amount %s: %s",
		ErrPaymentAuthorizationFailed, MaskInstrument(e.Instrument), e.Amount, e.Reason)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrPaymentAuthorizationFailed
}

// MaskInstrument keeps the last four characters of a payment instrument.
func MaskInstrument(instrument string) string {
	runes := []rune(instrument)
	if len(runes) <= 4 {
		return instrument
	}
	masked := make([]rune, len(runes))
	for i, r := range runes {
		if i < len(runes)-4 && r != ' ' {
			masked[i] = '*'
			continue
		}
		masked[i] = r
	}
	return string(masked)
}

// ErrorKind classifies an engine error for transports.
type ErrorKind string

const (
	KindNone                       ErrorKind = ""
	KindInvalidRequest             ErrorKind = "invalid_request"
	KindWalletNotFound             ErrorKind = "wallet_not_found"
	KindPaymentAuthorizationFailed ErrorKind = "payment_authorization_failed"
	KindInsufficientBalance        ErrorKind = "insufficient_balance"
	KindTechnical                  ErrorKind = "technical_error"
)

// Kind reports which category err belongs to. Unclassified errors are technical.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrWalletNotFound):
		return KindWalletNotFound
	case errors.Is(err, ErrPaymentAuthorizationFailed):
		return KindPaymentAuthorizationFailed
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	default:
		return KindTechnical
	}
}

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrWalletNotFound, id)
}

func technical(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTechnical, op, err)
}
