package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrDeclined marks a charge the processor refused. It is a business outcome, not a fault.
	ErrDeclined = errors.New("payment declined")

	// ErrCircuitOpen is returned while the processor is considered unavailable.
	ErrCircuitOpen = errors.New("payment processor circuit open")
)

// StatusApproved is the only status a successful Authorization carries.
const StatusApproved = "approved"

// Authorizer charges a payment instrument with an external processor.
//
// A nil error means the charge was approved. A declined charge returns an error
// wrapping ErrDeclined; any other error is an infrastructure failure.
type Authorizer interface {
	Authorize(ctx context.Context, instrument string, amount decimal.Decimal) (Authorization, error)
}

// Authorization captures the processor response for an approved charge.
type Authorization struct {
	Reference string
	Status    string
}

// DeclineError carries the processor's reason for refusing a charge.
type DeclineError struct {
	Reason string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDeclined, e.Reason)
}

func (e *DeclineError) Unwrap() error {
	return ErrDeclined
}

// Decline builds a DeclineError.
func Decline(reason string) error {
	return &DeclineError{Reason: reason}
}

// StaticAuthorizer simulates a processor that refuses charges below MinimumAmount.
type StaticAuthorizer struct {
	MinimumAmount decimal.Decimal
}

// NewStaticAuthorizer builds a StaticAuthorizer with the given minimum charge.
func NewStaticAuthorizer(minimum decimal.Decimal) StaticAuthorizer {
	return StaticAuthorizer{MinimumAmount: minimum}
}

// Authorize approves the charge with a synthetic reference unless it is too small.
func (a StaticAuthorizer) Authorize(ctx context.Context, _ string, amount decimal.Decimal) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}
	if amount.LessThan(a.MinimumAmount) {
		return Authorization{}, Decline("amount too small")
	}
	return Authorization{Reference: uuid.NewString(), Status: StatusApproved}, nil
}
