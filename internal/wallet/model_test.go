package wallet

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWalletCredit(t *testing.T) {
	w := Wallet{ID: "w-1", CurrentBalance: decimal.NewFromInt(1000)}
	w.Credit(decimal.RequireFromString("0.25"))

	if !w.CurrentBalance.Equal(decimal.RequireFromString("1000.25")) {
		t.Fatalf("expected 1000.25, got %s", w.CurrentBalance)
	}
}

func TestWalletDebitRejectsOverdraft(t *testing.T) {
	w := Wallet{ID: "w-1", CurrentBalance: decimal.NewFromInt(1000)}

	err := w.Debit(decimal.NewFromInt(2000))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected *InsufficientBalanceError, got %T", err)
	}
	if insufficient.WalletID != "w-1" || !insufficient.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected error details: %+v", insufficient)
	}
	if !w.CurrentBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance must be unchanged, got %s", w.CurrentBalance)
	}
}

func TestWalletDebitSequenceNeverGoesNegative(t *testing.T) {
	w := Wallet{ID: "w-1", CurrentBalance: decimal.NewFromInt(100)}
	debits := []int64{30, 50, 40, 20, 1}
	accepted := []bool{true, true, false, true, false}

	for i, d := range debits {
		before := w.CurrentBalance
		err := w.Debit(decimal.NewFromInt(d))
		if accepted[i] != (err == nil) {
			t.Fatalf("debit %d of %d: accepted=%v err=%v", i, d, accepted[i], err)
		}
		if err != nil && !w.CurrentBalance.Equal(before) {
			t.Fatalf("rejected debit changed balance from %s to %s", before, w.CurrentBalance)
		}
		if w.CurrentBalance.IsNegative() {
			t.Fatalf("balance went negative: %s", w.CurrentBalance)
		}
	}
	if !w.CurrentBalance.IsZero() {
		t.Fatalf("expected zero balance, got %s", w.CurrentBalance)
	}
}

func TestRechargeRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  RechargeRequest
		ok   bool
	}{
		{"valid", RechargeRequest{PaymentInstrument: "4242", Amount: decimal.NewNullDecimal(decimal.NewFromInt(15))}, true},
		{"missing instrument", RechargeRequest{Amount: decimal.NewNullDecimal(decimal.NewFromInt(15))}, false},
		{"missing amount", RechargeRequest{PaymentInstrument: "4242"}, false},
		{"zero amount", RechargeRequest{PaymentInstrument: "4242", Amount: decimal.NewNullDecimal(decimal.Zero)}, false},
		{"negative amount", RechargeRequest{PaymentInstrument: "4242", Amount: decimal.NewNullDecimal(decimal.NewFromInt(-5))}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected invalid request, got %v", err)
			}
		})
	}
}

func TestMaskInstrument(t *testing.T) {
	if got := MaskInstrument("4242 4242 4242 4242"); got != "**** **** **** 4242" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskInstrument("123"); got != "123" {
		t.Fatalf("short instruments are returned as is, got %q", got)
	}
}

func TestKind(t *testing.T) {
	cases := map[ErrorKind]error{
		KindNone:                       nil,
		KindInvalidRequest:             invalidRequest("bad"),
		KindWalletNotFound:             notFound("w-1"),
		KindPaymentAuthorizationFailed: &AuthorizationError{Instrument: "4242", Reason: "declined"},
		KindInsufficientBalance:        &InsufficientBalanceError{WalletID: "w-1"},
		KindTechnical:                  technical("persist wallet", errors.New("disk full")),
	}
	for want, err := range cases {
		if got := Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
	if Kind(errors.New("unclassified")) != KindTechnical {
		t.Fatal("unclassified errors should be technical")
	}
}
