package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// KindWalletCreated is sent after a wallet is persisted.
	KindWalletCreated = "created"
	// KindWalletRecharged is sent after an authorized recharge commits.
	KindWalletRecharged = "recharged"
	// KindWalletCharged is sent after a debit commits.
	KindWalletCharged = "charged"
)

// Message describes a committed wallet balance change.
type Message struct {
	Kind       string          `json:"kind"`
	WalletID   string          `json:"wallet_id"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("wallet notification",
		slog.String("kind", message.Kind),
		slog.String("wallet_id", message.WalletID),
		slog.String("amount", message.Amount.String()),
		slog.String("balance", message.Balance.String()),
	)
	return nil
}
