package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// NatsNotifier publishes wallet events as JSON on "<prefix>.<kind>" subjects.
type NatsNotifier struct {
	conn   publisher
	prefix string
}

// NewNatsNotifier builds a notifier on an established NATS connection.
func NewNatsNotifier(nc *nats.Conn, prefix string) *NatsNotifier {
	return &NatsNotifier{conn: nc, prefix: prefix}
}

// Subject returns the subject a message of the given kind is published on.
func (n *NatsNotifier) Subject(kind string) string {
	if n.prefix == "" {
		return kind
	}
	return n.prefix + "." + kind
}

// Send publishes the message. NATS publishing is fire-and-forget; delivery is not confirmed.
func (n *NatsNotifier) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode wallet event: %w", err)
	}
	if err := n.conn.Publish(n.Subject(message.Kind), payload); err != nil {
		return fmt.Errorf("publish wallet event: %w", err)
	}
	return nil
}
