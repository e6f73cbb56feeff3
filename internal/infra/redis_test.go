package infra

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("new redis client: %v", err)
	}
	defer client.Close()

	opt := client.Options()
	if opt.MaxRetries != 1 {
		t.Fatalf("expected 1 retry, got %d", opt.MaxRetries)
	}
	if opt.DialTimeout != time.Second || opt.ReadTimeout != time.Second {
		t.Fatalf("expected 1s dial/read timeouts, got %s/%s", opt.DialTimeout, opt.ReadTimeout)
	}
}

func TestNewRedisClientRejectsEmptyURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestNewRedisClientFailsWhenUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(context.Background(), "redis://"+addr); err == nil {
		t.Fatal("expected ping failure")
	}
}
