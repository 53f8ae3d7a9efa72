package cache

import (
	"context"
	"testing"
)

func TestNewRedisClientWithoutAddr(t *testing.T) {
	if client := NewRedisClient(context.Background(), Options{}); client != nil {
		t.Fatalf("expected nil client without address")
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	// Port 1 on loopback refuses connections immediately.
	if client := NewRedisClient(context.Background(), Options{Addr: "127.0.0.1:1"}); client != nil {
		t.Fatalf("expected nil client for unreachable server")
	}
}
