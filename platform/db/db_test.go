package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type redisConfig struct{ url string }

func (c redisConfig) GetRedisURL() string       { return c.url }
func (c redisConfig) GetRedisTLSInsecure() bool { return false }
func (c redisConfig) IsRedisEnabled() bool      { return c.url != "" }

func TestNewClientAndHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), redisConfig{url: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer func() { _ = client.Close() }()

	health := NewClientAdapter(client)
	if err := health.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mr.Close()
	if err := health.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail once redis is gone")
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), redisConfig{url: "not-a-url"}); err == nil {
		t.Fatal("expected parse error")
	}
}
