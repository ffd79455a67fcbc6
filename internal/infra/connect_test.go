package infra

import (
	"context"
	"testing"
)

func TestConstructorsRejectBadURLs(t *testing.T) {
	ctx := context.Background()
	if _, err := NewPostgresPool(ctx, "", "test"); err == nil {
		t.Fatal("expected empty database url to fail")
	}
	if _, err := NewPostgresPool(ctx, "postgres://%zz", "test"); err == nil {
		t.Fatal("expected malformed database url to fail")
	}
	if _, err := NewRedisClient(ctx, "", "test"); err == nil {
		t.Fatal("expected empty redis url to fail")
	}
	if _, err := NewRedisClient(ctx, "memcached://localhost", "test"); err == nil {
		t.Fatal("expected non-redis scheme to fail")
	}
}
