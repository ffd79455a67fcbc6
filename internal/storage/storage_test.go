package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/verinova/onboarding/internal/infra"
)

// exerciseStore runs the contract every backend must honour.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "userData"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := s.Set(ctx, "userData", []byte(`{"name":"Bob"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "userData", []byte(`{"name":"Alice"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Get(ctx, "userData")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"name":"Alice"}` {
		t.Fatalf("expected last write, got %s", got)
	}

	if err := s.Remove(ctx, "userData"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "userData"); err != nil {
		t.Fatalf("removing an absent key should succeed: %v", err)
	}
	if _, err := s.Get(ctx, "userData"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}

	if err := s.Set(ctx, "../escape", []byte("x")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	value := []byte("abc")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'z'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("store must not alias caller buffers, got %s", got)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := first.Set(ctx, "userData", []byte(`{"mobile":"1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := second.Get(ctx, "userData")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `{"mobile":"1"}` {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, "device-a"))
}

func TestRedisStoreNamespaces(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	a := NewRedisStore(client, "device-a")
	b := NewRedisStore(client, "device-b")
	if err := a.Set(ctx, "userData", []byte("a")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := b.Get(ctx, "userData"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("namespaces must not share keys, got %v", err)
	}
	if !mr.Exists("storage:v1:device-a:userData") {
		t.Fatal("expected namespaced key in redis")
	}
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("set TEST_DATABASE_URL to run postgres storage tests")
	}
	ctx := context.Background()
	pool, err := infra.NewPostgresPool(ctx, url, "verinova-test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := infra.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := NewPostgresStore(pool, "test-"+t.Name())
	defer s.Remove(ctx, "userData")
	exerciseStore(t, s)
}
