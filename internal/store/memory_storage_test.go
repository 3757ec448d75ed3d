package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

type summary struct {
	Total int `json:"total"`
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := New[summary](NewMemoryStorage(), "sum:")

	if _, err := cache.Get(ctx, "7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key: got %v, want ErrNotFound", err)
	}

	if err := cache.Set(ctx, "7", summary{Total: 42}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := cache.Get(ctx, "7")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Total != 42 {
		t.Errorf("got %+v", got)
	}

	if err := cache.Delete(ctx, "7"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key: got %v, want ErrNotFound", err)
	}
}

func TestPrefixedKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()
	a := New[summary](backend, "a:")
	b := New[summary](backend, "b:")

	if err := a.Set(ctx, "k", summary{Total: 1}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("prefix isolation broken: got %v", err)
	}
}
