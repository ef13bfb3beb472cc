package memory

import (
	"context"
	"errors"
	"testing"

	"spendlog/internal/storage"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.Get(ctx, "k"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := s.Get(ctx, "k")
	if err != nil || !found || v != "v2" {
		t.Fatalf("unexpected get: v=%q found=%v err=%v", v, found, err)
	}
}

func TestMemoryStoreRejectsInvalidKey(t *testing.T) {
	s := New()
	if err := s.Set(context.Background(), "../x", "v"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
