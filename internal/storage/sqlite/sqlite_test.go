package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRepositoryGetSet(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "data", "spendlog.db")

	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	defer repo.Close()

	if _, found, err := repo.Get(ctx, "expenseTracker"); err != nil || found {
		t.Fatalf("expected empty slot, found=%v err=%v", found, err)
	}
	if err := repo.Set(ctx, "expenseTracker", `[{"id":"1"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, "expenseTracker", `[]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, found, err := repo.Get(ctx, "expenseTracker")
	if err != nil || !found || v != `[]` {
		t.Fatalf("unexpected get: v=%q found=%v err=%v", v, found, err)
	}
}

func TestRepositoryReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "spendlog.db")

	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := repo.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	repo.Close()

	// Migrations must be a no-op on the second open.
	repo, err = NewRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen repository: %v", err)
	}
	defer repo.Close()
	if v, found, err := repo.Get(ctx, "k"); err != nil || !found || v != "v" {
		t.Fatalf("unexpected get after reopen: v=%q found=%v err=%v", v, found, err)
	}
}
