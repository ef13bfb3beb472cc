package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

func expense(id string) core.Expense {
	return core.Expense{
		ID:       id,
		Name:     "Coffee",
		Amount:   core.Money{Cents: 350},
		Category: core.Food,
		Date:     time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC),
	}
}

func TestStore_AppendAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	ref, err := s.Append(ctx, expense("a"))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := s.Append(ctx, expense("a")); err != nil {
		t.Fatalf("re-append: %v", err)
	}
	if _, err := s.Append(ctx, expense("b")); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Rows()); got != 2 {
		t.Fatalf("rows = %d, want 2 (duplicate ID ignored)", got)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, sheets.ErrRowNotFound) {
		t.Fatalf("second Delete err = %v, want ErrRowNotFound", err)
	}
	rows := s.Rows()
	if len(rows) != 1 || rows[0].ID != "b" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestStore_AppendRejectsInvalid(t *testing.T) {
	e := expense("x")
	e.Name = " "
	if _, err := New().Append(context.Background(), e); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
}

func TestRow(t *testing.T) {
	got := sheets.Row(expense("id-1"))
	want := []string{"id-1", "Coffee", "3.50", "Food", "2025-03-31"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Row()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
