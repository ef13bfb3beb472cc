// Package memory is an in-process expense mirror used when no spreadsheet is
// configured, and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendlog/internal/core"
	"spendlog/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items []core.Expense
	seq   int
}

var _ sheets.ExpenseMirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference. An
// expense whose ID is already mirrored is not duplicated.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == e.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.items = append(s.items, e)
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq), nil
}

// Delete removes every row with the given ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(s.items) {
		return sheets.ErrRowNotFound
	}
	s.items = kept
	return nil
}

// Rows returns a copy of the mirrored expenses in append order.
func (s *Store) Rows() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}
