// Package tracker owns the in-memory expense list and keeps it in sync with
// a key-value storage slot.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/notify"
	"spendlog/internal/storage"
)

// Publisher is told about every persisted mutation. Failures never affect
// the caller.
type Publisher interface {
	ExpenseAdded(ctx context.Context, e core.Expense) error
	ExpenseDeleted(ctx context.Context, id string) error
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage slot name.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithNotifier sets where user-facing messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithPublisher enables event publishing.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithLogger replaces the default logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the expense list plus its persistence collaborators.
type Store struct {
	// writeMu serializes mutations with their save so snapshots reach
	// storage in the order they were taken. mu guards expenses only and is
	// never held during I/O.
	writeMu   sync.Mutex
	mu        sync.Mutex
	expenses  []core.Expense
	kv        storage.KeyValue
	key       string
	notifier  notify.Notifier
	publisher Publisher
	logger    *applog.Logger
	now       func() time.Time
}

// New creates an empty store. Call Load to read the persisted list.
func New(kv storage.KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		key:      storage.DefaultKey,
		notifier: notify.Discard,
		logger:   applog.New(applog.Config{Level: slog.LevelInfo}).WithComponent(applog.ComponentStore),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open creates a store and loads the persisted list.
func Open(ctx context.Context, kv storage.KeyValue, opts ...Option) *Store {
	s := New(kv, opts...)
	s.Load(ctx)
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Load replaces the in-memory list with the persisted one. A missing slot or
// a decoding failure yields an empty list; errors are logged, not returned.
func (s *Store) Load(ctx context.Context) []core.Expense {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	list, err := s.read(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error loading expenses",
			applog.NewFields().WithError(err).WithOperation(applog.OpLoad).WithKey(s.key).ToSlice()...)
		list = nil
	}

	s.mu.Lock()
	s.expenses = list
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Expenses loaded", applog.FieldCount, len(list), applog.FieldKey, s.key)
	return s.Expenses()
}

func (s *Store) read(ctx context.Context) ([]core.Expense, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}
	var list []core.Expense
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode expense list: %w", err)
	}
	return list, nil
}

// Save writes the whole list to storage. On failure the user is notified and
// the in-memory list is left as is.
func (s *Store) Save(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snapshot := append([]core.Expense(nil), s.expenses...)
	s.mu.Unlock()
	return s.save(ctx, snapshot)
}

func (s *Store) save(ctx context.Context, list []core.Expense) error {
	if list == nil {
		list = []core.Expense{}
	}
	err := func() error {
		payload, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("encode expense list: %w", err)
		}
		if err := s.kv.Set(ctx, s.key, string(payload)); err != nil {
			return fmt.Errorf("write slot: %w", err)
		}
		return nil
	}()
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving expenses",
			applog.NewFields().WithError(err).WithOperation(applog.OpSave).WithKey(s.key).ToSlice()...)
		s.notifier.Notify(notify.Error, notify.MsgSaveFailed)
		return err
	}
	return nil
}

// Add appends a validated expense and persists the list. The returned error
// is the save failure, if any; the expense stays in memory either way.
func (s *Store) Add(ctx context.Context, e core.Expense) error {
	s.writeMu.Lock()
	s.mu.Lock()
	s.expenses = append(s.expenses, e)
	snapshot := append([]core.Expense(nil), s.expenses...)
	s.mu.Unlock()

	err := s.save(ctx, snapshot)
	s.writeMu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense added",
		applog.NewFields().WithExpense(e.ID, e.Name, e.Amount.Cents, string(e.Category)).WithOperation(applog.OpCreate).ToSlice()...)
	s.publish(ctx, func(p Publisher) error { return p.ExpenseAdded(ctx, e) })
	return nil
}

// Create validates raw form input, stamps a new expense and adds it.
func (s *Store) Create(ctx context.Context, name, amount, category string) (core.Expense, error) {
	name, m, c, err := core.ValidateInput(name, amount, category)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.NewExpense(name, m, c, s.now())
	return e, s.Add(ctx, e)
}

// Delete removes every expense with the given id and persists the list. It
// reports success to the user whether or not anything matched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	s.mu.Lock()
	kept := s.expenses[:0:0]
	for _, e := range s.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	removed := len(s.expenses) - len(kept)
	s.expenses = kept
	snapshot := append([]core.Expense(nil), kept...)
	s.mu.Unlock()

	err := s.save(ctx, snapshot)
	s.writeMu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldExpenseID, id, applog.FieldCount, removed, applog.FieldOperation, applog.OpDelete)
	s.notifier.Notify(notify.Success, notify.MsgExpenseDeleted)
	if removed > 0 {
		s.publish(ctx, func(p Publisher) error { return p.ExpenseDeleted(ctx, id) })
	}
	return nil
}

func (s *Store) publish(ctx context.Context, fn func(Publisher) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(s.publisher); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event", applog.FieldError, err.Error())
	}
}

// Expenses returns a copy of the list in insertion order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Len returns the number of expenses.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenses)
}

// FilteredView returns the expenses matching f, newest first.
func (s *Store) FilteredView(f core.Filter) []core.Expense {
	return core.FilteredView(s.Expenses(), f, s.now())
}

// CategoryTotals sums the whole list by category.
func (s *Store) CategoryTotals() map[core.Category]core.Money {
	return core.CategoryTotals(s.Expenses())
}

// GrandTotal sums the whole list.
func (s *Store) GrandTotal() core.Money {
	return core.GrandTotal(s.Expenses())
}
