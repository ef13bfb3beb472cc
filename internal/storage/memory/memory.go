package memory

import (
	"context"
	"sync"

	"spendlog/internal/storage"
)

// Store keeps values in process memory. Contents are lost on restart.
type Store struct {
	mu     sync.Mutex
	values map[string]string
}

var _ storage.KeyValue = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements storage.KeyValue.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements storage.KeyValue.
func (s *Store) Set(_ context.Context, key, value string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
