// Package storage defines the key-value slot the expense list is persisted in.
package storage

import (
	"context"
	"errors"
	"regexp"
)

// DefaultKey is the slot holding the serialized expense list.
const DefaultKey = "expenseTracker"

// ErrInvalidKey is returned for keys that are empty or contain characters
// outside [A-Za-z0-9._-].
var ErrInvalidKey = errors.New("invalid storage key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// KeyValue reads and writes whole string values by key.
type KeyValue interface {
	// Get returns the stored value. found is false when the key was never set.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// ValidateKey checks that key is safe to use as a file name or row key.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
