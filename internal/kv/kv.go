// Package kv defines the key/value persistence port shared by every
// storage backend.
//
// Values are opaque JSON documents. A backend stores the latest value per
// key; concurrent writers to the same key are last-write-wins.
package kv

import (
	"context"
	"errors"
)

// Storage keys used by the application.
const (
	KeyTransactions = "transactions"
	KeySettings     = "user_settings"
)

// ErrEmptyKey is returned by backends asked to store an empty key.
var ErrEmptyKey = errors.New("kv: empty key")

// Store is the persistence adapter. Get reports found=false for a key that
// was never written.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by stores holding resources.
type Closer interface {
	Close() error
}

// Close closes s when it holds resources.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
