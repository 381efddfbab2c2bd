package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/cache"
	"budget/internal/core"
)

// DeleteIntent is a pending deletion awaiting the user's answer. It
// resolves at most once: the first Confirm or Cancel wins and later calls
// do nothing.
type DeleteIntent struct {
	ledger    *Ledger
	id        string
	createdAt time.Time

	mu       sync.Mutex
	resolved bool
}

// RequestDelete opens a deletion intent for id. The ledger is not touched
// until the intent is confirmed.
func (l *Ledger) RequestDelete(id string) *DeleteIntent {
	return &DeleteIntent{ledger: l, id: id, createdAt: l.now()}
}

func (d *DeleteIntent) ID() string { return d.id }

func (d *DeleteIntent) CreatedAt() time.Time { return d.createdAt }

// Transaction returns the record the intent would delete, if it still exists.
func (d *DeleteIntent) Transaction() (core.Transaction, bool) {
	return d.ledger.Get(d.id)
}

// Confirm removes the transaction. It reports whether a record was removed.
func (d *DeleteIntent) Confirm() bool {
	if !d.resolve() {
		return false
	}
	return d.ledger.remove(d.id)
}

// Cancel drops the intent and leaves the ledger untouched.
func (d *DeleteIntent) Cancel() {
	d.resolve()
}

func (d *DeleteIntent) Resolved() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolved
}

func (d *DeleteIntent) resolve() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resolved {
		return false
	}
	d.resolved = true
	return true
}

// Confirmer asks the user whether tx should be deleted.
type Confirmer interface {
	ConfirmDelete(ctx context.Context, tx core.Transaction) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, tx core.Transaction) (bool, error)

func (f ConfirmFunc) ConfirmDelete(ctx context.Context, tx core.Transaction) (bool, error) {
	return f(ctx, tx)
}

// AlwaysConfirm answers yes without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, core.Transaction) (bool, error) {
	return true, nil
})

// Delete runs the confirmation step for id and applies the answer. Unknown
// ids are a no-op and the confirmer is not consulted.
func (l *Ledger) Delete(ctx context.Context, id string, c Confirmer) (bool, error) {
	intent := l.RequestDelete(id)
	tx, ok := intent.Transaction()
	if !ok {
		intent.Cancel()
		return false, nil
	}
	yes, err := c.ConfirmDelete(ctx, tx)
	if err != nil || !yes {
		intent.Cancel()
		return false, err
	}
	return intent.Confirm(), nil
}

// Intents parks delete intents under opaque tokens between the request
// and the user's answer. Unanswered intents expire after the ttl.
type Intents struct {
	items *cache.LRUCache[*DeleteIntent]
}

func NewIntents(size int, ttl time.Duration) *Intents {
	return &Intents{items: cache.NewLRUCache[*DeleteIntent](size, ttl)}
}

// Put stores intent and returns its token.
func (s *Intents) Put(intent *DeleteIntent) string {
	token := uuid.NewString()
	s.items.Set(token, intent)
	return token
}

// Take removes and returns the intent for token.
func (s *Intents) Take(token string) (*DeleteIntent, bool) {
	intent, ok := s.items.Get(token)
	if !ok {
		return nil, false
	}
	s.items.Delete(token)
	return intent, true
}

// CleanExpired lets a cache.Manager evict stale intents.
func (s *Intents) CleanExpired() int {
	return s.items.CleanExpired()
}
