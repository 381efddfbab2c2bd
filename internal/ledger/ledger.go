// Package ledger owns the user's transaction collection.
//
// The in-memory collection is authoritative. Every mutation updates it
// synchronously and hands the full collection to a Saver, which persists it
// in the background. Queries never touch storage.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/kv"
	"budget/internal/log"
)

// Saver queues a value for durable storage under key.
type Saver interface {
	Save(key string, value any) error
}

// FundSource provides the starting balance offset.
type FundSource interface {
	PrincipalFund() decimal.Decimal
}

// ChangeKind names what a mutation did.
type ChangeKind string

const (
	Created ChangeKind = "created"
	Updated ChangeKind = "updated"
	Deleted ChangeKind = "deleted"
)

// Change describes one applied mutation.
type Change struct {
	Kind        ChangeKind
	Transaction core.Transaction
}

type Option func(*Ledger)

func WithLogger(l *log.Logger) Option {
	return func(led *Ledger) { led.logger = l.WithComponent(log.ComponentLedger) }
}

// WithTotalsCache replaces the cache used for monthly totals.
func WithTotalsCache(c cache.Cache[decimal.Decimal]) Option {
	return func(led *Ledger) { led.totals = c }
}

// WithIDGenerator overrides UUIDv7 ids.
func WithIDGenerator(f func() string) Option {
	return func(led *Ledger) { led.newID = f }
}

// WithObserver registers f to run after every applied mutation.
func WithObserver(f func(Change)) Option {
	return func(led *Ledger) { led.observers = append(led.observers, f) }
}

func WithClock(now func() time.Time) Option {
	return func(led *Ledger) { led.now = now }
}

type Ledger struct {
	mu      sync.RWMutex
	txs     []core.Transaction
	loading bool

	saver     Saver
	fund      FundSource
	totals    cache.Cache[decimal.Decimal]
	logger    *log.Logger
	newID     func() string
	now       func() time.Time
	observers []func(Change)
}

// New returns an empty ledger in the loading state.
func New(saver Saver, fund FundSource, opts ...Option) *Ledger {
	l := &Ledger{
		loading: true,
		saver:   saver,
		fund:    fund,
		totals:  cache.NewLRUCache[decimal.Decimal](64, 10*time.Minute),
		logger:  log.Default().WithComponent(log.ComponentLedger),
		newID:   newUUID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the collection with the stored one. A missing key yields an
// empty ledger. The ledger leaves the loading state even on error; the error
// is returned so callers can refuse to overwrite unreadable data.
func (l *Ledger) Load(ctx context.Context, store kv.Store) error {
	txs, err := readTransactions(ctx, store)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.totals.Clear()
	if err != nil {
		l.txs = nil
		l.logger.ErrorContext(ctx, "Failed to load transactions", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return err
	}
	l.txs = txs
	l.logger.InfoContext(ctx, "Transactions loaded", log.FieldCount, len(txs))
	return nil
}

func readTransactions(ctx context.Context, store kv.Store) ([]core.Transaction, error) {
	raw, found, err := store.Get(ctx, kv.KeyTransactions)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}

func (l *Ledger) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Add appends a transaction with a fresh id. Inputs are taken as given;
// callers validate at their boundary.
func (l *Ledger) Add(title string, amount decimal.Decimal, date core.Date, typ core.TransactionType) core.Transaction {
	tx := core.Transaction{
		ID:     l.newID(),
		Title:  title,
		Amount: amount,
		Date:   date,
		Type:   typ,
	}

	l.mu.Lock()
	l.txs = append(l.txs, tx)
	l.commitLocked()
	l.mu.Unlock()

	l.logger.Info("Transaction added", log.NewFields().
		WithTransaction(tx.ID, tx.Type.String(), tx.Amount.String()).
		WithOperation(log.OpCreate).ToSlice()...)
	l.notify(Change{Kind: Created, Transaction: tx})
	return tx
}

// Edit merges patch over the transaction with id. It reports false and
// changes nothing when no such transaction exists.
func (l *Ledger) Edit(id string, patch core.TransactionPatch) bool {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		l.logger.Debug("Edit of unknown transaction ignored", log.FieldTxID, id)
		return false
	}
	l.txs[i] = patch.Apply(l.txs[i])
	tx := l.txs[i]
	l.commitLocked()
	l.mu.Unlock()

	l.logger.Info("Transaction updated", log.NewFields().
		WithTransaction(tx.ID, tx.Type.String(), tx.Amount.String()).
		WithOperation(log.OpUpdate).ToSlice()...)
	l.notify(Change{Kind: Updated, Transaction: tx})
	return true
}

// remove deletes the transaction with id, reporting whether it existed.
func (l *Ledger) remove(id string) bool {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		l.logger.Debug("Delete of unknown transaction ignored", log.FieldTxID, id)
		return false
	}
	tx := l.txs[i]
	l.txs = append(l.txs[:i:i], l.txs[i+1:]...)
	l.commitLocked()
	l.mu.Unlock()

	l.logger.Info("Transaction deleted", log.NewFields().
		WithTransaction(tx.ID, tx.Type.String(), tx.Amount.String()).
		WithOperation(log.OpDelete).ToSlice()...)
	l.notify(Change{Kind: Deleted, Transaction: tx})
	return true
}

// commitLocked invalidates aggregates and queues the full collection.
func (l *Ledger) commitLocked() {
	l.totals.Clear()
	snapshot := l.copyLocked()
	if err := l.saver.Save(kv.KeyTransactions, snapshot); err != nil {
		l.logger.Warn("Transactions not queued for persistence", log.FieldError, err)
	}
}

func (l *Ledger) notify(c Change) {
	for _, f := range l.observers {
		f(c)
	}
}

func (l *Ledger) indexLocked(id string) int {
	for i := range l.txs {
		if l.txs[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) copyLocked() []core.Transaction {
	out := make([]core.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}
