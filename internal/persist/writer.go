// Package persist writes application state to a kv.Store behind the
// caller's back.
//
// Save returns as soon as the value is queued. One background loop drains
// the queue, so writes for a key reach the store in the order they were
// saved. A key saved again before its previous value was written keeps only
// the latest value. Failed writes are retried with exponential backoff and
// then dropped; they never surface to the caller.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"budget/internal/kv"
	"budget/internal/log"
)

// ErrClosed is returned by Save after Close.
var ErrClosed = errors.New("persist: writer closed")

const maxRetryDelay = 30 * time.Second

// Config tunes a Writer. Zero values get defaults.
type Config struct {
	MaxAttempts  int
	RetryDelay   time.Duration
	WriteTimeout time.Duration
	// OnWritten runs on the writer goroutine after each successful write.
	OnWritten func(ctx context.Context, key string, value []byte)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 200 * time.Millisecond
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}

// Stats counts what happened to saved values.
type Stats struct {
	Saved     int
	Written   int
	Coalesced int
	Retried   int
	Failed    int
}

type Writer struct {
	store  kv.Store
	cfg    Config
	logger *log.Logger

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	busy    bool
	closed  bool
	waiters []chan struct{}
	stats   Stats

	wake  chan struct{}
	stop  chan struct{}
	abort chan struct{}
	done  chan struct{}

	stopOnce  sync.Once
	abortOnce sync.Once
}

// New starts a writer over store.
func New(store kv.Store, cfg Config, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	w := &Writer{
		store:   store,
		cfg:     cfg.withDefaults(),
		logger:  logger.WithComponent(log.ComponentPersist),
		pending: map[string][]byte{},
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		abort:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w
}

// Save marshals value now and queues it for key. The stored blob is the
// state at the time of the call even if value changes later.
func (w *Writer) Save(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		w.logger.Error("Failed to encode value", log.FieldKey, key, log.FieldError, err)
		return fmt.Errorf("encode %q: %w", key, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("Write rejected after close", log.FieldKey, key)
		return ErrClosed
	}
	w.stats.Saved++
	if _, queued := w.pending[key]; queued {
		w.stats.Coalesced++
	} else {
		w.order = append(w.order, key)
	}
	w.pending[key] = b
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush waits until every value saved before the call has been written or
// given up on.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.idleLocked() {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further saves, flushes and stops the loop. If ctx expires
// first, pending retries are abandoned.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	err := w.Flush(ctx)
	if err != nil {
		w.abortOnce.Do(func() { close(w.abort) })
	}
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
	return err
}

func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Writer) idleLocked() bool {
	return len(w.order) == 0 && !w.busy
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		key, value, ok := w.next()
		if !ok {
			return
		}
		w.write(key, value)
	}
}

func (w *Writer) next() (string, []byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.order) == 0 {
		w.busy = false
		for _, ch := range w.waiters {
			close(ch)
		}
		w.waiters = nil
		return "", nil, false
	}
	key := w.order[0]
	w.order = w.order[1:]
	value := w.pending[key]
	delete(w.pending, key)
	w.busy = true
	return key, value, true
}

func (w *Writer) write(key string, value []byte) {
	var err error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			w.count(func(s *Stats) { s.Retried++ })
			if !w.sleep(backoff(w.cfg.RetryDelay, attempt-1)) {
				break
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.WriteTimeout)
		err = w.store.Set(ctx, key, value)
		if err == nil {
			if w.cfg.OnWritten != nil {
				w.cfg.OnWritten(ctx, key, value)
			}
			cancel()
			w.count(func(s *Stats) { s.Written++ })
			w.logger.Debug("Value persisted", log.FieldKey, key, log.FieldBytes, len(value), log.FieldAttempt, attempt)
			return
		}
		cancel()
		w.logger.Warn("Persist attempt failed", log.FieldKey, key, log.FieldAttempt, attempt, log.FieldError, err)
	}

	w.count(func(s *Stats) { s.Failed++ })
	w.logger.Error("Giving up on write, in-memory state is kept",
		log.FieldKey, key, log.FieldOperation, log.OpPersist, log.FieldError, err)
}

func (w *Writer) count(f func(*Stats)) {
	w.mu.Lock()
	f(&w.stats)
	w.mu.Unlock()
}

// sleep waits d unless the writer is aborted.
func (w *Writer) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-w.abort:
		return false
	}
}

// backoff doubles base for every retry, capped at maxRetryDelay.
func backoff(base time.Duration, retry int) time.Duration {
	d := base
	for i := 1; i < retry; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}
