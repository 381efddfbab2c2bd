package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/kv"
	"budget/internal/kv/memory"
	"budget/internal/log"
)

// flakyStore fails the first n writes, then delegates.
type flakyStore struct {
	*memory.Store
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.calls++
	if f.fails > 0 {
		f.fails--
		f.mu.Unlock()
		return errors.New("disk full")
	}
	f.mu.Unlock()
	return f.Store.Set(ctx, key, value)
}

// gateStore blocks every write until release is closed.
type gateStore struct {
	*memory.Store
	release chan struct{}
	started chan string
}

func (g *gateStore) Set(ctx context.Context, key string, value []byte) error {
	g.started <- key
	<-g.release
	return g.Store.Set(ctx, key, value)
}

func newTestWriter(t *testing.T, store kv.Store, cfg Config) *Writer {
	t.Helper()
	w := New(store, cfg, log.Discard())
	t.Cleanup(func() { w.Close(context.Background()) })
	return w
}

func TestSaveSnapshotsValueAtCallTime(t *testing.T) {
	store := memory.New()
	w := newTestWriter(t, store, Config{})

	items := []string{"a"}
	require.NoError(t, w.Save("transactions", items))
	items[0] = "mutated"

	require.NoError(t, w.Flush(context.Background()))
	got, found, _ := store.Get(context.Background(), "transactions")
	require.True(t, found)
	assert.JSONEq(t, `["a"]`, string(got))
}

func TestLatestValueWinsPerKey(t *testing.T) {
	store := &gateStore{Store: memory.New(), release: make(chan struct{}), started: make(chan string, 8)}
	w := newTestWriter(t, store, Config{})

	require.NoError(t, w.Save("transactions", 1))
	assert.Equal(t, "transactions", <-store.started)

	// First write is in flight; these two coalesce behind it.
	require.NoError(t, w.Save("transactions", 2))
	require.NoError(t, w.Save("transactions", 3))
	require.NoError(t, w.Save("user_settings", "s"))

	close(store.release)
	require.NoError(t, w.Flush(context.Background()))

	got, _, _ := store.Get(context.Background(), "transactions")
	assert.Equal(t, "3", string(got))
	st := w.Stats()
	assert.Equal(t, 4, st.Saved)
	assert.Equal(t, 1, st.Coalesced)
	assert.Equal(t, 3, st.Written)
	assert.Equal(t, 3, store.Sets())
}

func TestRetryThenSucceed(t *testing.T) {
	store := &flakyStore{Store: memory.New(), fails: 2}
	w := newTestWriter(t, store, Config{MaxAttempts: 3, RetryDelay: time.Millisecond})

	require.NoError(t, w.Save("transactions", []int{1}))
	require.NoError(t, w.Flush(context.Background()))

	st := w.Stats()
	assert.Equal(t, 1, st.Written)
	assert.Equal(t, 2, st.Retried)
	assert.Equal(t, 0, st.Failed)
}

func TestFailureIsDroppedAndCounted(t *testing.T) {
	store := &flakyStore{Store: memory.New(), fails: 10}
	w := newTestWriter(t, store, Config{MaxAttempts: 2, RetryDelay: time.Millisecond})

	require.NoError(t, w.Save("transactions", []int{1}))
	require.NoError(t, w.Flush(context.Background()))

	assert.Equal(t, 1, w.Stats().Failed)
	assert.Equal(t, 2, store.calls)
	_, found, _ := store.Get(context.Background(), "transactions")
	assert.False(t, found)

	// The writer keeps serving later saves.
	store.mu.Lock()
	store.fails = 0
	store.mu.Unlock()
	require.NoError(t, w.Save("transactions", []int{2}))
	require.NoError(t, w.Flush(context.Background()))
	got, found, _ := store.Get(context.Background(), "transactions")
	assert.True(t, found)
	assert.JSONEq(t, `[2]`, string(got))
}

func TestOnWrittenHook(t *testing.T) {
	var (
		mu   sync.Mutex
		keys []string
	)
	w := newTestWriter(t, memory.New(), Config{OnWritten: func(_ context.Context, key string, _ []byte) {
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
	}})

	require.NoError(t, w.Save("user_settings", map[string]string{"theme": "dark"}))
	require.NoError(t, w.Flush(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"user_settings"}, keys)
}

func TestCloseFlushesAndRejectsLaterSaves(t *testing.T) {
	store := memory.New()
	w := New(store, Config{}, log.Discard())

	require.NoError(t, w.Save("transactions", []int{1}))
	require.NoError(t, w.Close(context.Background()))

	_, found, _ := store.Get(context.Background(), "transactions")
	assert.True(t, found)
	assert.ErrorIs(t, w.Save("transactions", []int{2}), ErrClosed)
}

func TestSaveRejectsUnencodableValue(t *testing.T) {
	w := newTestWriter(t, memory.New(), Config{})
	assert.Error(t, w.Save("transactions", make(chan int)))
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, 100*time.Millisecond, backoff(base, 1))
	assert.Equal(t, 200*time.Millisecond, backoff(base, 2))
	assert.Equal(t, 400*time.Millisecond, backoff(base, 3))
	assert.Equal(t, maxRetryDelay, backoff(time.Second, 10))
}
