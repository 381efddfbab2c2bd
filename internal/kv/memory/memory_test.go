package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, found, err := s.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.False(t, found)

	in := []byte(`[1]`)
	require.NoError(t, s.Set(ctx, "transactions", in))
	in[1] = '2'

	got, found, err := s.Get(ctx, "transactions")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[1]`, string(got))

	got[1] = '3'
	again, _, _ := s.Get(ctx, "transactions")
	assert.Equal(t, `[1]`, string(again), "stored value was aliased")
	assert.Equal(t, 1, s.Sets())
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	assert.Error(t, New().Set(context.Background(), "", []byte(`{}`)))
}

func TestNewWithItems(t *testing.T) {
	s := NewWithItems(map[string][]byte{"user_settings": []byte(`{"name":"x"}`)})
	got, found, _ := s.Get(context.Background(), "user_settings")
	require.True(t, found)
	assert.Equal(t, `{"name":"x"}`, string(got))
	assert.Len(t, s.Keys(), 1)
}
