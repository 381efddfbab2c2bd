package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "budget.json")

	s, err := New(path)
	require.NoError(t, err)

	_, found, err := s.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "transactions", []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Set(ctx, "user_settings", []byte(`{"name":"Rakoto"}`)))
	require.NoError(t, s.Set(ctx, "transactions", []byte(`[]`)))

	reopened, err := New(path)
	require.NoError(t, err)
	got, found, err := reopened.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[]`, string(got))

	got, found, err = reopened.Get(ctx, "user_settings")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"name":"Rakoto"}`, string(got))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestStoreRejectsInvalidValues(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "budget.json"))
	require.NoError(t, err)
	assert.Error(t, s.Set(context.Background(), "transactions", []byte(`{`)))
	assert.Error(t, s.Set(context.Background(), "", []byte(`{}`)))
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	s, err := New(path)
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "transactions")
	assert.Error(t, err)
}
