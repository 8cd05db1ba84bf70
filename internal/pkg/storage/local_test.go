package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "user", strings.NewReader(`{"username":"admin"}`)))
	require.NoError(t, s.Save(ctx, "user", strings.NewReader(`{"username":"user"}`)))

	rc, err := s.Get(ctx, "user")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"username":"user"}`, string(b))
}

func TestLocalStorageMissingKey(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(ctx, "user")
	assert.ErrorIs(t, err, ErrNotExist)

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "user"))
	assert.NoError(t, s.Delete(ctx, "user"))
}

func TestLocalStorageRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../user", "a/b", `a\b`, ".."} {
		err := s.Save(ctx, key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}
