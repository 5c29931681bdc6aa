package store

import (
	"context"
	"degreetrack/internal/config"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared contract against a backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "session"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	require.NoError(t, s.Put(ctx, "session", []byte(`{"v":1}`)))
	got, err := s.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(got))

	require.NoError(t, s.Put(ctx, "session", []byte(`{"v":2}`)))
	got, err = s.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got), "Put overwrites")

	require.NoError(t, s.Put(ctx, "other", []byte("x")))
	require.NoError(t, s.Delete(ctx, "session"))
	_, err = s.Get(ctx, "session")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))

	assert.NoError(t, s.Delete(ctx, "never-written"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(context.Background(), "k", buf))
	buf[0] = 'z'
	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteStoreInMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create sqlite store: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "degree.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "session", []byte("saved")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "session")
	require.NoError(t, err)
	assert.Equal(t, "saved", string(got))
	assert.Equal(t, path, reopened.Path())
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestBadgerStoreInMemory(t *testing.T) {
	s, err := NewBadgerStore("")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ws := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{"memory", config.StoreConfig{Backend: "memory"}, false},
		{"sqlite relative path", config.StoreConfig{Backend: "sqlite", Path: ".degree/degree.db"}, false},
		{"badger", config.StoreConfig{Backend: "badger", Path: ".degree/badger"}, false},
		{"unknown", config.StoreConfig{Backend: "postgres"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), tt.cfg, ws)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			exerciseStore(t, s)
		})
	}
}

func TestOpenRedisWithoutAddress(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "redis"}, t.TempDir())
	assert.Error(t, err)
}
