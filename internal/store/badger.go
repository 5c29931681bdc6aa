package store

import (
	"context"
	"degreetrack/internal/logging"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore is an embedded LSM key/value backend.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a badger directory. An empty dir opens an
// in-memory instance.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewBadgerStore")
	defer timer.Stop()

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		logging.StoreError("Failed to open badger at %s: %v", dir, err)
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	logging.Store("BadgerStore ready at %s", dir)
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.StoreWarn("badger read %s: %v", key, err)
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return out, nil
}

func (b *BadgerStore) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		logging.StoreWarn("badger write %s: %v", key, err)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *BadgerStore) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerStore) Close() error { return b.db.Close() }
