package store

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// KV is a thin raw-bytes view over the store, used by the device-side
// components (local shelf, session) that manage their own encoding.
type KV struct {
	db *badger.DB
}

// NewKV wraps the store's database in a raw key-value view.
func NewKV(s *Store) *KV {
	return &KV{db: s.db}
}

// Read returns the value for key. The second return reports whether the
// key exists; a missing key is not an error.
func (kv *KV) Read(key string) ([]byte, bool, error) {
	var value []byte
	err := kv.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if isKeyNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// Write stores value under key, replacing any previous value.
func (kv *KV) Write(key string, value []byte) error {
	if err := kv.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (kv *KV) Delete(key string) error {
	if err := kv.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
