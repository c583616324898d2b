package sec

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores decoded filings between runs
type Cache interface {
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
}

// BadgerCache is a Cache on badger, values are msgpack encoded and expire after ttl
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

var _ Cache = (*BadgerCache)(nil)

// OpenCache opens a badger cache in dir, an empty dir keeps the cache in memory
func OpenCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

func (c *BadgerCache) Get(key string, v any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *BadgerCache) Set(key string, v any) error {
	bs, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), bs)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}
