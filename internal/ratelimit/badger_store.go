package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements CounterStore on an embedded Badger database with
// native per-key TTL. Counters are ephemeral by design; losing the store
// on restart only resets in-flight windows.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a Badger database at path. An empty path runs the
// store fully in memory.
func NewBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate limit store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

const incrementRetries = 8

// Increment atomically bumps the counter for key. Badger transactions are
// serializable, so two concurrent increments cannot both observe the same
// count; the loser retries on conflict. The counter keeps its original
// expiry across increments, which is what makes the window fixed.
func (s *BadgerStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var count int64
	var expiresIn time.Duration

	for attempt := 0; attempt < incrementRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err == badger.ErrKeyNotFound {
				count = 1
				expiresIn = window
				entry := badger.NewEntry([]byte(key), []byte("1")).WithTTL(window)
				return txn.SetEntry(entry)
			}
			if err != nil {
				return err
			}

			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			current, err := strconv.ParseInt(string(val), 10, 64)
			if err != nil {
				current = 0
			}

			expiresIn = time.Until(time.Unix(int64(item.ExpiresAt()), 0))
			if expiresIn <= 0 {
				// Expired between Get and now; start a fresh window.
				count = 1
				expiresIn = window
				entry := badger.NewEntry([]byte(key), []byte("1")).WithTTL(window)
				return txn.SetEntry(entry)
			}

			count = current + 1
			entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(count, 10))).WithTTL(expiresIn)
			return txn.SetEntry(entry)
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return 0, 0, err
		}
		return count, expiresIn, nil
	}

	return 0, 0, badger.ErrConflict
}
