package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/arcade/pkg/metrics"
	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "arcade"

// BoltStore keeps every key in one bbolt bucket. Each write is its own
// read-write transaction, so a crash leaves the previous committed value.
type BoltStore struct {
	db      *bolt.DB
	bucket  []byte
	timeout time.Duration
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens (creating if needed) the database file at path.
func OpenBoltStore(path string, opts ...BoltOption) (*BoltStore, error) {
	s := &BoltStore{
		bucket:  []byte(defaultBucket),
		timeout: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}

	s.db = db
	return s, nil
}

// Read implements Store.
func (s *BoltStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.RecordStorageLatency("bolt", "read", sinceMs(start)) }()

	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid for the life of the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("view transaction: %w", err)
	}
	return out, nil
}

// Write implements Store.
func (s *BoltStore) Write(ctx context.Context, key string, data []byte) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordStorageLatency("bolt", "write", sinceMs(start)) }()

	if err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return fmt.Errorf("bucket %s: %w", s.bucket, err)
		}
		if err := b.Put([]byte(key), data); err != nil {
			return fmt.Errorf("put to bucket: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *BoltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close bolt: %w", err)
	}
	return nil
}

func (s *BoltStore) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
