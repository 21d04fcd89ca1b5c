// Package repository persists the ledger and statistics documents as whole
// values under string keys.
package repository

import (
	"context"
	"strings"
	"time"
)

// Store is a key/value blob store whose writes replace a value wholesale.
// A reader never observes a partially written value.
type Store interface {
	// Read returns the stored bytes for key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write atomically replaces the value stored under key.
	Write(ctx context.Context, key string, data []byte) error

	// Close releases backend resources.
	Close() error
}

// validKey rejects keys that could escape the store root: empty keys,
// absolute paths, empty or dot segments and backslashes.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
