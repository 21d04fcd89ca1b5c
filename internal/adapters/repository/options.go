package repository

import (
	"os"
	"time"
)

// FileOption applies a configuration option to the FileStore.
type FileOption func(*FileStore)

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) FileOption {
	return func(s *FileStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// WithSyncDir controls whether the parent directory is fsynced after a
// rename so the new directory entry survives a crash.
func WithSyncDir(enabled bool) FileOption {
	return func(s *FileStore) {
		s.syncDir = enabled
	}
}

// BoltOption applies a configuration option to the BoltStore.
type BoltOption func(*BoltStore)

// WithBucket sets the bucket that holds every key.
func WithBucket(name string) BoltOption {
	return func(s *BoltStore) {
		if name != "" {
			s.bucket = []byte(name)
		}
	}
}

// WithOpenTimeout bounds how long Open waits for the file lock held by
// another process.
func WithOpenTimeout(d time.Duration) BoltOption {
	return func(s *BoltStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}
