package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/okian/arcade/pkg/metrics"
)

const fileExt = ".json"

// FileStore keeps one file per key under a root directory. Writes go to a
// temporary file in the target directory which is then renamed over the
// old file, so readers see either the old or the new content.
type FileStore struct {
	root     string
	fileMode os.FileMode
	syncDir  bool
	closed   atomic.Bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates root if needed and returns a store rooted there.
func NewFileStore(root string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{
		root:     root,
		fileMode: 0o644,
		syncDir:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root %s: %w", root, err)
	}
	return s, nil
}

// Path returns the file that backs key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key)+fileExt)
}

// Read implements Store.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.RecordStorageLatency("file", "read", sinceMs(start)) }()

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write implements Store.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (err error) {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordStorageLatency("file", "write", sinceMs(start)) }()

	target := s.Path(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp for %s: %w", key, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp for %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", key, err)
	}
	if err = os.Chmod(tmpName, s.fileMode); err != nil {
		return fmt.Errorf("chmod temp for %s: %w", key, err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename temp for %s: %w", key, err)
	}

	if s.syncDir {
		// Best effort: some filesystems refuse fsync on directories.
		if d, derr := os.Open(dir); derr == nil {
			_ = d.Sync()
			_ = d.Close()
		}
	}
	return nil
}

// Close implements Store. Files need no teardown; later calls fail.
func (s *FileStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *FileStore) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
