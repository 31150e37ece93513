package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"cratekeeper/internal/services"
)

const lockRetryDelay = 50 * time.Millisecond

// FileSource loads and persists collection documents as files on local disk.
// The locator is the file path. Writes go through a sidecar flock plus a
// same-directory temp file and rename, so a crashed write never leaves a
// truncated collection behind and concurrent processes cannot interleave
// writes.
type FileSource struct{}

// NewFileSource returns a FileSource.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Load reads the file at locator.
func (s *FileSource) Load(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(locator)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "filesource", "load", locator, err)
	}
	return data, nil
}

// Persist writes data to locator atomically under an advisory lock.
func (s *FileSource) Persist(ctx context.Context, locator string, data []byte) error {
	lock := flock.New(locator + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return services.Wrap(services.ErrExternal, "filesource", "persist",
			fmt.Sprintf("lock %q", locator), err)
	}
	if !locked {
		return services.Wrap(services.ErrConflict, "filesource", "persist",
			fmt.Sprintf("source %q held by another writer", locator), nil)
	}
	defer lock.Unlock()

	dir := filepath.Dir(locator)
	tmp, err := os.CreateTemp(dir, filepath.Base(locator)+".tmp-*")
	if err != nil {
		return services.Wrap(services.ErrExternal, "filesource", "persist", locator, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrExternal, "filesource", "persist", locator, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrExternal, "filesource", "persist", locator, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrExternal, "filesource", "persist", locator, err)
	}
	if err := os.Rename(tmpName, locator); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrExternal, "filesource", "persist", locator, err)
	}
	return nil
}
