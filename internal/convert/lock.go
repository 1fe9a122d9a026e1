package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockDir holds the sidecar lock files. Locks live outside the converted tree
// so a run never adds files to it, and the data file itself is never locked
// (Windows byte-range locks would block our own read and rename).
var lockDir = filepath.Join(os.TempDir(), "filetoutf8-locks")

// lockPath returns the sidecar lock file for realPath. Every process that
// converts the same file derives the same path.
func lockPath(realPath string) string {
	sum := sha256.Sum256([]byte(realPath))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:16])+".lock")
}

// tryLock takes the non-blocking sidecar lock for realPath. It returns a nil
// lock and no error when another process holds it.
func tryLock(realPath string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	lock := flock.New(lockPath(realPath))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock for %s: %w", realPath, err)
	}
	if !locked {
		return nil, nil
	}
	return lock, nil
}
