//go:build unix

package docstore

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileLocker takes flock(2) locks on a sidecar lock file. Each TryLock opens
// its own descriptor, so concurrent callers in one process conflict the same
// way separate processes do.
type FileLocker struct {
	path string
}

// NewFileLocker returns a locker backed by the file at path. The file is
// created on first use and never written to.
func NewFileLocker(path string) *FileLocker {
	return &FileLocker{path: path}
}

func (l *FileLocker) TryLock(exclusive bool) (func(), error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("flock %s: %w", l.path, err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
