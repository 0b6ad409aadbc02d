// Package docstore persists a single JSON document crash-safely.
//
// Writes go to a temp file in the same directory which is synced and then
// renamed over the canonical path, so readers only ever see a whole old or a
// whole new document. The previous version is copied to <path>.bak. Access is
// coordinated with an advisory lock on <path>.lock.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/afero"
)

const (
	defaultLockWait = 2 * time.Second
	lockPoll        = 25 * time.Millisecond

	lockSuffix   = ".lock"
	backupSuffix = ".bak"
)

var ErrPathRequired = errors.New("document path not provided")

type options struct {
	fs       afero.Fs
	locker   Locker
	lockWait time.Duration
}

// Option configures a Store.
type Option func(*options)

// WithFs sets the filesystem. Non-OS filesystems default to NopLocker.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLocker overrides the cross-process locker.
func WithLocker(l Locker) Option {
	return func(o *options) { o.locker = l }
}

// WithLockWait bounds how long Read and Write wait for the file lock.
func WithLockWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockWait = d
		}
	}
}

// Store holds one document of type T. Read never fails: on any error it
// serves the last document it successfully read or wrote, or defaults().
type Store[T any] struct {
	path     string
	fs       afero.Fs
	locker   Locker
	lockWait time.Duration
	defaults func() T

	// mu serializes in-process access to the file; the locker extends that
	// to other processes.
	mu sync.RWMutex

	snapMu sync.RWMutex
	snap   *T
}

// New opens the document at path. A missing document is restored from
// <path>.bak when one exists, otherwise defaults() is written.
func New[T any](path string, defaults func() T, opts ...Option) (*Store[T], error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	o := options{lockWait: defaultLockWait}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.locker == nil {
		if _, ok := o.fs.(*afero.OsFs); ok {
			o.locker = NewFileLocker(path + lockSuffix)
		} else {
			o.locker = NopLocker{}
		}
	}

	s := &Store[T]{
		path:     path,
		fs:       o.fs,
		locker:   o.locker,
		lockWait: o.lockWait,
		defaults: defaults,
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}

	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if !exists {
		restored, err := s.restoreBackup()
		if err != nil {
			return nil, err
		}
		if !restored {
			if err := s.Write(defaults()); err != nil {
				return nil, fmt.Errorf("initialize document: %w", err)
			}
			return s, nil
		}
		log.Printf("[docstore] %s was missing, restored from %s", path, s.BackupPath())
	}

	// Prime the snapshot; a damaged file is left alone until the next write.
	if doc, err := s.read(); err != nil {
		log.Printf("[docstore] initial read of %s failed: %v", path, err)
	} else {
		s.setSnapshot(doc)
	}

	return s, nil
}

// Path returns the canonical document path.
func (s *Store[T]) Path() string { return s.path }

// BackupPath returns where the previous version is kept.
func (s *Store[T]) BackupPath() string { return s.path + backupSuffix }

// LockPath returns the sidecar lock file path.
func (s *Store[T]) LockPath() string { return s.path + lockSuffix }

// Snapshot returns the last document read or written in this process.
func (s *Store[T]) Snapshot() (T, bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	if s.snap == nil {
		var zero T
		return zero, false
	}
	return *s.snap, true
}

func (s *Store[T]) setSnapshot(doc T) {
	s.snapMu.Lock()
	s.snap = &doc
	s.snapMu.Unlock()
}

// Read loads the document under a shared lock. Fields missing from the file
// keep their default values.
func (s *Store[T]) Read() T {
	doc, err := s.read()
	if err != nil {
		log.Printf("[docstore] read %s failed, serving last good copy: %v", s.path, err)
		if snap, ok := s.Snapshot(); ok {
			return snap
		}
		return s.defaults()
	}
	s.setSnapshot(doc)
	return doc
}

func (s *Store[T]) read() (T, error) {
	var zero T

	s.mu.RLock()
	defer s.mu.RUnlock()

	release, err := s.acquire(false)
	if err != nil {
		return zero, err
	}
	defer release()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return zero, fmt.Errorf("read document: %w", err)
	}
	return s.decode(data)
}

// decode overlays data onto a fresh default document. encoding/json only
// assigns fields present in the input and recurses into nested objects, so
// this is a field-by-field backfill from the typed defaults.
func (s *Store[T]) decode(data []byte) (T, error) {
	doc := s.defaults()
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Mistyped fields keep their defaults; the rest of the document is usable.
			log.Printf("[docstore] %s: field %q has wrong type, using default", s.path, typeErr.Field)
			return doc, nil
		}
		var zero T
		return zero, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Write replaces the document atomically under an exclusive lock. The
// in-memory snapshot is updated even when the write fails.
func (s *Store[T]) Write(doc T) error {
	s.setSnapshot(doc)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquire(true)
	if err != nil {
		return err
	}
	defer release()

	return s.replace(data)
}

// replace refreshes <path>.bak from the current document, then renames a
// fully written temp file over the canonical path. That final rename is the
// only mutation of the canonical path.
func (s *Store[T]) replace(data []byte) error {
	s.backup()

	if err := s.writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	s.syncDir(filepath.Dir(s.path))
	return nil
}

// writeAtomic writes data to a synced temp file beside path and renames it
// into place.
func (s *Store[T]) writeAtomic(path string, data []byte) (err error) {
	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return s.fs.Rename(tmpName, path)
}

// backup copies the current document to <path>.bak. Best effort.
func (s *Store[T]) backup() {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[docstore] read %s for backup: %v", s.path, err)
		}
		return
	}
	if err := s.writeAtomic(s.BackupPath(), data); err != nil {
		log.Printf("[docstore] backup %s failed: %v", s.path, err)
	}
}

// restoreBackup copies <path>.bak back to the canonical path. It reports
// false when there is no backup to restore.
func (s *Store[T]) restoreBackup() (bool, error) {
	data, err := afero.ReadFile(s.fs, s.BackupPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read backup: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquire(true)
	if err != nil {
		return false, err
	}
	defer release()

	if err := s.writeAtomic(s.path, data); err != nil {
		return false, fmt.Errorf("restore backup: %w", err)
	}
	s.syncDir(filepath.Dir(s.path))
	return true, nil
}

// syncDir flushes the directory entry for the rename. Best effort.
func (s *Store[T]) syncDir(dir string) {
	d, err := s.fs.Open(dir)
	if err != nil {
		log.Printf("[docstore] open dir %s for sync: %v", dir, err)
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		log.Printf("[docstore] sync dir %s: %v", dir, err)
	}
}

func (s *Store[T]) acquire(exclusive bool) (func(), error) {
	var release func()
	attempts := uint(s.lockWait/lockPoll) + 1

	err := retry.Do(
		func() error {
			r, err := s.locker.TryLock(exclusive)
			if err != nil {
				return err
			}
			release = r
			return nil
		},
		retry.Attempts(attempts),
		retry.Delay(lockPoll),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrLocked)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("acquire lock on %s: %w", s.LockPath(), err)
	}
	return release, nil
}
