package docstore

import "errors"

// ErrLocked is returned by Locker.TryLock while a conflicting lock is held.
var ErrLocked = errors.New("document lock held by another owner")

// Locker is a cooperative lock shared by every process that opens the same
// document. TryLock must not block.
type Locker interface {
	TryLock(exclusive bool) (release func(), err error)
}

// NopLocker grants every request immediately. Used for in-memory filesystems
// and platforms without advisory file locks.
type NopLocker struct{}

func (NopLocker) TryLock(bool) (func(), error) {
	return func() {}, nil
}
