//go:build !unix

package docstore

// FileLocker degrades to a no-op where flock(2) is unavailable; the
// in-process mutex still serializes writers.
type FileLocker struct {
	NopLocker
	path string
}

func NewFileLocker(path string) *FileLocker {
	return &FileLocker{path: path}
}
