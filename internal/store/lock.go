package store

import (
	"errors"
	"fmt"
	"os"
)

// ErrStoreLocked indicates another process holds the advisory lock on the
// store file.
var ErrStoreLocked = errors.New("store locked by another process")

// Lock is an advisory lock on a store file, held via a sibling .lock file.
type Lock struct {
	path string
}

// AcquireLock takes the advisory lock for the store at path. The lock file is
// created with O_EXCL so only one process can hold it. Callers must Release.
func AcquireLock(path string) (*Lock, error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreLocked, lockPath)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return &Lock{path: lockPath}, nil
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
