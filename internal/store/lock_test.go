package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	lock, err := AcquireLock(path)
	require.NoError(t, err)

	_, err = os.Stat(path + ".lock")
	assert.NoError(t, err, "lock file exists while held")

	require.NoError(t, lock.Release())

	_, err = os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err), "lock file removed on release")
}

func TestAcquireLockContended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	_, err = AcquireLock(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreLocked)
}

func TestReleaseTwice(t *testing.T) {
	lock, err := AcquireLock(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	assert.NoError(t, lock.Release(), "release is tolerant of a missing file")
}
