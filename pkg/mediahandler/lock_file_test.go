package mediahandler

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.mp4")

	lock, err := AcquireLock(outputPath)
	require.NoError(t, err)
	require.Equal(t, outputPath+".lock", lock.Path)

	content, err := os.ReadFile(lock.Path)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(content)))

	_, err = AcquireLock(outputPath)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
	require.NoFileExists(t, lock.Path)

	lock, err = AcquireLock(outputPath)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	var nilLock *LockFile
	require.NoError(t, nilLock.Release())
}
