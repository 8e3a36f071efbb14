package mediahandler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

var ErrLocked = errors.New("media file is locked by another program")

const lockFileSuffix = ".lock"

// LockFile marks an output path as being written.
type LockFile struct {
	Path string
	file *os.File
}

func LockFilePath(outputPath string) string {
	return outputPath + lockFileSuffix
}

// AcquireLock fails with ErrLocked if the lock file already exists.
func AcquireLock(outputPath string) (*LockFile, error) {
	path := LockFilePath(outputPath)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("'%s': %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("unable to create the lock file '%s': %w", path, err)
	}
	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("unable to write the lock file '%s': %w", path, err)
	}
	return &LockFile{
		Path: path,
		file: f,
	}, nil
}

// Release is a no-op on an already released lock.
func (l *LockFile) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	closeErr := l.file.Close()
	l.file = nil
	if err := os.Remove(l.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to remove the lock file '%s': %w", l.Path, err)
	}
	return closeErr
}
