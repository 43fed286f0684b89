package lock

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bashhack/commitbuddy/internal/errors"
)

// Locker guards one repository against concurrent commitbuddy sessions
type Locker struct {
	path string
	file *os.File
	pid  int
}

// New creates a Locker for repoPath with its lock file in the system temp dir
func New(repoPath string) (*Locker, error) {
	return newLocker(os.TempDir(), repoPath)
}

func newLocker(dir, repoPath string) (*Locker, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, errors.NewLockError("", 0,
			errors.Wrapf(errors.ErrLockAcquisitionFailure, "resolve %s: %v", repoPath, err))
	}

	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return &Locker{
		path: filepath.Join(dir, fmt.Sprintf("commitbuddy-%x.lock", sum[:8])),
		pid:  os.Getpid(),
	}, nil
}

// Path returns the lock file location
func (l *Locker) Path() string {
	return l.path
}

// Held reports whether this Locker currently owns the lock
func (l *Locker) Held() bool {
	return l.file != nil
}

// Acquire takes the lock or fails with ErrAlreadyRunning when a live
// session owns it. Acquiring a held lock is a no-op.
func (l *Locker) Acquire() error {
	if l.file != nil {
		return nil
	}

	f, err := l.open()
	if err != nil {
		return err
	}

	if err := f.Truncate(0); err != nil {
		l.abandon(f)
		return l.failure("truncate lock file", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		l.abandon(f)
		return l.failure("write PID to lock file", err)
	}

	l.file = f
	return nil
}

// Release removes the lock file and drops the lock. Releasing an unheld
// lock is a no-op.
func (l *Locker) Release() error {
	if l.file == nil {
		return nil
	}

	var err error
	// Unlink before unlocking so a waiter never wins an orphaned inode
	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		err = l.failure("remove lock file", removeErr)
	}
	if unlockErr := unlock(l.file); unlockErr != nil && err == nil {
		err = l.failure("unlock", unlockErr)
	}
	if closeErr := l.file.Close(); closeErr != nil && err == nil {
		err = l.failure("close lock file", closeErr)
	}

	l.file = nil
	return err
}

// abandon drops a half-acquired lock file
func (l *Locker) abandon(f *os.File) {
	_ = os.Remove(l.path)
	_ = unlock(f)
	_ = f.Close()
}

func (l *Locker) failure(what string, err error) error {
	return errors.NewLockError(l.path, 0,
		errors.Wrapf(errors.ErrLockAcquisitionFailure, "%s: %v", what, err))
}

func (l *Locker) held(pid int) error {
	return errors.NewLockError(l.path, pid, errors.ErrAlreadyRunning)
}

// readPID returns the PID stored in the lock file, or 0 when unreadable
func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
