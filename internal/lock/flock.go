//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package lock

import (
	"os"
	"syscall"

	"github.com/bashhack/commitbuddy/internal/errors"
)

const maxOpenAttempts = 3

// open flocks the lock file. The kernel drops a flock when its owner exits,
// so a file left behind by a crashed session is simply reused.
func (l *Locker) open() (*os.File, error) {
	for attempt := 0; attempt < maxOpenAttempts; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, l.failure("open lock file", err)
		}

		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			_ = f.Close()
			// EWOULDBLOCK and EAGAIN are distinct on some older systems
			if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
				return nil, l.held(readPID(l.path))
			}
			return nil, l.failure("flock", err)
		}

		// The previous owner may have unlinked the file between our open and
		// flock. Only the inode still at l.path counts.
		if sameFile(f, l.path) {
			return f, nil
		}
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
	}
	return nil, l.failure("open lock file", errors.New("lock file kept changing"))
}

func unlock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

func sameFile(f *os.File, path string) bool {
	opened, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(opened, current)
}
