//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd)

package lock

import (
	"os"
)

// open creates the lock file exclusively. A file whose PID no longer runs is
// stale and gets replaced once.
func (l *Locker) open() (*os.File, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, l.failure("create lock file", err)
		}

		pid := readPID(l.path)
		if pid > 0 && processRunning(pid) {
			return nil, l.held(pid)
		}
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return nil, l.failure("remove stale lock file", err)
		}
	}
	return nil, l.held(readPID(l.path))
}

func unlock(*os.File) error {
	return nil
}

func processRunning(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
