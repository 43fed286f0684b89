// Package lock keeps two commitbuddy sessions from committing in the same
// repository at once.
//
// A Locker owns a file named after a hash of the repository's absolute path:
//
//	$TMPDIR/commitbuddy-<hash>.lock
//
// The file holds the owner's PID so a rejected session can say who holds it.
// On Linux, macOS and the BSDs the lock is an exclusive flock(2), which the
// kernel drops when the owner exits, so leftover files from crashed sessions
// are reused. Elsewhere the file is created exclusively and replaced when its
// PID is no longer running.
//
// Basic usage:
//
//	locker, err := lock.New(repoPath)
//	if err != nil {
//	    return err
//	}
//	if err := locker.Acquire(); err != nil {
//	    return err // errors.ErrAlreadyRunning when another session holds it
//	}
//	defer locker.Release()
//
// A Locker is not safe for concurrent use.
package lock
