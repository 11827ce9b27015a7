//go:build unix

package format

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory, exclusive, non-blocking flock on path,
// creating it if necessary. The returned release function closes the file
// descriptor, which drops the lock.
func lockFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
