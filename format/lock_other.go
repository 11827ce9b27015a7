//go:build !unix

package format

// lockFile has no advisory-locking implementation outside unix platforms.
// Per spec.md §5 the lock is optional; callers proceed without it.
func lockFile(path string) (func(), error) {
	return func() {}, nil
}
