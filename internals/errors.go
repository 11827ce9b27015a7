package internals

import "fmt"

// IOError wraps a filesystem read/write failure. Propagating an IOError
// aborts the current root's seal; nested roots already sealed remain
// committed (spec.md §7).
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error at %s: %s", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CorruptHistoryError signals that a manifest store violates one of the
// invariants in spec.md §3: non-contiguous generations, a mismatched
// previous-reference, or an unparsable stored document. It is fatal to the
// current root's seal.
type CorruptHistoryError struct {
	RootPath string
	Reason   string
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("corrupt history at %s: %s", e.RootPath, e.Reason)
}

// VerificationFailedError is returned by the CLI layer when a seal or verify
// operation completed but recorded one or more HashMismatch/Missing
// outcomes. It carries the counts so the caller can format a summary without
// re-walking the generation.
type VerificationFailedError struct {
	Mismatches int
	Missing    int
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("verification failed: %d mismatch(es), %d missing file(s)", e.Mismatches, e.Missing)
}

// ConfigError signals a rejected configuration: an unknown algorithm id, a
// nonexistent or non-directory root path, or an unreadable or invalid
// config file. Raised before any file is hashed or any generation written.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config error: " + e.Reason }

// UnsupportedEntryError records an entry the walker declined to hash — a
// symbolic link or special file. It never aborts a seal and never affects
// the terminal exit code; it is surfaced only through verbose logging.
type UnsupportedEntryError struct {
	Path   string
	Reason string
}

func (e *UnsupportedEntryError) Error() string {
	return fmt.Sprintf("unsupported entry %s: %s", e.Path, e.Reason)
}
