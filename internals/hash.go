package internals

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher is the capability set a hash algorithm exposes to the engine. It
// mirrors §9's "new_state, update, finalize, id, digest_size" abstraction.
type Hasher interface {
	// Write feeds more bytes into the running hash state.
	Write(p []byte) (int, error)
	// Sum returns the final digest for the bytes written so far. It does not
	// mutate the hasher's state.
	Sum() []byte
	// Reset returns the hasher to its initial state so it can be reused.
	Reset()
	// Size returns the digest's fixed width in bytes.
	Size() int
	// Algorithm returns the algorithm id this hasher implements.
	Algorithm() Algorithm
}

// NewHasher constructs a fresh Hasher for the given algorithm id. It returns
// a *ConfigError if algo is not one of the ids the engine recognizes.
func NewHasher(algo Algorithm) (Hasher, error) {
	switch algo {
	case AlgoXXH64:
		return newXXH64(), nil
	case AlgoXXH128:
		return newXXH128(), nil
	case AlgoMD5:
		return newMD5(), nil
	case AlgoSHA1:
		return newSHA1(), nil
	case AlgoC4:
		return newC4(), nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown hash algorithm %q", algo)}
	}
}

// SupportedAlgorithms lists every algorithm id the engine recognizes, in the
// order spec.md §6 lists them.
func SupportedAlgorithms() []Algorithm {
	return []Algorithm{AlgoXXH64, AlgoXXH128, AlgoMD5, AlgoSHA1, AlgoC4}
}

// FormatDigest renders digest in algo's canonical textual representation,
// per spec.md §6: hex for fixed-width binary digests, or the digest bytes
// verbatim for c4, whose Sum() already returns the ASCII c4-base58 string
// rather than raw binary.
func FormatDigest(algo Algorithm, digest []byte) string {
	if algo == AlgoC4 {
		return string(digest)
	}
	return hex.EncodeToString(digest)
}

// IsSupportedAlgorithm reports whether algo is one of SupportedAlgorithms.
func IsSupportedAlgorithm(algo Algorithm) bool {
	for _, a := range SupportedAlgorithms() {
		if a == algo {
			return true
		}
	}
	return false
}

// HashStream drives one or more Hashers over a single pass of r, per the
// HashEngine contract in spec.md §4.1: every algorithm's final digest is
// available after exactly one read of the byte source. It never fails on
// algorithm semantics — only on read errors from r, wrapped as an *IOError
// tagged with path for caller context.
func HashStream(r io.Reader, path string, hashers ...Hasher) error {
	if len(hashers) == 0 {
		return nil
	}
	writers := make([]io.Writer, len(hashers))
	for i, h := range hashers {
		h.Reset()
		writers[i] = h
	}
	mw := io.MultiWriter(writers...)
	if _, err := io.Copy(mw, r); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// HashFile streams the raw byte content of the file at path through every
// hasher in one pass, per the File-hash rule in spec.md §4.1. Empty files
// produce each algorithm's empty-input digest, since io.Copy on an empty
// reader is a no-op and every Hasher starts from its zero state.
func HashFile(path string, hashers ...Hasher) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer f.Close()
	return HashStream(f, path, hashers...)
}
