// Package internals implements the sealing engine: the directory walker,
// the multi-algorithm hash pipeline, directory-digest composition, the
// per-file verification state machine, generation chaining, and the
// nested-history composition mechanism.
package internals

import "time"

// Algorithm identifies a hash algorithm recognized by the sealing engine.
type Algorithm string

// The closed set of algorithm ids the engine recognizes.
const (
	AlgoXXH64  Algorithm = "xxh64"
	AlgoXXH128 Algorithm = "xxh128"
	AlgoMD5    Algorithm = "md5"
	AlgoSHA1   Algorithm = "sha1"
	AlgoC4     Algorithm = "c4"
)

// Outcome is the terminal state of the per-file verification state machine.
type Outcome string

const (
	OutcomeNewFile             Outcome = "new_file"
	OutcomeVerified            Outcome = "verified"
	OutcomeVerifiedAndExtended Outcome = "verified_and_extended"
	OutcomeHashMismatch        Outcome = "hash_mismatch"
	OutcomeMissing             Outcome = "missing"
	OutcomeUnsupported         Outcome = "unsupported"
)

// Succeeds reports whether outcome is a passing outcome for the purpose of
// the seal's terminal exit code. VerifiedAndExtended is treated the same as
// Verified per the open question in spec.md §9 (DESIGN.md records the
// decision).
func (o Outcome) Succeeds() bool {
	switch o {
	case OutcomeNewFile, OutcomeVerified, OutcomeVerifiedAndExtended:
		return true
	default:
		return false
	}
}

// HashValue holds a hash digest together with the algorithm that produced it.
type HashValue struct {
	Algorithm Algorithm
	Digest    []byte
}

// FileEntry is a file observed by a generation, identified by its
// root-relative, normalized path.
type FileEntry struct {
	Path         string
	Size         int64
	ModTime      time.Time
	Hashes       map[Algorithm][]byte
	Outcome      Outcome
	MismatchOld  []byte // set only for OutcomeHashMismatch, in the algorithm being verified
	MismatchNew  []byte
	MismatchAlgo Algorithm
}

// DirEntry is a directory observed by a generation, holding the two digests
// (content, structure) it was sealed with, per algorithm.
type DirEntry struct {
	Path             string
	ModTime          time.Time
	ContentDigest    map[Algorithm][]byte
	StructureDigest  map[Algorithm][]byte
	DirectoryHashSkipped bool
}

// ChildHistoryRef records a nested sealed root absorbed by reference into a
// parent generation, without re-hashing the child's files.
type ChildHistoryRef struct {
	RelPath         string
	Generation      int
	RootContent     map[Algorithm][]byte
	RootStructure   map[Algorithm][]byte
}

// CreatorInfo records who/what produced a generation. Metadata only: it does
// not participate in any digest computation.
type CreatorInfo struct {
	ToolName    string
	ToolVersion string
	CreatedAt   time.Time
	HostName    string
	ProcessID   string // UUID, one per seal invocation
}

// Generation is an immutable snapshot written by exactly one seal operation
// on exactly one sealed root.
type Generation struct {
	Number       int
	PreviousRef  int // 0 means "no previous generation" (N=1)
	CreatedAt    time.Time
	Files        []FileEntry
	Dirs         []DirEntry
	Children     []ChildHistoryRef
	IgnorePatterns []string
	Creator      CreatorInfo
	RootContent  map[Algorithm][]byte
	RootStructure map[Algorithm][]byte
}

// HasFailures reports whether any entry in the generation recorded a failing
// outcome (HashMismatch or Missing), which determines the seal's terminal
// exit code per spec.md §4.7 step 6.
func (g *Generation) HasFailures() bool {
	for _, f := range g.Files {
		if !f.Outcome.Succeeds() {
			return true
		}
	}
	return false
}
