package internals

import "bytes"

// Verifier decides the per-file Outcome of one walked file against a
// HistoryIndex, per the state machine of spec.md §4.5:
//
//	Unknown -> Hashing -> NewFile               (path never recorded before)
//	Unknown -> Hashing -> Verified               (every previously known
//	                                               algorithm still matches)
//	Unknown -> Hashing -> VerifiedAndExtended    (every previously known
//	                                               algorithm matches, and at
//	                                               least one new algorithm
//	                                               was added)
//	Unknown -> Hashing -> HashMismatch           (some previously known
//	                                               algorithm no longer matches)
type Verifier struct {
	History *HistoryIndex
}

// Verify classifies one freshly hashed file. digests holds every algorithm
// this seal computed for the file.
func (v *Verifier) Verify(path string, digests map[Algorithm][]byte) FileEntry {
	entry := FileEntry{Path: path, Hashes: digests}

	known := v.History.KnownHashes(path)
	if len(known) == 0 {
		entry.Outcome = OutcomeNewFile
		return entry
	}

	extended := false
	for algo, newDigest := range digests {
		oldDigest, wasKnown := known[algo]
		if !wasKnown {
			extended = true
			continue
		}
		if !bytes.Equal(oldDigest, newDigest) {
			entry.Outcome = OutcomeHashMismatch
			entry.MismatchAlgo = algo
			entry.MismatchOld = oldDigest
			entry.MismatchNew = newDigest
			return entry
		}
	}

	if extended {
		entry.Outcome = OutcomeVerifiedAndExtended
	} else {
		entry.Outcome = OutcomeVerified
	}
	return entry
}

// VerifyMissing records a path the HistoryIndex knows about but which this
// walk did not find on disk.
func (v *Verifier) VerifyMissing(path string) FileEntry {
	return FileEntry{Path: path, Outcome: OutcomeMissing}
}

// MissingPaths returns every path the HistoryIndex last saw present that is
// absent from presentPaths (a set of paths this walk actually found).
func (v *Verifier) MissingPaths(presentPaths map[string]bool) []string {
	var missing []string
	for _, p := range v.History.AllKnownPaths() {
		if presentPaths[p] {
			continue
		}
		if v.History.IsLastKnownPresent(p) {
			missing = append(missing, p)
		}
	}
	return missing
}
