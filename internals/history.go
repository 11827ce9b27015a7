package internals

// pathRecord tracks what the replay of generations 1..N has learned about a
// single root-relative path.
type pathRecord struct {
	hashes             map[Algorithm][]byte
	hashGeneration     map[Algorithm]int
	lastPresentGen     int
	lastMissingGen     int
}

// HistoryIndex is the replayed aggregate of every generation ever recorded
// for one sealed root, keyed by normalized relative path (spec.md §4.4).
type HistoryIndex struct {
	records map[string]*pathRecord
	// children are nested sealed-root references absorbed into prior
	// generations of this root, keyed by relative path (latest reference
	// wins on replay, mirroring how a later generation can re-seal a
	// previously-nested child).
	children map[string]ChildHistoryRef
}

// NewHistoryIndex builds an empty index. Use BuildHistoryIndex to replay an
// actual generation sequence.
func NewHistoryIndex() *HistoryIndex {
	return &HistoryIndex{
		records:  make(map[string]*pathRecord),
		children: make(map[string]ChildHistoryRef),
	}
}

// BuildHistoryIndex replays generations 1..N, in order, folding each one into
// a fresh HistoryIndex. generations must already be validated contiguous by
// the caller (the ManifestStore is responsible for CorruptHistory detection).
func BuildHistoryIndex(generations []Generation) *HistoryIndex {
	idx := NewHistoryIndex()
	for _, gen := range generations {
		idx.apply(gen)
	}
	return idx
}

func (idx *HistoryIndex) apply(gen Generation) {
	for _, f := range gen.Files {
		rec := idx.recordFor(f.Path)
		if f.Outcome == OutcomeMissing {
			rec.lastMissingGen = gen.Number
			continue
		}
		rec.lastPresentGen = gen.Number
		for algo, digest := range f.Hashes {
			// Invariant 2: a recorded hash for (path, algorithm) is
			// immutable once written. The replay never overwrites an
			// existing algorithm value; it only records an algorithm the
			// first time it is seen for this path.
			if _, exists := rec.hashes[algo]; !exists {
				rec.hashes[algo] = digest
				rec.hashGeneration[algo] = gen.Number
			}
		}
	}
	for _, ref := range gen.Children {
		idx.children[ref.RelPath] = ref
	}
}

func (idx *HistoryIndex) recordFor(path string) *pathRecord {
	rec, ok := idx.records[path]
	if !ok {
		rec = &pathRecord{
			hashes:         make(map[Algorithm][]byte),
			hashGeneration: make(map[Algorithm]int),
		}
		idx.records[path] = rec
	}
	return rec
}

// KnownHashes returns every algorithm → hash pair recorded for path across
// all replayed generations.
func (idx *HistoryIndex) KnownHashes(path string) map[Algorithm][]byte {
	rec, ok := idx.records[path]
	if !ok {
		return nil
	}
	out := make(map[Algorithm][]byte, len(rec.hashes))
	for algo, digest := range rec.hashes {
		out[algo] = digest
	}
	return out
}

// IsKnown reports whether path has ever been recorded by any generation.
func (idx *HistoryIndex) IsKnown(path string) bool {
	_, ok := idx.records[path]
	return ok
}

// AllKnownPaths returns every path ever recorded by any generation,
// regardless of its most recent present/missing state.
func (idx *HistoryIndex) AllKnownPaths() []string {
	out := make([]string, 0, len(idx.records))
	for p := range idx.records {
		out = append(out, p)
	}
	return out
}

// IsLastKnownPresent reports whether the most recent generation to mention
// path recorded it as present (as opposed to missing).
func (idx *HistoryIndex) IsLastKnownPresent(path string) bool {
	rec, ok := idx.records[path]
	if !ok {
		return false
	}
	return rec.lastPresentGen > rec.lastMissingGen
}

// ChildHistories enumerates the nested sealed-root references absorbed into
// this root's prior generations.
func (idx *HistoryIndex) ChildHistories() []ChildHistoryRef {
	out := make([]ChildHistoryRef, 0, len(idx.children))
	for _, ref := range idx.children {
		out = append(out, ref)
	}
	return out
}
