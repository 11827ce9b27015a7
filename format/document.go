package format

import (
	"time"

	"github.com/pomfort/ascmhl-go/internals"
)

// hashSet is a generation document's per-algorithm digest map, CBOR-encoded
// with string algorithm keys so a document is byte-diffable across tools.
type hashSet map[string][]byte

// fileEntryDoc is the wire form of internals.FileEntry.
type fileEntryDoc struct {
	Path         string  `cbor:"path"`
	Size         int64   `cbor:"size"`
	ModTime      int64   `cbor:"mod_time"` // unix nanoseconds, UTC
	Hashes       hashSet `cbor:"hashes"`
	Outcome      string  `cbor:"outcome"`
	MismatchOld  []byte  `cbor:"mismatch_old,omitempty"`
	MismatchNew  []byte  `cbor:"mismatch_new,omitempty"`
	MismatchAlgo string  `cbor:"mismatch_algo,omitempty"`
}

// dirEntryDoc is the wire form of internals.DirEntry.
type dirEntryDoc struct {
	Path            string  `cbor:"path"`
	ModTime         int64   `cbor:"mod_time"`
	ContentDigest   hashSet `cbor:"content_digest"`
	StructureDigest hashSet `cbor:"structure_digest"`
	HashSkipped     bool    `cbor:"hash_skipped,omitempty"`
}

// childRefDoc is the wire form of internals.ChildHistoryRef.
type childRefDoc struct {
	RelPath       string  `cbor:"rel_path"`
	Generation    int     `cbor:"generation"`
	RootContent   hashSet `cbor:"root_content"`
	RootStructure hashSet `cbor:"root_structure"`
}

// creatorDoc is the wire form of internals.CreatorInfo.
type creatorDoc struct {
	ToolName    string `cbor:"tool_name"`
	ToolVersion string `cbor:"tool_version"`
	CreatedAt   int64  `cbor:"created_at"`
	HostName    string `cbor:"host_name"`
	ProcessID   string `cbor:"process_id"`
}

// generationDoc is the CBOR schema of one generation document.
type generationDoc struct {
	Number         int           `cbor:"number"`
	PreviousRef    int           `cbor:"previous_ref"`
	CreatedAt      int64         `cbor:"created_at"`
	Files          []fileEntryDoc `cbor:"files"`
	Dirs           []dirEntryDoc  `cbor:"dirs"`
	Children       []childRefDoc  `cbor:"children"`
	IgnorePatterns []string       `cbor:"ignore_patterns,omitempty"`
	Creator        creatorDoc     `cbor:"creator"`
	RootContent    hashSet        `cbor:"root_content"`
	RootStructure  hashSet        `cbor:"root_structure"`
}

func toHashSet(m map[internals.Algorithm][]byte) hashSet {
	if m == nil {
		return nil
	}
	out := make(hashSet, len(m))
	for algo, digest := range m {
		out[string(algo)] = digest
	}
	return out
}

func fromHashSet(m hashSet) map[internals.Algorithm][]byte {
	if m == nil {
		return nil
	}
	out := make(map[internals.Algorithm][]byte, len(m))
	for algo, digest := range m {
		out[internals.Algorithm(algo)] = digest
	}
	return out
}

func encodeGeneration(gen internals.Generation) generationDoc {
	doc := generationDoc{
		Number:         gen.Number,
		PreviousRef:    gen.PreviousRef,
		CreatedAt:      gen.CreatedAt.UnixNano(),
		IgnorePatterns: gen.IgnorePatterns,
		Creator: creatorDoc{
			ToolName:    gen.Creator.ToolName,
			ToolVersion: gen.Creator.ToolVersion,
			CreatedAt:   gen.Creator.CreatedAt.UnixNano(),
			HostName:    gen.Creator.HostName,
			ProcessID:   gen.Creator.ProcessID,
		},
		RootContent:   toHashSet(gen.RootContent),
		RootStructure: toHashSet(gen.RootStructure),
	}

	for _, f := range gen.Files {
		doc.Files = append(doc.Files, fileEntryDoc{
			Path:         f.Path,
			Size:         f.Size,
			ModTime:      f.ModTime.UnixNano(),
			Hashes:       toHashSet(f.Hashes),
			Outcome:      string(f.Outcome),
			MismatchOld:  f.MismatchOld,
			MismatchNew:  f.MismatchNew,
			MismatchAlgo: string(f.MismatchAlgo),
		})
	}
	for _, d := range gen.Dirs {
		doc.Dirs = append(doc.Dirs, dirEntryDoc{
			Path:            d.Path,
			ModTime:         d.ModTime.UnixNano(),
			ContentDigest:   toHashSet(d.ContentDigest),
			StructureDigest: toHashSet(d.StructureDigest),
			HashSkipped:     d.DirectoryHashSkipped,
		})
	}
	for _, c := range gen.Children {
		doc.Children = append(doc.Children, childRefDoc{
			RelPath:       c.RelPath,
			Generation:    c.Generation,
			RootContent:   toHashSet(c.RootContent),
			RootStructure: toHashSet(c.RootStructure),
		})
	}

	return doc
}

func decodeGeneration(doc generationDoc) internals.Generation {
	gen := internals.Generation{
		Number:         doc.Number,
		PreviousRef:    doc.PreviousRef,
		CreatedAt:      time.Unix(0, doc.CreatedAt).UTC(),
		IgnorePatterns: doc.IgnorePatterns,
		Creator: internals.CreatorInfo{
			ToolName:    doc.Creator.ToolName,
			ToolVersion: doc.Creator.ToolVersion,
			CreatedAt:   time.Unix(0, doc.Creator.CreatedAt).UTC(),
			HostName:    doc.Creator.HostName,
			ProcessID:   doc.Creator.ProcessID,
		},
		RootContent:   fromHashSet(doc.RootContent),
		RootStructure: fromHashSet(doc.RootStructure),
	}

	for _, f := range doc.Files {
		gen.Files = append(gen.Files, internals.FileEntry{
			Path:         f.Path,
			Size:         f.Size,
			ModTime:      time.Unix(0, f.ModTime).UTC(),
			Hashes:       fromHashSet(f.Hashes),
			Outcome:      internals.Outcome(f.Outcome),
			MismatchOld:  f.MismatchOld,
			MismatchNew:  f.MismatchNew,
			MismatchAlgo: internals.Algorithm(f.MismatchAlgo),
		})
	}
	for _, d := range doc.Dirs {
		gen.Dirs = append(gen.Dirs, internals.DirEntry{
			Path:                 d.Path,
			ModTime:              time.Unix(0, d.ModTime).UTC(),
			ContentDigest:        fromHashSet(d.ContentDigest),
			StructureDigest:      fromHashSet(d.StructureDigest),
			DirectoryHashSkipped: d.HashSkipped,
		})
	}
	for _, c := range doc.Children {
		gen.Children = append(gen.Children, internals.ChildHistoryRef{
			RelPath:       c.RelPath,
			Generation:    c.Generation,
			RootContent:   fromHashSet(c.RootContent),
			RootStructure: fromHashSet(c.RootStructure),
		})
	}

	return gen
}

// MarshalGeneration encodes gen as a deterministic CBOR document.
func MarshalGeneration(gen internals.Generation) ([]byte, error) {
	return marshal(encodeGeneration(gen))
}

// UnmarshalGeneration decodes a generation document.
func UnmarshalGeneration(data []byte) (internals.Generation, error) {
	var doc generationDoc
	if err := unmarshal(data, &doc); err != nil {
		return internals.Generation{}, err
	}
	return decodeGeneration(doc), nil
}
