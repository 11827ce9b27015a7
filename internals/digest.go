package internals

import "sort"

// DirChild is one immediate child of a directory, as presented to DirDigest.
// ContentHash is the file hash (files) or content digest (directories);
// StructureHash is nil for files and the child's structure digest for
// directories, per spec.md §4.2.
type DirChild struct {
	Name          string
	IsDir         bool
	ContentHash   []byte
	StructureHash []byte
}

// sortChildren orders children by byte-wise comparison of the normalized
// name, per spec.md §4.2 ("not locale collation"). The input slice is
// sorted in place and also returned for convenience.
func sortChildren(children []DirChild) []DirChild {
	sort.Slice(children, func(i, j int) bool {
		return CompareNames(children[i].Name, children[j].Name) < 0
	})
	return children
}

// ComputeDirDigests implements the DirDigest contract of spec.md §4.2: given
// a directory's immediate children, it returns the content digest and the
// structure digest in algorithm algo.
//
// Content digest = algo applied to, for each child in name order: the
// child's UTF-8 name bytes, a 0x00 separator, and the child's content hash
// bytes (file hash for files, content digest for directories) — with a
// trailing separator terminating the stream.
//
// Structure digest = algo applied to, for each child in name order: the
// child's UTF-8 name bytes, a 0x00 separator, a kind tag ('f' or 'd'), and —
// directories only — the child's structure digest bytes.
func ComputeDirDigests(algo Algorithm, children []DirChild) (content []byte, structure []byte, err error) {
	ordered := sortChildren(append([]DirChild(nil), children...))

	contentHasher, err := NewHasher(algo)
	if err != nil {
		return nil, nil, err
	}
	structureHasher, err := NewHasher(algo)
	if err != nil {
		return nil, nil, err
	}

	for _, child := range ordered {
		contentHasher.Write([]byte(child.Name))
		contentHasher.Write([]byte{0x00})
		contentHasher.Write(child.ContentHash)

		structureHasher.Write([]byte(child.Name))
		structureHasher.Write([]byte{0x00})
		if child.IsDir {
			structureHasher.Write([]byte{'d'})
			structureHasher.Write(child.StructureHash)
		} else {
			structureHasher.Write([]byte{'f'})
		}
	}
	// trailing separator terminates the content-digest stream
	contentHasher.Write([]byte{0x00})

	return contentHasher.Sum(), structureHasher.Sum(), nil
}
