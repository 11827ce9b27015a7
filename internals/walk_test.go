package internals

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestWalkHashesEveryFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":        "hello",
		"sub/b.txt":    "world",
		"sub/deep/c.c": "!",
	})

	w := &Walker{RootPath: root, Algorithms: []Algorithm{AlgoMD5}, Workers: 2}
	result, err := w.Walk(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	require.Len(t, result.Dirs, 2) // sub, sub/deep (root itself is excluded)
	assert.NotEmpty(t, result.RootContent[AlgoMD5])
	assert.NotEmpty(t, result.RootStructure[AlgoMD5])
}

func TestWalkSkipsFixedIgnoreNames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":            "hello",
		".DS_Store":        "junk",
		"Thumbs.db":        "junk",
		"sub/Thumbs.db":    "junk",
	})

	w := &Walker{RootPath: root, Algorithms: []Algorithm{AlgoMD5}}
	result, err := w.Walk(context.Background())
	require.NoError(t, err)

	var names []string
	for _, f := range result.Files {
		names = append(names, f.RelPath)
	}
	assert.ElementsMatch(t, []string{"a.txt"}, names)
}

func TestWalkSkipsManifestStoreDirectoryAtRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "hello"})
	require.NoError(t, os.MkdirAll(filepath.Join(root, StoreDirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, StoreDirName, "0001_x.ascmhl"), []byte("{}"), 0o644))

	w := &Walker{RootPath: root, Algorithms: []Algorithm{AlgoMD5}}
	result, err := w.Walk(context.Background())
	require.NoError(t, err)

	for _, f := range result.Files {
		assert.NotContains(t, f.RelPath, StoreDirName)
	}
}

func TestWalkAppliesIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.txt": "1",
		"skip.tmp": "2",
	})

	w := &Walker{RootPath: root, Algorithms: []Algorithm{AlgoMD5}, Ignore: PatternIgnore{Patterns: []string{"*.tmp"}}}
	result, err := w.Walk(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "keep.txt", result.Files[0].RelPath)
}

func TestWalkRecordsSymlinksAsUnsupported(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "hello"})
	require.NoError(t, os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link.txt")))

	w := &Walker{RootPath: root, Algorithms: []Algorithm{AlgoMD5}}
	result, err := w.Walk(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Unsupported, 1)
	assert.Equal(t, "link.txt", result.Unsupported[0].Path)

	var names []string
	for _, f := range result.Files {
		names = append(names, f.RelPath)
	}
	assert.NotContains(t, names, "link.txt")
}

func TestWalkDelegatesToNestedRootResolver(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":            "hello",
		"child/inner.txt":  "should not be hashed here",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "child", StoreDirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "child", StoreDirName, "0001_x.ascmhl"), []byte("{}"), 0o644))

	nestedContent := map[Algorithm][]byte{AlgoMD5: {0xAA}}
	nestedStructure := map[Algorithm][]byte{AlgoMD5: {0xBB}}
	resolverCalled := false

	w := &Walker{
		RootPath:   root,
		Algorithms: []Algorithm{AlgoMD5},
		NestedRoot: func(absPath, relPath string) (bool, map[Algorithm][]byte, map[Algorithm][]byte, error) {
			resolverCalled = true
			assert.Equal(t, "child", relPath)
			return true, nestedContent, nestedStructure, nil
		},
	}
	result, err := w.Walk(context.Background())
	require.NoError(t, err)
	assert.True(t, resolverCalled)

	for _, f := range result.Files {
		assert.NotEqual(t, "child/inner.txt", f.RelPath)
	}

	var childDir *WalkedDir
	for i := range result.Dirs {
		if result.Dirs[i].RelPath == "child" {
			childDir = &result.Dirs[i]
		}
	}
	require.NotNil(t, childDir)
	assert.True(t, childDir.IsNestedRoot)
	assert.Equal(t, nestedContent[AlgoMD5], childDir.ContentDigest[AlgoMD5])
}

func TestWalkNamesReportsPathsWithoutHashing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":     "1",
		"sub/b.txt": "2",
	})

	w := &Walker{RootPath: root}
	files, dirs, err := w.WalkNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, files)
	assert.Equal(t, []string{"sub"}, dirs)
}

func TestWalkIsDeterministicRegardlessOfCreationOrder(t *testing.T) {
	rootA := t.TempDir()
	writeTree(t, rootA, map[string]string{"b.txt": "2", "a.txt": "1"})

	rootB := t.TempDir()
	writeTree(t, rootB, map[string]string{"a.txt": "1", "b.txt": "2"})

	wa := &Walker{RootPath: rootA, Algorithms: []Algorithm{AlgoMD5}}
	ra, err := wa.Walk(context.Background())
	require.NoError(t, err)

	wb := &Walker{RootPath: rootB, Algorithms: []Algorithm{AlgoMD5}}
	rb, err := wb.Walk(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ra.RootContent, rb.RootContent)
	assert.Equal(t, ra.RootStructure, rb.RootStructure)
}
