package internals

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ManifestStore, so orchestrator tests don't
// depend on the format package's on-disk encoding.
type fakeStore struct {
	generations []Generation
	nested      []string
	appends     int
	locked      bool
}

func (s *fakeStore) ListGenerations() ([]int, error) {
	nums := make([]int, len(s.generations))
	for i, g := range s.generations {
		nums[i] = g.Number
	}
	return nums, nil
}

func (s *fakeStore) Load(n int) (Generation, error) {
	for _, g := range s.generations {
		if g.Number == n {
			return g, nil
		}
	}
	return Generation{}, &CorruptHistoryError{Reason: "not found"}
}

func (s *fakeStore) Append(gen Generation) (string, error) {
	s.generations = append(s.generations, gen)
	s.appends++
	return "fake-generation-path", nil
}

func (s *fakeStore) LocateNestedRoots(under string) ([]string, error) {
	return s.nested, nil
}

func (s *fakeStore) Lock() (func(), error) {
	s.locked = true
	return func() { s.locked = false }, nil
}

func TestSealWritesFirstGeneration(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	store := &fakeStore{}
	orch := &SealOrchestrator{OpenStore: func(string) (ManifestStore, error) { return store, nil }}

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generation.Number)
	assert.Len(t, result.Generation.Files, 1)
	assert.Equal(t, OutcomeNewFile, result.Generation.Files[0].Outcome)
	assert.Equal(t, 1, store.appends)
	assert.False(t, result.Failed())
}

func TestSealUnmodifiedTreeVerifies(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	store := &fakeStore{}
	orch := &SealOrchestrator{OpenStore: func(string) (ManifestStore, error) { return store, nil }}

	_, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generation.Number)
	assert.Equal(t, OutcomeVerified, result.Generation.Files[0].Outcome)
	assert.False(t, result.Failed())
}

func TestSealDetectsHashMismatch(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0o644))

	store := &fakeStore{}
	orch := &SealOrchestrator{OpenStore: func(string) (ManifestStore, error) { return store, nil }}

	_, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(target, []byte("tampered"), 0o644))

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Equal(t, OutcomeHashMismatch, result.Generation.Files[0].Outcome)
}

func TestSealDetectsMissingFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0o644))

	store := &fakeStore{}
	orch := &SealOrchestrator{OpenStore: func(string) (ManifestStore, error) { return store, nil }}

	_, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)

	require.NoError(t, os.Remove(target))

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)
	assert.True(t, result.Failed())

	var missingCount int
	for _, f := range result.Generation.Files {
		if f.Outcome == OutcomeMissing {
			missingCount++
		}
	}
	assert.Equal(t, 1, missingCount)
}

func TestSealAlgorithmExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	store := &fakeStore{}
	orch := &SealOrchestrator{OpenStore: func(string) (ManifestStore, error) { return store, nil }}

	_, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoSHA1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeVerifiedAndExtended, result.Generation.Files[0].Outcome)
	assert.Contains(t, result.Generation.Files[0].Hashes, AlgoMD5)
	assert.Contains(t, result.Generation.Files[0].Hashes, AlgoSHA1)
}

func TestSealDryRunDoesNotAppend(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	store := &fakeStore{}
	orch := &SealOrchestrator{OpenStore: func(string) (ManifestStore, error) { return store, nil }}

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 0, store.appends)
	assert.Empty(t, result.GenerationPath)
	assert.Equal(t, OutcomeNewFile, result.Generation.Files[0].Outcome)
}

func TestSealComposesNestedRootByReference(t *testing.T) {
	root := t.TempDir()
	childAbs := filepath.Join(root, "child")
	require.NoError(t, os.MkdirAll(filepath.Join(childAbs, StoreDirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(childAbs, "b.txt"), []byte("world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	parentStore := &fakeStore{nested: []string{childAbs}}
	childStore := &fakeStore{}

	orch := &SealOrchestrator{
		OpenStore: func(path string) (ManifestStore, error) {
			if path == childAbs {
				return childStore, nil
			}
			return parentStore, nil
		},
	}

	result, err := orch.Seal(context.Background(), root, SealOptions{Algorithm: AlgoMD5})
	require.NoError(t, err)

	require.Len(t, result.NestedResults, 1)
	assert.Equal(t, 1, childStore.appends)
	assert.Equal(t, 1, parentStore.appends)

	require.Len(t, result.Generation.Children, 1)
	assert.Equal(t, "child", result.Generation.Children[0].RelPath)
	assert.Equal(t, result.NestedResults[0].Generation.RootContent, result.Generation.Children[0].RootContent)
}

func TestAlgorithmUnionIncludesEveryHistoricalAlgorithm(t *testing.T) {
	history := BuildHistoryIndex([]Generation{
		{Number: 1, Files: []FileEntry{{Path: "a.txt", Outcome: OutcomeNewFile, Hashes: map[Algorithm][]byte{AlgoMD5: {0x01}}}}},
		{Number: 2, Files: []FileEntry{{Path: "b.txt", Outcome: OutcomeNewFile, Hashes: map[Algorithm][]byte{AlgoSHA1: {0x02}}}}},
	})
	algos := algorithmUnion(AlgoXXH64, history)
	assert.ElementsMatch(t, []Algorithm{AlgoXXH64, AlgoMD5, AlgoSHA1}, algos)
}

func TestPollCancelReportsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, pollCancel(ctx))
}

func TestCurrentTimeIsUTC(t *testing.T) {
	now := currentTime()
	assert.Equal(t, time.UTC, now.Location())
}
