package internals

import (
	"context"
	"time"
)

// ProgressFunc receives the stable progress lines emitted during a seal,
// per spec.md §6. line is already formatted; callers only decide where it
// goes (verbose log, discard).
type ProgressFunc func(line string)

// SealOptions configures one SealOrchestrator.Seal call.
type SealOptions struct {
	// Algorithm is the seal's primary algorithm (spec.md's `r`).
	Algorithm Algorithm
	// Ignore, when set, adds caller-specified ignore patterns on top of
	// the walker's fixed platform-metadata list.
	Ignore IgnoreMatcher
	// Workers bounds the file-hashing worker pool. Values below 1 mean
	// runtime.GOMAXPROCS(0) workers.
	Workers int
	// SkipDirectoryHashes disables directory digest computation; files
	// are still hashed and verified. The generation still records
	// directory entries, but with DirectoryHashSkipped set and no digest
	// bytes.
	SkipDirectoryHashes bool
	// Creator is stamped into the written generation's metadata.
	Creator CreatorInfo
	// Progress, if non-nil, receives every stable progress line as the
	// seal proceeds.
	Progress ProgressFunc
	// DryRun performs every step of a seal — walk, verify, digest
	// composition — but does not append a generation to any store. Used
	// by the `verify` subcommand, which must not mutate history.
	DryRun bool
}

// SealResult is the outcome of one Seal call for one root (and,
// transitively, every nested root it sealed first).
type SealResult struct {
	RootPath       string
	Generation     Generation
	GenerationPath string
	NestedResults  []SealResult
}

// Failed reports whether this result, or any nested result beneath it,
// recorded a hash mismatch or a missing file.
func (r *SealResult) Failed() bool {
	if r.Generation.HasFailures() {
		return true
	}
	for _, nested := range r.NestedResults {
		if nested.Failed() {
			return true
		}
	}
	return false
}

// SealOrchestrator drives the seal operation of spec.md §4.7: it resolves
// and seals nested roots depth-first, walks the current root, verifies
// every file against the root's HistoryIndex, composes directory digests,
// and appends the new generation.
type SealOrchestrator struct {
	// OpenStore opens (or initializes) the ManifestStore for a sealed
	// root at the given absolute path.
	OpenStore func(rootPath string) (ManifestStore, error)
}

// Seal performs one seal operation on root, per options: it resolves and
// seals nested roots depth-first before sealing root itself, per spec.md
// §4.7 step 1.
func (o *SealOrchestrator) Seal(ctx context.Context, root string, opts SealOptions) (*SealResult, error) {
	store, err := o.OpenStore(root)
	if err != nil {
		return nil, err
	}
	return o.sealWithStore(ctx, root, store, opts)
}

func (o *SealOrchestrator) sealWithStore(ctx context.Context, root string, store ManifestStore, opts SealOptions) (*SealResult, error) {
	release, lockErr := store.Lock()
	if lockErr == nil {
		defer release()
	}

	nestedPaths, err := store.LocateNestedRoots(root)
	if err != nil {
		return nil, err
	}
	nestedResults := make(map[string]*SealResult, len(nestedPaths))
	var allNested []SealResult
	for _, nestedAbs := range nestedPaths {
		if err := pollCancel(ctx); err != nil {
			return nil, err
		}
		nestedStore, err := o.OpenStore(nestedAbs)
		if err != nil {
			return nil, err
		}
		nestedResult, err := o.sealWithStore(ctx, nestedAbs, nestedStore, opts)
		if err != nil {
			return nil, err
		}
		nestedResults[nestedAbs] = nestedResult
		allNested = append(allNested, *nestedResult)
	}
	result, err := o.sealWithStoreResolved(ctx, root, store, opts, nestedResults)
	if err != nil {
		return nil, err
	}
	result.NestedResults = allNested
	return result, nil
}

func (o *SealOrchestrator) sealWithStoreResolved(ctx context.Context, root string, store ManifestStore, opts SealOptions, nested map[string]*SealResult) (*SealResult, error) {
	if err := pollCancel(ctx); err != nil {
		return nil, err
	}

	genNumbers, err := store.ListGenerations()
	if err != nil {
		return nil, err
	}

	generations := make([]Generation, 0, len(genNumbers))
	for _, n := range genNumbers {
		gen, err := store.Load(n)
		if err != nil {
			return nil, err
		}
		generations = append(generations, gen)
	}
	history := BuildHistoryIndex(generations)

	algorithms := algorithmUnion(opts.Algorithm, history)

	resolver := func(absPath, relPath string) (bool, map[Algorithm][]byte, map[Algorithm][]byte, error) {
		nr, ok := nested[absPath]
		if !ok {
			return false, nil, nil, nil
		}
		return true, nr.Generation.RootContent, nr.Generation.RootStructure, nil
	}

	walker := &Walker{
		RootPath:            root,
		Algorithms:          algorithms,
		Workers:             opts.Workers,
		Ignore:              opts.Ignore,
		NestedRoot:          resolver,
		SkipDirectoryHashes: opts.SkipDirectoryHashes,
	}

	walkResult, err := walker.Walk(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Progress != nil {
		for i := range walkResult.Unsupported {
			opts.Progress("WARNING: " + walkResult.Unsupported[i].Error())
		}
	}

	verifier := &Verifier{History: history}

	present := make(map[string]bool, len(walkResult.Files))
	files := make([]FileEntry, 0, len(walkResult.Files))
	for _, wf := range walkResult.Files {
		present[wf.RelPath] = true
		entry := verifier.Verify(wf.RelPath, wf.Hashes)
		entry.Size = wf.Size
		entry.ModTime = time.Unix(0, wf.ModTime).UTC()
		files = append(files, entry)
		reportFileProgress(opts.Progress, entry, history)
	}

	for _, missingPath := range verifier.MissingPaths(present) {
		files = append(files, verifier.VerifyMissing(missingPath))
		reportMissingProgress(opts.Progress, missingPath)
	}

	dirs := make([]DirEntry, 0, len(walkResult.Dirs))
	for _, wd := range walkResult.Dirs {
		dirs = append(dirs, DirEntry{
			Path:                 wd.RelPath,
			ContentDigest:        wd.ContentDigest,
			StructureDigest:      wd.StructureDigest,
			DirectoryHashSkipped: opts.SkipDirectoryHashes,
		})
		if !opts.SkipDirectoryHashes {
			reportDirProgress(opts.Progress, wd, opts.Algorithm)
		}
	}

	var children []ChildHistoryRef
	for relAbs, nr := range nested {
		children = append(children, ChildHistoryRef{
			RelPath:       NormalizePath(relPathFromRoot(root, relAbs)),
			Generation:    nr.Generation.Number,
			RootContent:   nr.Generation.RootContent,
			RootStructure: nr.Generation.RootStructure,
		})
	}

	prev := 0
	if len(genNumbers) > 0 {
		prev = genNumbers[len(genNumbers)-1]
	}

	gen := Generation{
		Number:        prev + 1,
		PreviousRef:   prev,
		CreatedAt:     currentTime(),
		Files:         files,
		Dirs:          dirs,
		Children:      children,
		Creator:       opts.Creator,
		RootContent:   walkResult.RootContent,
		RootStructure: walkResult.RootStructure,
	}
	if patterns, ok := opts.Ignore.(PatternIgnore); ok {
		gen.IgnorePatterns = patterns.Patterns
	}

	var writtenPath string
	if !opts.DryRun {
		writtenPath, err = store.Append(gen)
		if err != nil {
			return nil, err
		}
	}

	if opts.Progress != nil && !opts.SkipDirectoryHashes {
		opts.Progress(formatRootProgress(opts.Algorithm, walkResult.RootContent, walkResult.RootStructure))
	}

	return &SealResult{RootPath: root, Generation: gen, GenerationPath: writtenPath}, nil
}

func algorithmUnion(primary Algorithm, history *HistoryIndex) []Algorithm {
	seen := map[Algorithm]bool{primary: true}
	order := []Algorithm{primary}
	for _, path := range history.AllKnownPaths() {
		for algo := range history.KnownHashes(path) {
			if !seen[algo] {
				seen[algo] = true
				order = append(order, algo)
			}
		}
	}
	return order
}

func pollCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// currentTime is the orchestrator's sole time source, isolated so tests can
// substitute a fixed clock.
var currentTime = func() time.Time { return time.Now().UTC() }
