package internals

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
)

// StoreDirName is the fixed name of a sealed root's manifest store
// directory, a sibling of the root's contents and never itself walked.
const StoreDirName = "ascmhl"

// fixedIgnoreNames are platform metadata entries skipped unconditionally,
// per spec.md §4.4.
var fixedIgnoreNames = map[string]bool{
	".DS_Store":      true,
	"Thumbs.db":      true,
	"$RECYCLE.BIN":   true,
	".Trash":         true,
	".Trashes":       true,
	"System Volume Information": true,
}

// IgnoreMatcher decides whether a root-relative path should be skipped by
// the walker, on top of the fixed platform-metadata list.
type IgnoreMatcher interface {
	Match(relPath string, isDir bool) bool
}

// PatternIgnore matches shell-glob patterns (as accepted by path.Match)
// against either the full normalized relative path or the base name.
type PatternIgnore struct {
	Patterns []string
}

func (p PatternIgnore) Match(relPath string, isDir bool) bool {
	base := filepath.Base(relPath)
	for _, pat := range p.Patterns {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, relPath); ok {
			return true
		}
	}
	return false
}

// NestedRootResolver is consulted by the walker for every directory it
// visits that contains a StoreDirName subdirectory. When that directory is
// a nested sealed root that has already been sealed as its own,
// independent operation, the resolver returns ok == true and the digests
// that root's newly written generation recorded for its own root. The
// walker never descends into a directory for which this returns ok == true.
type NestedRootResolver func(absPath, relPath string) (ok bool, content, structure map[Algorithm][]byte, err error)

// Walker enumerates one sealed root's filesystem tree in canonical order,
// applies ignore rules, delegates nested sealed roots, and hashes every
// file it finds with the requested algorithms.
type Walker struct {
	RootPath   string
	Algorithms []Algorithm
	Workers    int
	Ignore     IgnoreMatcher
	NestedRoot NestedRootResolver
	// SkipDirectoryHashes disables directory digest composition entirely:
	// every WalkedDir (including the root) carries nil digest maps. Files
	// are still hashed and verified as usual.
	SkipDirectoryHashes bool

	fileHashes map[*treeNode]WalkedFile
}

// WalkedFile is a file discovered and hashed by a single Walk call.
type WalkedFile struct {
	RelPath string
	AbsPath string
	Size    int64
	ModTime int64 // unix nanoseconds; the orchestrator converts it to time.Time
	Hashes  map[Algorithm][]byte
}

// WalkedDir is a directory discovered by a single Walk call, together with
// the content/structure digests composed from its children.
type WalkedDir struct {
	RelPath         string
	ContentDigest   map[Algorithm][]byte
	StructureDigest map[Algorithm][]byte
	IsNestedRoot    bool
}

// WalkResult is everything one Walk call produced.
type WalkResult struct {
	Files         []WalkedFile
	Dirs          []WalkedDir
	RootContent   map[Algorithm][]byte
	RootStructure map[Algorithm][]byte
	Unsupported   []UnsupportedEntryError
}

// treeNode is one node of the in-memory mirror of the filesystem tree built
// by scan. Building this tree up front (rather than computing digests
// during the descent) lets dirDigests walk it bottom-up with an explicit
// frame stack instead of recursion.
type treeNode struct {
	Name     string
	RelPath  string
	AbsPath  string
	IsDir    bool
	Nested   bool
	NestedContent   map[Algorithm][]byte
	NestedStructure map[Algorithm][]byte
	Children []*treeNode
}

// Walk performs one full traversal of RootPath: it builds the directory
// tree, hashes every regular file with a bounded worker pool, and composes
// every directory's content and structure digests bottom-up.
func (w *Walker) Walk(ctx context.Context) (*WalkResult, error) {
	root, unsupported, err := w.scan(w.RootPath, "")
	if err != nil {
		return nil, err
	}

	files := collectFiles(root)
	if err := w.hashFiles(ctx, files); err != nil {
		return nil, err
	}

	result := &WalkResult{Unsupported: unsupported}
	content, structure, err := w.dirDigests(root, result)
	if err != nil {
		return nil, err
	}
	result.RootContent = content
	result.RootStructure = structure
	return result, nil
}

// WalkNames enumerates every file and directory path under RootPath
// without hashing anything — the `diff` subcommand's contract (spec.md
// §6's diff extension), which only needs presence, not content.
func (w *Walker) WalkNames(ctx context.Context) (files []string, dirs []string, err error) {
	root, _, err := w.scan(w.RootPath, "")
	if err != nil {
		return nil, nil, err
	}

	stack := []*treeNode{root}
	for len(stack) > 0 {
		if err := pollCancel(ctx); err != nil {
			return nil, nil, err
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n != root {
			if n.IsDir {
				dirs = append(dirs, n.RelPath)
			} else {
				files = append(files, n.RelPath)
			}
		}
		if n.Nested {
			continue
		}
		for _, c := range n.Children {
			stack = append(stack, c)
		}
	}
	sort.Slice(files, func(i, j int) bool { return CompareNames(files[i], files[j]) < 0 })
	sort.Slice(dirs, func(i, j int) bool { return CompareNames(dirs[i], dirs[j]) < 0 })
	return files, dirs, nil
}

// scan builds the in-memory tree for absPath (relative path relPath from
// the sealed root) using an explicit stack rather than recursion, skipping
// the manifest store directory, ignored entries, and unsupported entry
// kinds (symlinks and other non-regular, non-directory files).
func (w *Walker) scan(absPath, relPath string) (*treeNode, []UnsupportedEntryError, error) {
	root := &treeNode{Name: filepath.Base(absPath), RelPath: relPath, AbsPath: absPath, IsDir: true}

	type frame struct {
		node *treeNode
	}
	var unsupported []UnsupportedEntryError
	stack := []*frame{{node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.node.RelPath != "" {
			if storeMarkerPresent(top.node.AbsPath) {
				ok, content, structure, err := w.resolveNested(top.node.AbsPath, top.node.RelPath)
				if err != nil {
					return nil, nil, err
				}
				if ok {
					top.node.Nested = true
					top.node.NestedContent = content
					top.node.NestedStructure = structure
					continue
				}
			}
		}

		entries, err := os.ReadDir(top.node.AbsPath)
		if err != nil {
			return nil, nil, &IOError{Path: top.node.AbsPath, Err: err}
		}
		sort.Slice(entries, func(i, j int) bool {
			return CompareNames(NormalizePath(entries[i].Name()), NormalizePath(entries[j].Name())) < 0
		})

		for _, e := range entries {
			name := e.Name()
			childRel := NormalizePath(filepath.Join(top.node.RelPath, name))
			childAbs := filepath.Join(top.node.AbsPath, name)

			if top.node.RelPath == "" && name == StoreDirName {
				continue
			}
			if fixedIgnoreNames[name] {
				continue
			}
			if w.Ignore != nil && w.Ignore.Match(childRel, e.IsDir()) {
				continue
			}

			info, err := e.Info()
			if err != nil {
				return nil, nil, &IOError{Path: childAbs, Err: err}
			}

			switch {
			case info.Mode()&os.ModeSymlink != 0:
				unsupported = append(unsupported, UnsupportedEntryError{Path: childRel, Reason: "symbolic link not followed"})
				continue
			case e.IsDir():
				child := &treeNode{Name: name, RelPath: childRel, AbsPath: childAbs, IsDir: true}
				top.node.Children = append(top.node.Children, child)
				stack = append(stack, &frame{node: child})
			case info.Mode().IsRegular():
				child := &treeNode{Name: name, RelPath: childRel, AbsPath: childAbs, IsDir: false}
				top.node.Children = append(top.node.Children, child)
			default:
				unsupported = append(unsupported, UnsupportedEntryError{Path: childRel, Reason: "unsupported entry kind"})
			}
		}
	}

	return root, unsupported, nil
}

func (w *Walker) resolveNested(absPath, relPath string) (bool, map[Algorithm][]byte, map[Algorithm][]byte, error) {
	if w.NestedRoot == nil {
		return false, nil, nil, nil
	}
	return w.NestedRoot(absPath, relPath)
}

func storeMarkerPresent(absPath string) bool {
	info, err := os.Stat(filepath.Join(absPath, StoreDirName))
	return err == nil && info.IsDir()
}

func collectFiles(root *treeNode) []*treeNode {
	var out []*treeNode
	stack := []*treeNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Nested {
			continue
		}
		for _, c := range n.Children {
			if c.IsDir {
				stack = append(stack, c)
			} else {
				out = append(out, c)
			}
		}
	}
	return out
}

// hashFiles hashes every file node concurrently with a bounded worker pool,
// storing results directly on the node via a side table (fileHashes) keyed
// by pointer identity — dirDigests reads it back during the bottom-up pass.
func (w *Walker) hashFiles(ctx context.Context, files []*treeNode) error {
	workers := w.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan *treeNode)
	errs := make(chan error, workers)
	var mu sync.Mutex
	results := make(map[*treeNode]WalkedFile, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				wf, err := w.hashOne(node)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				mu.Lock()
				results[node] = wf
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- f:
			}
		}
	}()

	wg.Wait()
	close(errs)
	if err := ctx.Err(); err != nil {
		return err
	}
	for err := range errs {
		if err != nil {
			return err
		}
	}

	w.fileHashes = results
	return nil
}

func (w *Walker) hashOne(node *treeNode) (WalkedFile, error) {
	hashers := make([]Hasher, 0, len(w.Algorithms))
	for _, algo := range w.Algorithms {
		h, err := NewHasher(algo)
		if err != nil {
			return WalkedFile{}, err
		}
		hashers = append(hashers, h)
	}

	info, err := os.Stat(node.AbsPath)
	if err != nil {
		return WalkedFile{}, &IOError{Path: node.AbsPath, Err: err}
	}

	if err := HashFile(node.AbsPath, hashers...); err != nil {
		return WalkedFile{}, err
	}

	digests := make(map[Algorithm][]byte, len(hashers))
	for _, h := range hashers {
		digests[h.Algorithm()] = h.Sum()
	}

	return WalkedFile{
		RelPath: node.RelPath,
		AbsPath: node.AbsPath,
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
		Hashes:  digests,
	}, nil
}

// dirDigests composes every directory's content/structure digest bottom-up
// using an explicit frame stack: a directory is only finalized once every
// child in its Children slice has already been finalized, which an
// iterative post-order traversal guarantees without recursion.
func (w *Walker) dirDigests(root *treeNode, result *WalkResult) (map[Algorithm][]byte, map[Algorithm][]byte, error) {
	type frame struct {
		node    *treeNode
		visited bool
	}
	stack := []*frame{{node: root}}
	computed := make(map[*treeNode]WalkedDir)

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.node.Nested {
			stack = stack[:len(stack)-1]
			wd := WalkedDir{RelPath: top.node.RelPath, IsNestedRoot: true}
			if !w.SkipDirectoryHashes {
				wd.ContentDigest = top.node.NestedContent
				wd.StructureDigest = top.node.NestedStructure
			}
			computed[top.node] = wd
			result.Dirs = append(result.Dirs, wd)
			continue
		}

		if !top.visited {
			top.visited = true
			for _, c := range top.node.Children {
				if c.IsDir {
					stack = append(stack, &frame{node: c})
				}
			}
			continue
		}

		stack = stack[:len(stack)-1]

		if w.SkipDirectoryHashes {
			wd := WalkedDir{RelPath: top.node.RelPath}
			computed[top.node] = wd
			if top.node != root {
				result.Dirs = append(result.Dirs, wd)
			}
			continue
		}

		content := make(map[Algorithm][]byte)
		structure := make(map[Algorithm][]byte)
		for _, algo := range w.Algorithms {
			perAlgoChildren := make([]DirChild, 0, len(top.node.Children))
			for _, c := range top.node.Children {
				if c.IsDir {
					cd := computed[c]
					perAlgoChildren = append(perAlgoChildren, DirChild{
						Name:          c.Name,
						IsDir:         true,
						ContentHash:   cd.ContentDigest[algo],
						StructureHash: cd.StructureDigest[algo],
					})
				} else {
					wf := w.fileHashes[c]
					perAlgoChildren = append(perAlgoChildren, DirChild{
						Name:        c.Name,
						IsDir:       false,
						ContentHash: wf.Hashes[algo],
					})
				}
			}
			c, s, err := ComputeDirDigests(algo, perAlgoChildren)
			if err != nil {
				return nil, nil, err
			}
			content[algo] = c
			structure[algo] = s
		}

		wd := WalkedDir{RelPath: top.node.RelPath, ContentDigest: content, StructureDigest: structure}
		computed[top.node] = wd
		if top.node != root {
			result.Dirs = append(result.Dirs, wd)
		}
	}

	for _, f := range w.fileHashes {
		result.Files = append(result.Files, f)
	}
	sort.Slice(result.Files, func(i, j int) bool { return CompareNames(result.Files[i].RelPath, result.Files[j].RelPath) < 0 })
	sort.Slice(result.Dirs, func(i, j int) bool { return CompareNames(result.Dirs[i].RelPath, result.Dirs[j].RelPath) < 0 })

	finalRoot := computed[root]
	return finalRoot.ContentDigest, finalRoot.StructureDigest, nil
}
