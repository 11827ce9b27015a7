package format

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pomfort/ascmhl-go/internals"
)

const (
	generationExt = ".ascmhl"
	lockFileName  = ".lock"
)

var generationNamePattern = regexp.MustCompile(`^(\d{4})_.+_\d{4}-\d{2}-\d{2}_\d{6}\.ascmhl$`)

// Store is the filesystem implementation of internals.ManifestStore. Each
// sealed root owns one Store, rooted at RootPath/ascmhl.
type Store struct {
	RootPath string
	RootName string
}

// NewStore builds a Store for the sealed root at rootPath, creating its
// ascmhl directory if it does not already exist.
func NewStore(rootPath string) (*Store, error) {
	s := &Store{RootPath: rootPath, RootName: filepath.Base(filepath.Clean(rootPath))}
	if err := os.MkdirAll(s.storeDir(), 0o755); err != nil {
		return nil, &internals.IOError{Path: s.storeDir(), Err: err}
	}
	return s, nil
}

func (s *Store) storeDir() string {
	return filepath.Join(s.RootPath, internals.StoreDirName)
}

// ListGenerations implements internals.ManifestStore.
func (s *Store) ListGenerations() ([]int, error) {
	entries, err := os.ReadDir(s.storeDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &internals.IOError{Path: s.storeDir(), Err: err}
	}

	var numbers []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := generationNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for i, n := range numbers {
		if n != i+1 {
			return nil, &internals.CorruptHistoryError{RootPath: s.RootPath, Reason: fmt.Sprintf("generation sequence has a gap or duplicate at position %d (found %d)", i+1, n)}
		}
	}
	return numbers, nil
}

// Load implements internals.ManifestStore.
func (s *Store) Load(n int) (internals.Generation, error) {
	path, err := s.pathForExisting(n)
	if err != nil {
		return internals.Generation{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return internals.Generation{}, &internals.IOError{Path: path, Err: err}
	}
	gen, err := UnmarshalGeneration(data)
	if err != nil {
		return internals.Generation{}, &internals.CorruptHistoryError{RootPath: s.RootPath, Reason: "generation " + strconv.Itoa(n) + " could not be parsed: " + err.Error()}
	}
	if gen.Number != n {
		return internals.Generation{}, &internals.CorruptHistoryError{RootPath: s.RootPath, Reason: fmt.Sprintf("file for generation %d contains generation %d", n, gen.Number)}
	}
	if gen.Number > 1 && gen.PreviousRef != gen.Number-1 {
		return internals.Generation{}, &internals.CorruptHistoryError{RootPath: s.RootPath, Reason: fmt.Sprintf("generation %d has previous-reference %d, expected %d", gen.Number, gen.PreviousRef, gen.Number-1)}
	}
	return gen, nil
}

func (s *Store) pathForExisting(n int) (string, error) {
	entries, err := os.ReadDir(s.storeDir())
	if err != nil {
		return "", &internals.IOError{Path: s.storeDir(), Err: err}
	}
	prefix := fmt.Sprintf("%04d_", n)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) && generationNamePattern.MatchString(e.Name()) {
			return filepath.Join(s.storeDir(), e.Name()), nil
		}
	}
	return "", &internals.CorruptHistoryError{RootPath: s.RootPath, Reason: fmt.Sprintf("no generation file for generation %d", n)}
}

// Append implements internals.ManifestStore: writes gen to a temp file in
// the store directory, fsyncs it, then renames it into place. A reader
// enumerating the directory never observes a partially written file under
// the final name.
func (s *Store) Append(gen internals.Generation) (string, error) {
	existing, err := s.ListGenerations()
	if err != nil {
		return "", err
	}
	wantPrev := 0
	if len(existing) > 0 {
		wantPrev = existing[len(existing)-1]
	}
	if gen.Number != wantPrev+1 {
		return "", &internals.CorruptHistoryError{RootPath: s.RootPath, Reason: fmt.Sprintf("attempted to append generation %d after %d", gen.Number, wantPrev)}
	}

	data, err := MarshalGeneration(gen)
	if err != nil {
		return "", err
	}

	finalName := fmt.Sprintf("%04d_%s_%s%s", gen.Number, s.RootName, gen.CreatedAt.Format("2006-01-02_150405"), generationExt)
	finalPath := filepath.Join(s.storeDir(), finalName)
	tmpPath := finalPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", &internals.IOError{Path: tmpPath, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", &internals.IOError{Path: tmpPath, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", &internals.IOError{Path: tmpPath, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &internals.IOError{Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", &internals.IOError{Path: finalPath, Err: err}
	}

	if dir, err := os.Open(s.storeDir()); err == nil {
		dir.Sync()
		dir.Close()
	}
	return finalPath, nil
}

// LocateNestedRoots implements internals.ManifestStore: it walks the
// subtree under (but not including) `under`, returning every directory
// that is itself a sealed root, without descending past a sealed root's
// own boundary once found.
func (s *Store) LocateNestedRoots(under string) ([]string, error) {
	var found []string
	entries, err := os.ReadDir(under)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &internals.IOError{Path: under, Err: err}
	}

	type frame struct{ path string }
	var stack []frame
	for _, e := range entries {
		if !e.IsDir() || e.Name() == internals.StoreDirName {
			continue
		}
		stack = append(stack, frame{path: filepath.Join(under, e.Name())})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isSealedRoot(top.path) {
			found = append(found, top.path)
			continue
		}

		children, err := os.ReadDir(top.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &internals.IOError{Path: top.path, Err: err}
		}
		for _, c := range children {
			if !c.IsDir() || c.Name() == internals.StoreDirName {
				continue
			}
			stack = append(stack, frame{path: filepath.Join(top.path, c.Name())})
		}
	}

	sort.Strings(found)
	return found, nil
}

func isSealedRoot(path string) bool {
	storeDir := filepath.Join(path, internals.StoreDirName)
	entries, err := os.ReadDir(storeDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if generationNamePattern.MatchString(e.Name()) {
			return true
		}
	}
	return false
}

// Lock implements internals.ManifestStore using an advisory flock on a
// dedicated lock file, per spec.md §5 ("optional advisory lock ... absence
// of the lock is permitted").
func (s *Store) Lock() (func(), error) {
	return lockFile(filepath.Join(s.storeDir(), lockFileName))
}
