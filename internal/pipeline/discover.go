package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrRootNotDir is returned by [Walk] when the root is not a directory.
var ErrRootNotDir = errors.New("root is not a directory")

// Candidate is one filesystem entry found under the root.
type Candidate struct {
	Path string
	Mode fs.FileMode // Type bits from the directory entry (lstat semantics).
	Dir  bool        // Entry is a directory or a symlink resolving to one.
}

// IsDir reports whether the entry is a directory, following symlinks. A link
// to a directory is a directory here whether or not the walk descends into it.
func (c Candidate) IsDir() bool { return c.Dir }

// WalkOptions tunes [Walk].
type WalkOptions struct {
	// Exclude lists directory base names (case-insensitive) that are pruned
	// together with everything below them.
	Exclude []string
	// FollowSymlinks descends into symlinked directories. Every directory's
	// resolved path is tracked so link cycles are cut.
	FollowSymlinks bool
	// MaxDepth bounds recursion; direct children of the root are depth 1.
	// Zero means unlimited.
	MaxDepth int
}

// Walk lists every file and directory below root (root itself excluded),
// depth-first in lexical order per directory.
//
// Symlinks are listed with their link path. By default symlinked
// directories are not descended into, so the walk always terminates.
//
// A root that is missing, unreadable, or not a directory fails the walk.
// Errors reading a nested directory are passed to onErr (when non-nil) and
// that subtree is skipped.
func Walk(root string, opts WalkOptions, onErr func(path string, err error)) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrRootNotDir)
	}

	w := &walker{opts: opts, onErr: onErr, visited: make(map[string]bool)}
	w.markVisited(root)
	if err := w.walkDir(root, 1); err != nil {
		return nil, err
	}
	return w.out, nil
}

type walker struct {
	opts    WalkOptions
	onErr   func(path string, err error)
	visited map[string]bool // Real paths of directories already listed.
	out     []Candidate
}

func (w *walker) walkDir(dir string, depth int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		mode := e.Type()

		isLink := mode&fs.ModeSymlink != 0
		isDir := mode.IsDir()
		if isLink {
			isDir = linksToDir(path)
		}
		if isDir && w.excluded(e.Name()) {
			continue
		}

		w.out = append(w.out, Candidate{Path: path, Mode: mode, Dir: isDir})

		if !isDir || (isLink && !w.opts.FollowSymlinks) {
			continue
		}
		if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
			continue
		}
		if w.opts.FollowSymlinks && !w.markVisited(path) {
			continue
		}
		if err := w.walkDir(path, depth+1); err != nil && w.onErr != nil {
			w.onErr(path, err)
		}
	}
	return nil
}

// markVisited records dir's resolved path and reports whether it was new. It
// only matters when symlinks are followed; plain directory trees cannot loop.
func (w *walker) markVisited(dir string) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}
	if w.visited[resolved] {
		return false
	}
	w.visited[resolved] = true
	return true
}

func (w *walker) excluded(name string) bool {
	for _, ex := range w.opts.Exclude {
		if strings.EqualFold(name, ex) {
			return true
		}
	}
	return false
}

// linksToDir reports whether the symlink at path resolves to a directory.
func linksToDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// selectFiles returns the paths of non-directory candidates accepted by f,
// in walk order.
func selectFiles(candidates []Candidate, f ExtensionFilter) []string {
	if f.Empty() {
		return nil
	}
	var files []string
	for _, c := range candidates {
		if c.IsDir() {
			continue
		}
		if f.Matches(c.Path) {
			files = append(files, c.Path)
		}
	}
	return files
}
