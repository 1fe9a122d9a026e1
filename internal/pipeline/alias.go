package pipeline

import "path/filepath"

// aliasSet tracks which walk path owns each resolved file. Two walk paths that
// resolve to the same file (a symlink next to its target, or a file reached
// through a followed directory link) would otherwise both be converted, and
// the second pass would decode already-converted UTF-8 as the source
// encoding.
type aliasSet struct {
	owners map[string]string // resolved path → walk path that claimed it
}

func newAliasSet() *aliasSet {
	return &aliasSet{owners: make(map[string]string)}
}

// claim registers path and reports whether it owns its resolved file. When it
// does not, the owning path is returned. Paths that cannot be resolved are
// always owned so the converter reports their real error.
func (a *aliasSet) claim(path string) (owner string, ok bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", true
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	if owner, exists := a.owners[resolved]; exists && owner != path {
		return owner, false
	}
	a.owners[resolved] = path
	return "", true
}
