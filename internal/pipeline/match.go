package pipeline

import (
	"path/filepath"
	"strings"
)

// ExtensionFilter is a case-insensitive extension allow-list. The zero value
// matches nothing.
type ExtensionFilter struct {
	exts []string
}

// NewExtensionFilter returns a filter over exts. Entries are compared
// verbatim apart from case, so they should include the leading dot.
func NewExtensionFilter(exts []string) ExtensionFilter {
	return ExtensionFilter{exts: append([]string(nil), exts...)}
}

// Empty reports whether the filter has no entries.
func (f ExtensionFilter) Empty() bool { return len(f.exts) == 0 }

// Matches reports whether the extension of path (from the last '.' of the
// final element, dot included) equals any entry, ignoring case.
func (f ExtensionFilter) Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range f.exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// Matches is the one-shot form of [ExtensionFilter.Matches].
func Matches(path string, filters []string) bool {
	return NewExtensionFilter(filters).Matches(path)
}
