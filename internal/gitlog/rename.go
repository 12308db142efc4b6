package gitlog

import (
	"regexp"
	"strings"
)

var (
	// "core/{domain => adapter}/bs/App.go"
	braceRenameRegex = regexp.MustCompile(`(.*)\{(.*)\s=>\s(.*)\}(.*)`)
	// "old/App.go => new/App.go"
	basicRenameRegex = regexp.MustCompile(`(.*)\s=>\s(.*)`)
)

// SplitRename resolves numstat rename syntax into the old and new paths.
// ok is false when path is a plain file name.
func SplitRename(path string) (from, to string, ok bool) {
	if m := braceRenameRegex.FindStringSubmatch(path); m != nil {
		prefix, oldPart, newPart, suffix := m[1], m[2], m[3], m[4]
		return joinRenamePart(prefix, oldPart, suffix), joinRenamePart(prefix, newPart, suffix), true
	}
	if m := basicRenameRegex.FindStringSubmatch(path); m != nil {
		return m[1], m[2], true
	}
	return path, path, false
}

// joinRenamePart collapses the doubled slash left by an empty brace side,
// e.g. "src/{ => lib}/a.go" gives "src/a.go" for the old path
func joinRenamePart(prefix, part, suffix string) string {
	if part == "" {
		return prefix + strings.TrimPrefix(suffix, "/")
	}
	return prefix + part + suffix
}
