package commitmsg

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// fallbackNoFiles is returned when there is nothing to describe.
const fallbackNoFiles = "chore: update files"

var (
	configExtensions = map[string]bool{
		".json": true, ".yml": true, ".yaml": true, ".toml": true, ".ini": true, ".cfg": true,
	}
	sourceExtensions = map[string]bool{
		".py": true, ".js": true, ".ts": true, ".java": true, ".cpp": true, ".c": true,
		".go": true, ".rs": true, ".php": true, ".rb": true, ".cs": true,
	}
)

// tieOrder resolves equal scores.
var tieOrder = []Type{TypeDocs, TypeTest, TypeChore, TypeFeat}

// Fallback synthesizes a summary from the changed paths alone. It is a pure
// function of the basenames and extensions.
func Fallback(files []string) string {
	var names []string
	scores := map[Type]int{}

	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		typ, score := scoreFile(f)
		scores[typ] += score
		names = append(names, basename(f))
	}

	if len(names) == 0 {
		return fallbackNoFiles
	}

	best := tieOrder[0]
	for _, typ := range tieOrder[1:] {
		if scores[typ] > scores[best] {
			best = typ
		}
	}

	var subject string
	switch {
	case len(names) == 1:
		subject = names[0]
	case len(names) <= 3:
		subject = strings.Join(names, ", ")
	default:
		subject = fmt.Sprintf("%d files", len(names))
	}

	return truncate(fmt.Sprintf("%s: update %s", best, subject))
}

// scoreFile applies the first matching rule for one path.
func scoreFile(p string) (Type, int) {
	full := strings.ToLower(filepath.ToSlash(p))
	name := strings.ToLower(basename(p))
	ext := path.Ext(name)

	switch {
	case containsAny(name, "readme", "doc", "changelog") || ext == ".md":
		return TypeDocs, 3
	case containsAny(name, "test", "spec") || containsAny(full, "test_", "_test", ".test"):
		return TypeTest, 3
	case containsAny(name, "config", "settings") || configExtensions[ext]:
		return TypeChore, 2
	case sourceExtensions[ext]:
		return TypeFeat, 1
	default:
		return TypeChore, 1
	}
}

func basename(p string) string {
	p = strings.TrimRight(filepath.ToSlash(strings.TrimSpace(p)), "/")
	return path.Base(p)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
