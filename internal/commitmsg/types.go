package commitmsg

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Type is a Conventional Commits type token.
type Type string

const (
	TypeFeat     Type = "feat"
	TypeFix      Type = "fix"
	TypeDocs     Type = "docs"
	TypeStyle    Type = "style"
	TypeRefactor Type = "refactor"
	TypeTest     Type = "test"
	TypeChore    Type = "chore"
)

// Types is the closed set of accepted types.
var Types = []Type{TypeFeat, TypeFix, TypeDocs, TypeStyle, TypeRefactor, TypeTest, TypeChore}

// MaxSummaryLength is the longest summary line, in characters.
const MaxSummaryLength = 72

const ellipsis = "..."

var (
	conventionalPattern = regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore)(\(.+\))?: .+`)

	// unspacedPattern catches "fix:bug" and "feat(api):thing".
	unspacedPattern = regexp.MustCompile(`(?i)^(feat|fix|docs|style|refactor|test|chore)(\([^)]*\))?:\s*(.*)$`)
)

// CommitMessage is a normalized commit message.
type CommitMessage struct {
	Summary string
	Body    []string
}

// String renders the message as git expects it.
func (m CommitMessage) String() string {
	if len(m.Body) == 0 {
		return m.Summary
	}
	return m.Summary + "\n\n" + strings.Join(m.Body, "\n")
}

// Validate reports whether s is a single Conventional Commits summary line of
// at most MaxSummaryLength characters.
func Validate(s string) bool {
	if s == "" || s != strings.TrimSpace(s) || strings.ContainsAny(s, "\r\n") {
		return false
	}
	if utf8.RuneCountInString(s) > MaxSummaryLength {
		return false
	}
	return conventionalPattern.MatchString(s)
}

// TypeOf returns the lower-cased type of a Conventional Commits line.
func TypeOf(s string) (Type, bool) {
	m := conventionalPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return Type(strings.ToLower(m[1])), true
}

// truncate enforces MaxSummaryLength. When cutting would break the
// "<type>(<scope>): " prefix the scope is dropped first.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxSummaryLength {
		return s
	}

	cut := cutRunes(s, MaxSummaryLength-len(ellipsis)) + ellipsis
	if conventionalPattern.MatchString(cut) || !conventionalPattern.MatchString(s) {
		return cut
	}

	typ, _ := TypeOf(s)
	var desc string
	if m := unspacedPattern.FindStringSubmatch(s); m != nil {
		desc = m[3]
	} else if _, after, ok := strings.Cut(s, "): "); ok {
		// The scope itself holds a ")" so the description starts after the
		// first "): ".
		desc = after
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		desc = "update"
	}
	return truncate(string(typ) + ": " + desc)
}

func cutRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
