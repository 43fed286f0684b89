package git

import (
	"strconv"
	"strings"

	"github.com/bashhack/commitbuddy/internal/errors"
)

// ChangeSet is the staged content of the repository.
type ChangeSet struct {
	// Diff is the cleaned unified diff of the index against HEAD.
	Diff string

	// Files lists the staged paths, relative to the repository root.
	Files []string

	// Additions and Deletions come from numstat. Binary files count zero.
	Additions int
	Deletions int
}

// Lines returns the number of lines in the diff.
func (c ChangeSet) Lines() int {
	if c.Diff == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(c.Diff, "\n"), "\n") + 1
}

// cleanDiff strips NUL bytes and byte order marks and normalises line endings.
func cleanDiff(diff string) string {
	diff = strings.ReplaceAll(diff, "\x00", "")
	diff = strings.ReplaceAll(diff, "\ufeff", "")
	diff = strings.ReplaceAll(diff, "\r\n", "\n")
	return strings.ReplaceAll(diff, "\r", "\n")
}

func hasBinaryMarker(diff string) bool {
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(strings.TrimSpace(line), " differ") {
			return true
		}
	}
	return false
}

// splitNull splits `-z` output into non-empty paths.
func splitNull(output string) []string {
	var files []string
	for _, f := range strings.Split(output, "\x00") {
		f = strings.TrimSpace(f)
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// parseNumstat sums `git diff --numstat` output. Binary entries ("-\t-")
// contribute nothing.
func parseNumstat(output string) (additions, deletions int) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 3 {
			continue
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			additions += n
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			deletions += n
		}
	}
	return additions, deletions
}

// identityHint is printed when git has no user.name/user.email.
const identityHint = `Configure your git identity:
  git config --global user.name "Your Name"
  git config --global user.email "you@example.com"`

// classifyCommitError turns git's refusal text into a CommitError with a hint.
func classifyCommitError(output string, cause error) error {
	lower := strings.ToLower(output)

	var reason errors.CommitReason
	var hint string
	switch {
	case strings.Contains(lower, "nothing to commit"), strings.Contains(lower, "no changes added to commit"):
		reason = errors.CommitReasonNothingToCommit
		hint = "Stage changes with 'git add <file>' and try again."
	case strings.Contains(lower, "please tell me who you are"),
		strings.Contains(lower, "unable to auto-detect email"),
		strings.Contains(lower, "empty ident name"):
		reason = errors.CommitReasonIdentity
		hint = identityHint
	case strings.Contains(lower, "index.lock"), strings.Contains(lower, "another git process"):
		reason = errors.CommitReasonLocked
		hint = "Repository is locked. Try again in a few seconds."
	case strings.Contains(lower, "pathspec"):
		reason = errors.CommitReasonPathspec
		hint = "Check the staged file paths with 'git status'."
	case strings.Contains(lower, "empty commit message"):
		reason = errors.CommitReasonEmptyMessage
		hint = "Provide a non-empty commit message."
	case strings.Contains(lower, "hook"):
		reason = errors.CommitReasonHook
		hint = "A git hook rejected the commit. Review its output above."
	default:
		reason = errors.CommitReasonUnknown
	}

	err := error(errors.NewCommitError(reason, output, cause))
	if hint != "" {
		err = errors.WithHint(err, hint)
	}
	return err
}
