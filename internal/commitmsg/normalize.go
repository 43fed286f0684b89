package commitmsg

import (
	"strings"
)

// lineBreaks folds CRLF and lone CR line endings into "\n".
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// explanatoryMarkers start lines that talk about the message instead of
// being the message.
var explanatoryMarkers = []string{
	"analysis:",
	"justification:",
	"explanation:",
	"reasoning:",
	"based on",
	"the message",
	"here is",
	"here's",
	"this commit",
	"note:",
}

// keywordGroups classify free text. Order matters: the first group with a
// substring hit wins.
var keywordGroups = []struct {
	typ      Type
	keywords []string
}{
	{TypeFeat, []string{"add", "implement", "create", "new"}},
	{TypeFix, []string{"fix", "resolve", "correct", "repair", "bug"}},
	{TypeDocs, []string{"doc", "readme", "comment"}},
	{TypeTest, []string{"test", "spec"}},
	{TypeRefactor, []string{"refactor", "restructure"}},
	{TypeStyle, []string{"style", "format"}},
}

// Normalize turns an optional model answer into a valid summary line. It
// never fails: when the candidate is unusable the summary is derived from
// files.
func Normalize(candidate *string, files []string) string {
	return Compose(candidate, files, false).Summary
}

// Compose builds a full CommitMessage. With withBody set, the candidate lines
// after the selected summary (cleaned the same way) become the body. A
// summary synthesized from files never has a body.
func Compose(candidate *string, files []string, withBody bool) CommitMessage {
	if candidate == nil || strings.TrimSpace(*candidate) == "" {
		return CommitMessage{Summary: Fallback(files)}
	}

	lines := cleanLines(*candidate)
	idx := selectLine(lines)
	if idx < 0 {
		return CommitMessage{Summary: Fallback(files)}
	}

	msg := CommitMessage{Summary: truncate(repair(lines[idx]))}
	if withBody {
		msg.Body = bodyAfter(lines, idx)
	}
	return msg
}

// cleanLines splits the candidate and removes quoting and formatting noise
// from each line. Empty lines are kept as "" so positions stay meaningful.
func cleanLines(candidate string) []string {
	raw := strings.Split(lineBreaks.Replace(candidate), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, cleanLine(line))
	}
	return lines
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "```") {
		return ""
	}
	if strings.HasPrefix(line, ">") {
		line = strings.TrimSpace(strings.TrimPrefix(line, ">"))
	}

	line = stripQuotes(line)

	if lower := strings.ToLower(line); strings.HasPrefix(lower, "commit message:") {
		line = stripQuotes(strings.TrimSpace(line[len("commit message:"):]))
	}
	return line
}

// stripQuotes removes one layer of matching surrounding quotes.
func stripQuotes(line string) string {
	if len(line) < 2 {
		return line
	}
	first, last := line[0], line[len(line)-1]
	if first == last && (first == '"' || first == '\'' || first == '`') {
		return strings.TrimSpace(line[1 : len(line)-1])
	}
	return line
}

// selectLine returns the index of the working summary, or -1.
func selectLine(lines []string) int {
	for i, line := range lines {
		if conventionalPattern.MatchString(line) {
			return i
		}
	}
	for i, line := range lines {
		if line == "" || isExplanatory(line) || isBarePrefix(line) {
			continue
		}
		return i
	}
	return -1
}

func isExplanatory(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range explanatoryMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

// isBarePrefix matches lines such as "feat:" that carry no description.
func isBarePrefix(line string) bool {
	m := unspacedPattern.FindStringSubmatch(line)
	return m != nil && strings.TrimSpace(m[3]) == ""
}

// repair makes a selected line conventional.
func repair(line string) string {
	if conventionalPattern.MatchString(line) {
		return line
	}

	if m := unspacedPattern.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[3]) != "" {
		scope := m[2]
		if strings.TrimSpace(strings.Trim(scope, "()")) == "" {
			scope = ""
		}
		return m[1] + scope + ": " + strings.TrimSpace(m[3])
	}

	return string(classifyText(line)) + ": " + line
}

func classifyText(text string) Type {
	lower := strings.ToLower(text)
	for _, group := range keywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.typ
			}
		}
	}
	return TypeChore
}

func bodyAfter(lines []string, idx int) []string {
	var body []string
	for _, line := range lines[idx+1:] {
		if line == "" || isExplanatory(line) {
			continue
		}
		body = append(body, line)
	}
	return body
}
