package llm

import "strings"

// diffPlaceholder marks where the staged diff is inserted into a template.
const diffPlaceholder = "{{diff}}"

// truncationMarker is appended to a diff cut at MaxDiffSize.
const truncationMarker = "\n... (truncated)"

const simplePrompt = `Carefully analyze the following git diff and generate a specific and descriptive commit message following Conventional Commits.

IMPORTANT INSTRUCTIONS:
1. Read the diff line by line to understand WHAT is being changed exactly
2. Identify specific elements like buttons, functions, classes, text or styles
3. Describe the specific action, don't use generic terms like "updates" or "modifies"
4. Be descriptive about WHAT is being added, removed or changed

PREFIXES:
- feat: new functionality (buttons, forms, pages, functions)
- fix: bug fixes
- docs: documentation (README, comments)
- style: style/format changes (CSS, indentation)
- refactor: code restructuring
- test: add or modify tests
- chore: maintenance tasks

EXAMPLES OF GOOD MESSAGES:
- "feat: add contact button in header"
- "feat: implement login form"
- "fix: correct email validation"
- "style: improve navigation spacing"
- "docs: add comments to calculate function"

EXAMPLES OF BAD MESSAGES (avoid):
- "docs: update index.html"
- "feat: modify file"
- "chore: various changes"

Diff to analyze:
{{diff}}

RESPOND ONLY WITH THE COMMIT MESSAGE. DO NOT include explanations, justifications or additional text.

Required format: "prefix: specific description"
Maximum 50 characters.

Commit message:`

const detailedPrompt = `Analyze the following git diff and generate a detailed commit message with file-by-file breakdown.

FORMAT REQUIREMENTS:
1. First line: Conventional commit summary (max 50 chars)
2. Empty line
3. File-by-file breakdown with specific changes

PREFIXES:
- feat: new functionality
- fix: bug fixes
- docs: documentation
- style: formatting/CSS
- refactor: code restructuring
- test: tests
- chore: maintenance

EXAMPLE OUTPUT:
feat: enhance user interface and testing

- index.html: add contact button in header navigation
- styles.css: update button hover effects and spacing
- test_ui.py: add unit tests for button functionality
- README.md: update installation instructions

INSTRUCTIONS:
1. Analyze each file's changes specifically
2. Use action verbs: add, remove, update, fix, implement
3. Be specific about WHAT changed, not just WHERE
4. Group related changes under one summary if they serve the same purpose
5. Keep file descriptions concise but descriptive

Diff to analyze:
{{diff}}

Generate the commit message in the exact format shown above:
`

// BuildPrompt renders the commit prompt for diff. The detailed template asks
// for a file-by-file body under the summary.
func BuildPrompt(diff string, detailed bool) string {
	tmpl := simplePrompt
	if detailed {
		tmpl = detailedPrompt
	}
	return strings.Replace(tmpl, diffPlaceholder, diff, 1)
}

// TruncateDiff limits diff to max characters and marks the cut.
func TruncateDiff(diff string, max int) string {
	if max <= 0 {
		return diff
	}
	n := 0
	for i := range diff {
		if n == max {
			return diff[:i] + truncationMarker
		}
		n++
	}
	return diff
}
