// Package commitbuddy writes Conventional Commits messages for staged changes
//
// commitbuddy reads what you staged, asks a chat model to describe it,
// normalizes the answer into a "type(scope): description" summary with an
// optional bullet body, and commits after you confirm. Without an API key, or
// when the API is unavailable, it derives the message from the staged file
// names, so the tool works offline too.
//
// # Quick Start
//
//	export GROQ_API_KEY=gsk_...
//	git add .
//	commitbuddy --from-diff
//
//	# Why am I getting file-name messages?
//	commitbuddy --debug-api
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/commitbuddy: Command-line interface
//   - internal/git: Diff Source (staged changes and commits)
//   - internal/llm: Message Source (chat completions client)
//   - internal/commitmsg: Message Normalizer and file-name fallback
//   - internal/confirm: Confirmation Loop (accept, reject, edit)
//   - internal/buddy: One generate-confirm-commit cycle
//   - internal/diagnostics: API self-checks behind --debug-api
//   - internal/config: Defaults, .env, YAML, environment and flags
//   - internal/lock: One session per repository
//   - internal/logger: User messages and the debug log
//   - internal/ui: Terminal styles
//   - internal/errors: Sentinels, typed errors and hints
//
// # Message Format
//
// Every committed summary matches
//
//	(?i)^(feat|fix|docs|style|refactor|test|chore)(\(.+\))?: .+
//
// and is at most 72 characters long. See the commitmsg package for the repair rules.
package commitbuddy
