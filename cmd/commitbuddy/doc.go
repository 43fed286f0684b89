// Package main implements commitbuddy, a commit message assistant for git
//
// commitbuddy reads the staged changes of a repository, asks an
// OpenAI-compatible chat model (Groq by default) to describe them, normalizes
// the answer into a Conventional Commits message and commits it once you
// accept. When no API key is configured or the API fails, the message is
// synthesized from the staged file names instead, so a commit is always
// possible.
//
// # Basic Usage
//
//	git add .
//	commitbuddy --from-diff             # propose, confirm, commit
//	commitbuddy --from-diff --yes       # commit without asking
//	commitbuddy --from-diff --dry-run   # print the proposal only
//	commitbuddy --debug-api             # explain why messages fall back
//
// At the prompt, answer y (or Enter) to commit, n to cancel, or e to type a
// replacement message on one line.
//
// # Configuration Options
//
// Settings are applied in this order, later sources winning: a .env file in
// the working directory, the YAML file named by COMMITBUDDY_CONFIG (default
// $XDG_CONFIG_HOME/commitbuddy/config.yaml), environment variables and flags.
//
//	--repo          Repository path (env: COMMITBUDDY_REPO_PATH)
//	--model         Model to request (env: COMMITBUDDY_MODEL)
//	--endpoint      Chat completions URL (env: COMMITBUDDY_ENDPOINT)
//	--detailed      Summary plus per-file bullets (env: COMMITBUDDY_DETAILED_COMMITS)
//	--yes, -y       Skip the confirmation prompt
//	--dry-run       Print the proposed message and exit
//	--check         Diagnostics check: key, connectivity, sample, models, fallback, all
//	--format        Diagnostics output: text, yaml, json
//	--verbose, -v   Show debug messages (env: COMMITBUDDY_VERBOSE)
//	--debug         Write a debug log file (env: COMMITBUDDY_DEBUG)
//	--log-file      Debug log location (env: COMMITBUDDY_LOG_FILE)
//	--no-color      Plain output (env: NO_COLOR)
//	--version       Print version information and exit
//
// The credential is read from GROQ_API_KEY. Timeouts and limits use
// COMMITBUDDY_TIMEOUT_SECONDS, COMMITBUDDY_MAX_DIFF_SIZE,
// COMMITBUDDY_MAX_TOKENS and COMMITBUDDY_TEMPERATURE.
//
// # Exit Codes
//
//	0  commit created, cancelled, nothing staged, or diagnostics printed
//	1  invalid flags or configuration, not a repository, git missing,
//	   another session running, or git refused the commit
//
// Only one session may run per repository at a time; a second one fails with
// a hint instead of racing on the index.
package main
