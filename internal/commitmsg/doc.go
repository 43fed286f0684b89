// Package commitmsg normalizes commit messages to Conventional Commits.
//
// Normalize takes whatever the model answered (possibly nothing) plus the
// staged paths and always returns a summary line of the form
// "<type>(<scope>): <description>" no longer than 72 characters, with type in
// feat, fix, docs, style, refactor, test, chore. It has no error return.
//
// A candidate is cleaned line by line (quotes, markdown quoting, code fences
// and a "Commit message:" label are removed). The first conventional line
// wins; otherwise the first line that is not commentary ("Analysis:",
// "Here is", ...) is repaired by keyword classification. With no usable
// candidate the summary is synthesized from the file list by Fallback.
//
//	commitmsg.Normalize(nil, []string{"main.py"})                // "feat: update main.py"
//	commitmsg.Normalize(&answer, files)                          // repaired model answer
//	commitmsg.Compose(&answer, files, true).String()             // summary plus body
package commitmsg
