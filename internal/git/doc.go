// Package git is commitbuddy's Diff Source. It finds the repository, reads the
// staged change set and records the confirmed commit.
//
// Repository discovery and HEAD lookups go through go-git. Everything that
// touches the index or creates objects shells out to the git binary through a
// CommandExecutor, so hooks, signing and user configuration behave exactly as
// they do for a manual `git commit`.
//
// # Core Components
//
// - Repository: staged changes, commit, root and HEAD lookups
// - ChangeSet: the staged diff, its files and line counts
// - CommandExecutor: interface for running git (ExecExecutor in production)
//
// # Staged Changes
//
// StagedChanges returns errors.ErrNothingStaged when the index matches HEAD.
// When git reports "Binary files ... differ" the diff is read again with
// --text. The diff is cleaned of NUL bytes, byte order marks and CR line
// endings before it leaves the package.
//
// # Commit Failures
//
// Commit feeds the message to `git commit -F -` and classifies refusals into
// an *errors.CommitError (nothing to commit, missing identity, index lock,
// pathspec, hook rejection) with a hint the CLI prints under the error.
//
// # Usage
//
//	repo := git.NewRepository(cfg.RepoPath, log)
//	if err := repo.Validate(ctx); err != nil {
//	    return err
//	}
//	changes, err := repo.StagedChanges(ctx)
//	if errors.Is(err, errors.ErrNothingStaged) {
//	    // tell the user what to stage
//	}
//	hash, err := repo.Commit(ctx, message)
//
// Every git subprocess is bounded by the repository timeout (15s by default).
package git
