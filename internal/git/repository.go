package git

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/logger"
	gogit "github.com/go-git/go-git/v5"
)

// DefaultTimeout bounds a single git subprocess.
const DefaultTimeout = 15 * time.Second

// shortHashLen is the length of the commit hash reported to the user.
const shortHashLen = 8

// Repository is the Diff Source: it reads staged changes from a working tree
// and turns a confirmed message into a commit.
type Repository struct {
	path     string
	logger   logger.Logger
	executor CommandExecutor
	timeout  time.Duration
}

// NewRepository creates a Repository with default dependencies
func NewRepository(path string, log logger.Logger) *Repository {
	return NewRepositoryWithDeps(path, log, NewExecExecutor(), DefaultTimeout)
}

// NewRepositoryWithDeps creates a Repository with custom dependencies
func NewRepositoryWithDeps(path string, log logger.Logger, executor CommandExecutor, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Repository{
		path:     path,
		logger:   log,
		executor: executor,
		timeout:  timeout,
	}
}

// IsRepository reports whether path is inside a git working tree. It asks
// go-git first and only shells out to git when go-git fails for a reason
// other than "no repository here" (for example an unsupported extension).
func IsRepository(path string) (bool, error) {
	_, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return false, nil
	}

	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	out, execErr := NewExecExecutor().ExecuteWithOutput(context.Background(), cmd)
	if execErr != nil {
		if errors.Is(execErr, errors.ErrGitNotInstalled) {
			return false, execErr
		}
		return false, nil
	}
	return strings.TrimSpace(out) == "true", nil
}

// Path returns the path the repository was opened with.
func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(r.path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, errors.Wrapf(errors.ErrNotGitRepository, "%s", r.path)
		}
		return nil, errors.Wrap(err, "failed to open repository")
	}
	return repo, nil
}

// Root returns the top-level directory of the working tree.
func (r *Repository) Root() (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, "failed to read worktree")
	}
	return wt.Filesystem.Root(), nil
}

// Validate checks that git is usable on the repository.
func (r *Repository) Validate(ctx context.Context) error {
	if _, err := r.runGitCommandWithOutput(ctx, "status", "--porcelain"); err != nil {
		if errors.Is(err, errors.ErrGitNotInstalled) {
			return errors.WithHint(err, "Install git and make sure it is on your PATH.")
		}
		var gitErr *errors.GitError
		if errors.As(err, &gitErr) && strings.Contains(strings.ToLower(gitErr.Output), "not a git repository") {
			return errors.WithHint(
				errors.Wrapf(errors.ErrNotGitRepository, "%s", r.path),
				"Run commitbuddy inside a git repository or pass --repo.",
			)
		}
		return err
	}
	return nil
}

// StagedFiles lists the paths staged for commit.
func (r *Repository) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.runGitCommandWithOutput(ctx, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	return splitNull(out), nil
}

// UnstagedFiles lists tracked paths modified in the working tree but not staged.
func (r *Repository) UnstagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.runGitCommandWithOutput(ctx, "diff", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	return splitNull(out), nil
}

// StagedChanges returns the staged change set, or ErrNothingStaged.
func (r *Repository) StagedChanges(ctx context.Context) (ChangeSet, error) {
	files, err := r.StagedFiles(ctx)
	if err != nil {
		return ChangeSet{}, err
	}
	if len(files) == 0 {
		return ChangeSet{}, errors.ErrNothingStaged
	}

	diff, err := r.runGitCommandWithOutput(ctx, "diff", "--cached")
	if err != nil {
		return ChangeSet{}, err
	}

	if hasBinaryMarker(diff) {
		r.logger.Info("Staged diff contains binary files, retrying with --text")
		textDiff, err := r.runGitCommandWithOutput(ctx, "diff", "--cached", "--text")
		if err != nil {
			r.logger.Warning("git diff --text failed, keeping binary summary: %v", err)
		} else {
			diff = textDiff
		}
	}

	changes := ChangeSet{
		Diff:  cleanDiff(diff),
		Files: files,
	}

	numstat, err := r.runGitCommandWithOutput(ctx, "diff", "--cached", "--numstat")
	if err != nil {
		// Counts are presentation only.
		r.logger.Warning("Failed to read diff statistics: %v", err)
	} else {
		changes.Additions, changes.Deletions = parseNumstat(numstat)
	}

	r.logger.Info("Staged %d file(s), %d diff line(s), +%d -%d", len(files), changes.Lines(), changes.Additions, changes.Deletions)
	return changes, nil
}

// Commit records the staged changes with message and returns the short hash
// of the new commit.
func (r *Repository) Commit(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", classifyCommitError("empty commit message", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := r.command(ctx, "commit", "-F", "-")
	cmd.Stdin = strings.NewReader(message)

	if _, err := r.executor.ExecuteWithOutput(ctx, cmd); err != nil {
		output := ""
		var gitErr *errors.GitError
		if errors.As(err, &gitErr) {
			output = gitErr.Output
		}
		r.logger.Warning("git commit failed: %v", err)
		if errors.Is(err, errors.ErrGitNotInstalled) {
			return "", err
		}
		return "", classifyCommitError(output, err)
	}

	hash, err := r.HeadHash(ctx)
	if err != nil {
		// The commit exists; a missing hash only degrades the success line.
		r.logger.Warning("Commit created but HEAD could not be read: %v", err)
		return "", nil
	}
	return hash, nil
}

// HeadHash returns the first 8 characters of HEAD's commit hash.
func (r *Repository) HeadHash(ctx context.Context) (string, error) {
	if repo, err := r.open(); err == nil {
		if head, err := repo.Head(); err == nil {
			return shortHash(head.Hash().String()), nil
		}
	}

	out, err := r.runGitCommandWithOutput(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return shortHash(strings.TrimSpace(out)), nil
}

func shortHash(h string) string {
	if len(h) > shortHashLen {
		return h[:shortHashLen]
	}
	return h
}

func (r *Repository) command(ctx context.Context, args ...string) *exec.Cmd {
	baseArgs := []string{"-C", r.path}
	cmd := exec.CommandContext(ctx, "git", append(baseArgs, args...)...)
	cmd.Dir = r.path
	return cmd
}

// runGitCommandWithOutput executes a git command bounded by the repository
// timeout and returns its output.
func (r *Repository) runGitCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.executor.ExecuteWithOutput(ctx, r.command(ctx, args...))
}
