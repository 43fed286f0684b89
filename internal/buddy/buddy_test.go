package buddy

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bashhack/commitbuddy/internal/confirm"
	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/git"
	"github.com/bashhack/commitbuddy/internal/logger"
	"github.com/bashhack/commitbuddy/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	validateErr error
	changes     git.ChangeSet
	stagedErr   error
	unstaged    []string
	commitHash  string
	commitErr   error

	committed []string
}

func (f *fakeRepo) Validate(ctx context.Context) error { return f.validateErr }

func (f *fakeRepo) StagedChanges(ctx context.Context) (git.ChangeSet, error) {
	return f.changes, f.stagedErr
}

func (f *fakeRepo) UnstagedFiles(ctx context.Context) ([]string, error) { return f.unstaged, nil }

func (f *fakeRepo) Commit(ctx context.Context, message string) (string, error) {
	f.committed = append(f.committed, message)
	return f.commitHash, f.commitErr
}

type fakeSource struct {
	answer string
	err    error
	calls  int
	diffs  []string
}

func (f *fakeSource) GenerateCommitMessage(ctx context.Context, diff string) (string, error) {
	f.calls++
	f.diffs = append(f.diffs, diff)
	return f.answer, f.err
}

type fakeConfirmer struct {
	outcome confirm.Outcome
	replace string
	seen    []string
}

func (f *fakeConfirmer) Confirm(ctx context.Context, message string) confirm.Result {
	f.seen = append(f.seen, message)
	if f.replace != "" {
		message = f.replace
	}
	return confirm.Result{Outcome: f.outcome, Message: message}
}

type harness struct {
	repo      *fakeRepo
	source    *fakeSource
	confirmer *fakeConfirmer
	stdout    *bytes.Buffer
	out       *bytes.Buffer
}

func bigDiff() string {
	return "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n@@ -1 +1,2 @@\n+func Login() {}\n"
}

func stagedRepo(files ...string) *fakeRepo {
	return &fakeRepo{
		changes:    git.ChangeSet{Diff: bigDiff(), Files: files, Additions: 1},
		commitHash: "abc12345",
	}
}

func (h *harness) run(t *testing.T, opts Options, withSource bool) error {
	t.Helper()
	log := logger.NewWithOutput(false, "", false, h.stdout, h.stdout)

	var source MessageSource
	if withSource {
		source = h.source
	}
	b := NewBuddyWithDeps(opts, log, h.repo, source, h.confirmer, h.out, ui.Plain())
	return b.Run(context.Background())
}

func newHarness(repo *fakeRepo) *harness {
	return &harness{
		repo:      repo,
		source:    &fakeSource{},
		confirmer: &fakeConfirmer{outcome: confirm.Committed},
		stdout:    &bytes.Buffer{},
		out:       &bytes.Buffer{},
	}
}

func TestRunCommitsModelMessage(t *testing.T) {
	h := newHarness(stagedRepo("main.go"))
	h.source.answer = "feat: add login function"

	require.NoError(t, h.run(t, Options{}, true))

	assert.Equal(t, 1, h.source.calls)
	assert.Equal(t, []string{"feat: add login function"}, h.confirmer.seen)
	assert.Equal(t, []string{"feat: add login function"}, h.repo.committed)
	assert.Contains(t, h.stdout.String(), "✅ Commit abc12345 created: feat: add login function")
}

func TestRunCommitWithoutHash(t *testing.T) {
	repo := stagedRepo("main.go")
	repo.commitHash = ""
	h := newHarness(repo)
	h.source.answer = "feat: add login function"

	require.NoError(t, h.run(t, Options{}, true))

	assert.Equal(t, []string{"feat: add login function"}, h.repo.committed)
	assert.Contains(t, h.stdout.String(), "✅ Commit created: feat: add login function")
	assert.NotContains(t, h.stdout.String(), "Commit  created")
}

func TestRunNormalizesModelAnswer(t *testing.T) {
	h := newHarness(stagedRepo("main.go"))
	h.source.answer = "Analysis: the diff adds a function\n\"add login function\""

	require.NoError(t, h.run(t, Options{}, true))

	assert.Equal(t, []string{"feat: add login function"}, h.repo.committed)
}

func TestRunDetailedKeepsBody(t *testing.T) {
	h := newHarness(stagedRepo("main.go", "README.md"))
	h.source.answer = "feat: add login\n\n- main.go: add Login\n- README.md: document login"

	require.NoError(t, h.run(t, Options{Detailed: true}, true))

	want := "feat: add login\n\n- main.go: add Login\n- README.md: document login"
	assert.Equal(t, []string{want}, h.repo.committed)
	assert.Contains(t, h.stdout.String(), "created: feat: add login\n")
}

func TestRunFallsBackOnEverySourceFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantOutput string
	}{
		{"authentication", errors.NewAPIError(401, "Invalid API Key", errors.ErrAuthentication), "rejected the credential"},
		{"rate limited", errors.NewAPIError(429, "", errors.ErrRateLimited), "rate limit exceeded"},
		{"server error", errors.NewAPIError(500, "", errors.ErrServerError), ""},
		{"unavailable", errors.NewAPIError(0, "dial tcp", errors.ErrMessageSourceUnavailable), ""},
		{"malformed", errors.NewAPIError(200, "no choices", errors.ErrMalformedResponse), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(stagedRepo("main.py"))
			h.source.err = tt.err

			require.NoError(t, h.run(t, Options{}, true))

			assert.Equal(t, []string{"feat: update main.py"}, h.repo.committed)
			if tt.wantOutput != "" {
				assert.Contains(t, h.stdout.String(), tt.wantOutput)
			}
		})
	}
}

func TestRunWithoutSourceUsesFallback(t *testing.T) {
	h := newHarness(stagedRepo("README.md"))

	require.NoError(t, h.run(t, Options{}, false))

	assert.Equal(t, 0, h.source.calls)
	assert.Equal(t, []string{"docs: update README.md"}, h.repo.committed)
}

func TestRunSkipsModelForSmallDiff(t *testing.T) {
	repo := stagedRepo("config.yaml")
	repo.changes.Diff = "+a\n+b\n+c\n"
	h := newHarness(repo)
	h.source.answer = "feat: should not be used"

	require.NoError(t, h.run(t, Options{}, true))

	assert.Equal(t, 0, h.source.calls)
	assert.Equal(t, []string{"chore: update config.yaml"}, h.repo.committed)
}

func TestRunNothingStaged(t *testing.T) {
	t.Run("unstaged files", func(t *testing.T) {
		h := newHarness(&fakeRepo{stagedErr: errors.ErrNothingStaged, unstaged: []string{"a.go", "b.go"}})

		require.NoError(t, h.run(t, Options{}, true))

		assert.Contains(t, h.stdout.String(), "2 modified file(s) not staged for commit")
		assert.Contains(t, h.stdout.String(), "git add")
		assert.Empty(t, h.confirmer.seen)
		assert.Empty(t, h.repo.committed)
	})

	t.Run("clean", func(t *testing.T) {
		h := newHarness(&fakeRepo{stagedErr: errors.ErrNothingStaged})

		require.NoError(t, h.run(t, Options{}, true))

		assert.Contains(t, h.stdout.String(), "working directory is clean")
		assert.Empty(t, h.repo.committed)
	})
}

func TestRunCancelled(t *testing.T) {
	h := newHarness(stagedRepo("main.go"))
	h.confirmer.outcome = confirm.Cancelled

	require.NoError(t, h.run(t, Options{}, false))

	assert.Len(t, h.confirmer.seen, 1)
	assert.Empty(t, h.repo.committed)
	assert.Contains(t, h.stdout.String(), "Commit cancelled")
}

func TestRunCommitsEditedMessage(t *testing.T) {
	h := newHarness(stagedRepo("main.go"))
	h.confirmer.replace = "fix: correct typo"

	require.NoError(t, h.run(t, Options{}, false))

	assert.Equal(t, []string{"fix: correct typo"}, h.repo.committed)
}

func TestRunDryRun(t *testing.T) {
	h := newHarness(stagedRepo("main.go"))

	require.NoError(t, h.run(t, Options{DryRun: true}, false))

	assert.Empty(t, h.confirmer.seen)
	assert.Empty(t, h.repo.committed)
	assert.Contains(t, h.out.String(), "feat: update main.go")
	assert.Contains(t, h.stdout.String(), "Dry run")
}

func TestRunHardFailures(t *testing.T) {
	t.Run("not a repository", func(t *testing.T) {
		h := newHarness(&fakeRepo{validateErr: errors.ErrNotGitRepository})
		err := h.run(t, Options{}, true)
		if !errors.Is(err, errors.ErrNotGitRepository) {
			t.Errorf("Expected ErrNotGitRepository, got %v", err)
		}
	})

	t.Run("diff failure", func(t *testing.T) {
		gitErr := errors.NewGitError("diff", []string{"--cached"}, errors.ErrGitOperationFailed, "fatal")
		h := newHarness(&fakeRepo{stagedErr: gitErr})
		err := h.run(t, Options{}, true)
		if !errors.Is(err, errors.ErrGitOperationFailed) {
			t.Errorf("Expected ErrGitOperationFailed, got %v", err)
		}
	})

	t.Run("commit rejected", func(t *testing.T) {
		repo := stagedRepo("main.go")
		repo.commitErr = errors.NewCommitError(errors.CommitReasonIdentity, "Please tell me who you are", nil)
		h := newHarness(repo)

		err := h.run(t, Options{}, false)
		if !errors.Is(err, errors.ErrCommitRejected) {
			t.Errorf("Expected ErrCommitRejected, got %v", err)
		}
		assert.NotContains(t, h.stdout.String(), "✅")
	})
}

func TestSummaryListsAtMostFiveFiles(t *testing.T) {
	repo := stagedRepo("a.go", "b.go", "c.go", "d.go", "e.go", "f.go", "g.go")
	repo.changes.Additions = 12
	repo.changes.Deletions = 3
	h := newHarness(repo)

	require.NoError(t, h.run(t, Options{DryRun: true}, false))

	out := h.out.String()
	for _, f := range []string{"a.go", "e.go"} {
		assert.Contains(t, out, "• "+f)
	}
	assert.NotContains(t, out, "• f.go")
	assert.Contains(t, out, "... and 2 more")
	assert.Contains(t, out, "(+12 -3)")
}

func TestSummaryOmitsZeroStats(t *testing.T) {
	repo := stagedRepo("logo.png")
	repo.changes.Additions = 0
	h := newHarness(repo)

	require.NoError(t, h.run(t, Options{DryRun: true}, false))

	assert.False(t, strings.Contains(h.out.String(), "(+"), "unexpected stats line in %q", h.out.String())
}
