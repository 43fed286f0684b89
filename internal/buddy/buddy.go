package buddy

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bashhack/commitbuddy/internal/commitmsg"
	"github.com/bashhack/commitbuddy/internal/confirm"
	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/git"
	"github.com/bashhack/commitbuddy/internal/logger"
	"github.com/bashhack/commitbuddy/internal/ui"
)

const (
	// DefaultMinDiffLines is the diff size at or below which the model is
	// not consulted.
	DefaultMinDiffLines = 3

	// summaryFileLimit is how many staged paths the change summary lists.
	summaryFileLimit = 5
)

// DiffSource provides the staged changes and records the commit.
// *git.Repository is the production implementation.
type DiffSource interface {
	Validate(ctx context.Context) error
	StagedChanges(ctx context.Context) (git.ChangeSet, error)
	UnstagedFiles(ctx context.Context) ([]string, error)
	Commit(ctx context.Context, message string) (string, error)
}

// MessageSource proposes a commit message for a diff. *llm.Client is the
// production implementation.
type MessageSource interface {
	GenerateCommitMessage(ctx context.Context, diff string) (string, error)
}

// Options controls a single run.
type Options struct {
	// Detailed keeps the file-by-file body the model writes under the
	// summary line.
	Detailed bool

	// DryRun prints the proposed message and stops before confirmation.
	DryRun bool

	// MinDiffLines is the diff size, in lines, at or below which the
	// fallback message is used without asking the model. Zero selects
	// DefaultMinDiffLines.
	MinDiffLines int
}

// Buddy turns staged changes into a confirmed commit.
type Buddy struct {
	options   Options
	logger    logger.Logger
	repo      DiffSource
	source    MessageSource
	confirmer confirm.Confirmer

	out    io.Writer
	styles ui.Styles
}

// NewBuddy creates a Buddy writing its summaries to stdout. source may be nil
// when no credential is configured; every message then comes from the
// fallback.
func NewBuddy(options Options, log logger.Logger, repo DiffSource, source MessageSource, confirmer confirm.Confirmer) *Buddy {
	return NewBuddyWithDeps(options, log, repo, source, confirmer, os.Stdout, ui.Plain())
}

// NewBuddyWithDeps creates a Buddy with explicit output and styles.
func NewBuddyWithDeps(
	options Options,
	log logger.Logger,
	repo DiffSource,
	source MessageSource,
	confirmer confirm.Confirmer,
	out io.Writer,
	styles ui.Styles,
) *Buddy {
	if options.MinDiffLines <= 0 {
		options.MinDiffLines = DefaultMinDiffLines
	}
	return &Buddy{
		options:   options,
		logger:    log,
		repo:      repo,
		source:    source,
		confirmer: confirmer,
		out:       out,
		styles:    styles,
	}
}

// Run executes one generate-confirm-commit cycle. Nothing staged and an
// operator cancellation are not errors. Message Source failures never abort
// the run: the message falls back to one derived from the staged paths.
func (b *Buddy) Run(ctx context.Context) error {
	b.logger.Info("Starting commit message generation")

	if err := b.repo.Validate(ctx); err != nil {
		return err
	}

	changes, err := b.repo.StagedChanges(ctx)
	if errors.Is(err, errors.ErrNothingStaged) {
		b.reportNothingStaged(ctx)
		return nil
	}
	if err != nil {
		return err
	}

	b.logger.InfoToUser("%d file(s) staged for commit", len(changes.Files))
	b.showSummary(changes)

	message := b.propose(ctx, changes)

	if b.options.DryRun {
		b.printf("%s\n", b.styles.Title("📝 Proposed commit message:"))
		for _, line := range strings.Split(message.String(), "\n") {
			b.printf("  %s\n", b.styles.Message(line))
		}
		b.printf("\n")
		b.logger.InfoToUser("Dry run, no commit created")
		return nil
	}

	result := b.confirmer.Confirm(ctx, message.String())
	b.logger.Info("Confirmation outcome %s after %d transition(s)", result.Outcome, len(result.Transitions))
	if result.Outcome != confirm.Committed {
		b.logger.InfoToUser("Commit cancelled")
		return nil
	}

	b.logger.InfoToUser("Creating commit...")
	hash, err := b.repo.Commit(ctx, result.Message)
	if err != nil {
		return err
	}

	if hash == "" {
		b.logger.Success("Commit created: %s", firstLine(result.Message))
	} else {
		b.logger.Success("Commit %s created: %s", hash, firstLine(result.Message))
	}
	return nil
}

// propose asks the Message Source when it is worth it and normalizes
// whatever comes back.
func (b *Buddy) propose(ctx context.Context, changes git.ChangeSet) commitmsg.CommitMessage {
	candidate := b.requestCandidate(ctx, changes)

	message := commitmsg.Compose(candidate, changes.Files, b.options.Detailed)
	if candidate == nil {
		b.logger.Info("Using fallback message: %s", message.Summary)
	} else {
		b.logger.Info("Normalized model answer to: %s", message.Summary)
	}
	return message
}

func (b *Buddy) requestCandidate(ctx context.Context, changes git.ChangeSet) *string {
	if b.source == nil {
		b.logger.Info("No message source configured")
		return nil
	}

	if lines := changes.Lines(); lines <= b.options.MinDiffLines {
		b.logger.Info("Diff has %d line(s), not worth a model request", lines)
		return nil
	}

	b.logger.StatusMessage("%s", b.styles.Muted("🤖 Generating commit message..."))

	text, err := b.source.GenerateCommitMessage(ctx, changes.Diff)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrAuthentication):
			b.logger.InfoToUser("The API rejected the credential, using a locally generated message")
		case errors.Is(err, errors.ErrRateLimited):
			b.logger.WarningToUser("API rate limit exceeded, using a locally generated message")
		default:
			b.logger.Info("Message source failed, using fallback: %v", err)
		}
		return nil
	}
	return &text
}

func (b *Buddy) reportNothingStaged(ctx context.Context) {
	unstaged, err := b.repo.UnstagedFiles(ctx)
	if err != nil {
		b.logger.Warning("Failed to list unstaged files: %v", err)
	}

	if len(unstaged) > 0 {
		b.logger.WarningToUser("%d modified file(s) not staged for commit", len(unstaged))
		b.logger.InfoToUser("Use 'git add <file>' to stage specific changes or 'git add .' to stage everything")
		return
	}
	b.logger.InfoToUser("No changes to commit, working directory is clean")
}

func (b *Buddy) showSummary(changes git.ChangeSet) {
	b.printf("\n%s\n", b.styles.Title("📁 Staged files:"))

	for i, f := range changes.Files {
		if i == summaryFileLimit {
			b.printf("  ... and %d more\n", len(changes.Files)-summaryFileLimit)
			break
		}
		b.printf("  • %s\n", f)
	}

	var stats []string
	if changes.Additions > 0 {
		stats = append(stats, b.styles.Added(fmt.Sprintf("+%d", changes.Additions)))
	}
	if changes.Deletions > 0 {
		stats = append(stats, b.styles.Removed(fmt.Sprintf("-%d", changes.Deletions)))
	}
	if len(stats) > 0 {
		b.printf("  (%s)\n", strings.Join(stats, " "))
	}
	b.printf("\n")
}

func (b *Buddy) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(b.out, format, args...)
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
