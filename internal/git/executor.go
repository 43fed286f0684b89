package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/bashhack/commitbuddy/internal/errors"
)

// CommandExecutor defines an interface for executing commands
type CommandExecutor interface {
	// Execute runs a command and reports only whether it succeeded
	Execute(ctx context.Context, cmd *exec.Cmd) error

	// ExecuteWithOutput runs a command and returns its stdout
	ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default implementation of CommandExecutor
// that delegates to the os/exec package
type ExecExecutor struct{}

// Execute implements CommandExecutor.Execute
func (e *ExecExecutor) Execute(ctx context.Context, cmd *exec.Cmd) error {
	_, err := e.ExecuteWithOutput(ctx, cmd)
	return err
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput.
// On failure the returned *errors.GitError carries stderr, or stdout when
// stderr is empty (git prints some refusals, like "nothing to commit", there).
func (e *ExecExecutor) ExecuteWithOutput(ctx context.Context, cmd *exec.Cmd) (string, error) {
	operation, args := describe(cmd)

	if err := ctx.Err(); err != nil {
		return "", errors.NewGitError(operation, args, errors.Wrap(errors.ErrGitOperationFailed, err.Error()), "")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", errors.NewGitError(operation, args, errors.Wrap(errors.ErrGitNotInstalled, err.Error()), "")
		}

		cause := errors.Wrap(errors.ErrGitOperationFailed, err.Error())
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = errors.Wrapf(errors.ErrGitOperationFailed, "%v (%v)", err, ctxErr)
		}

		output := stderr.String()
		if strings.TrimSpace(output) == "" {
			output = stdout.String()
		}
		return "", errors.NewGitError(operation, args, cause, output)
	}

	return stdout.String(), nil
}

// describe splits a command into the git subcommand and its arguments,
// skipping the binary name and any leading "-C <dir>".
func describe(cmd *exec.Cmd) (string, []string) {
	if len(cmd.Args) <= 1 {
		if len(cmd.Args) == 1 {
			return cmd.Args[0], nil
		}
		return "", nil
	}

	rest := cmd.Args[1:]
	if len(rest) >= 2 && rest[0] == "-C" {
		rest = rest[2:]
	}
	if len(rest) == 0 {
		return cmd.Args[0], nil
	}
	return rest[0], rest[1:]
}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}
