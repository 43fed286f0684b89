package errors

import (
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotGitRepository indicates the target path is not a git repository
	ErrNotGitRepository = cerr.New("not a git repository")

	// ErrGitNotInstalled indicates the git executable could not be found in PATH
	ErrGitNotInstalled = cerr.New("git is not installed or not available in PATH")

	// ErrGitOperationFailed indicates a git command returned an error
	ErrGitOperationFailed = cerr.New("git operation failed")

	// ErrNothingStaged indicates there are no staged changes to commit
	ErrNothingStaged = cerr.New("no staged changes")

	// ErrCommitRejected indicates git refused to create the commit
	ErrCommitRejected = cerr.New("commit rejected")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = cerr.New("invalid configuration")

	// ErrInvalidCredential indicates the API credential is missing or malformed
	ErrInvalidCredential = cerr.New("invalid API credential")

	// ErrMessageSourceUnavailable indicates the LLM endpoint could not be reached
	ErrMessageSourceUnavailable = cerr.New("message source unavailable")

	// ErrAuthentication indicates the LLM endpoint rejected the credential
	ErrAuthentication = cerr.New("authentication failed")

	// ErrRateLimited indicates the LLM endpoint throttled the request
	ErrRateLimited = cerr.New("rate limit exceeded")

	// ErrServerError indicates the LLM endpoint failed with a 5xx status
	ErrServerError = cerr.New("API server error")

	// ErrAPIRequest indicates any other non-successful API answer
	ErrAPIRequest = cerr.New("API request failed")

	// ErrMalformedResponse indicates the API answered with something unusable
	ErrMalformedResponse = cerr.New("malformed API response")

	// ErrAlreadyRunning indicates another session holds the repository lock
	ErrAlreadyRunning = cerr.New("another commitbuddy session is running for this repository")

	// ErrLockAcquisitionFailure indicates the session lock could not be taken
	ErrLockAcquisitionFailure = cerr.New("failed to acquire session lock")
)

// New creates a new error with the given message.
func New(message string) error {
	return cerr.New(message)
}

// Errorf creates a new formatted error.
func Errorf(format string, args ...interface{}) error {
	return cerr.Newf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return cerr.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return cerr.Wrapf(err, format, args...)
}

// WithHint attaches a user-facing hint to err. Hints are printed by the CLI
// below the error message.
func WithHint(err error, hint string) error {
	return cerr.WithHint(err, hint)
}

// Hints returns every hint attached anywhere in err's chain.
func Hints(err error) []string {
	if err == nil {
		return nil
	}
	return cerr.GetAllHints(err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return cerr.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return cerr.As(err, target)
}

// GitError represents an error that occurred during a Git operation.
// It captures the command details, underlying error, and command output.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface with a detailed, user-friendly error message.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, strings.TrimSpace(e.Output))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, err error, output string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Output:    output,
	}
}

// CommitReason classifies why git refused a commit.
type CommitReason string

const (
	CommitReasonNothingToCommit CommitReason = "nothing-to-commit"
	CommitReasonIdentity        CommitReason = "identity"
	CommitReasonLocked          CommitReason = "locked"
	CommitReasonPathspec        CommitReason = "pathspec"
	CommitReasonHook            CommitReason = "hook"
	CommitReasonEmptyMessage    CommitReason = "empty-message"
	CommitReasonUnknown         CommitReason = "unknown"
)

// CommitError is returned when `git commit` fails. Reason is derived from
// git's stderr so the CLI can print targeted guidance.
type CommitError struct {
	Reason CommitReason
	Output string
	Err    error
}

// Error implements the error interface.
func (e *CommitError) Error() string {
	msg := "commit failed"
	switch e.Reason {
	case CommitReasonNothingToCommit:
		msg = "commit failed: no staged changes to commit"
	case CommitReasonIdentity:
		msg = "commit failed: git user identity is not configured"
	case CommitReasonLocked:
		msg = "commit failed: repository is locked by another git process"
	case CommitReasonPathspec:
		msg = "commit failed: invalid pathspec"
	case CommitReasonHook:
		msg = "commit failed: rejected by a git hook"
	case CommitReasonEmptyMessage:
		msg = "commit failed: commit message is empty"
	}
	if out := strings.TrimSpace(e.Output); out != "" && e.Reason == CommitReasonUnknown {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CommitError) Unwrap() error {
	return e.Err
}

// NewCommitError creates a new CommitError wrapping ErrCommitRejected.
func NewCommitError(reason CommitReason, output string, err error) *CommitError {
	if err == nil {
		err = ErrCommitRejected
	} else if !Is(err, ErrCommitRejected) {
		err = cerr.Mark(err, ErrCommitRejected)
	}
	return &CommitError{
		Reason: reason,
		Output: output,
		Err:    err,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}

// APIError represents a failed exchange with the LLM endpoint. StatusCode is
// zero when the request never produced an HTTP answer.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("API error")
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError with the given parameters.
func NewAPIError(statusCode int, message string, err error) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// LockError describes a failure to take or release the per-repository session lock.
type LockError struct {
	Path string
	PID  int
	Err  error
}

// Error implements the error interface.
func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("session lock %s (held by PID %d): %v", e.Path, e.PID, e.Err)
	}
	return fmt.Sprintf("session lock %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(path string, pid int, err error) *LockError {
	return &LockError{
		Path: path,
		PID:  pid,
		Err:  err,
	}
}
