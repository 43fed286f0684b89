package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/bashhack/commitbuddy/internal/ui"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface used throughout the application.
// It separates internal (debug) logs from messages meant for the operator.
type Logger interface {
	// Private logging methods (written to the log file, and to stdout in verbose mode)

	// Info logs an informational message for debugging purposes.
	//
	// The format string follows fmt.Printf style formatting.
	Info(format string, args ...interface{})

	// Warning logs a warning message for debugging purposes.
	// These messages indicate potential issues that are not critical failures.
	//
	// The format string follows fmt.Printf style formatting.
	Warning(format string, args ...interface{})

	// Error logs an error message. Errors are always shown on stderr.
	//
	// The format string follows fmt.Printf style formatting.
	Error(format string, args ...interface{})

	// User-facing logging methods (written to stdout and the log file)

	// InfoToUser logs an informational message intended for users.
	InfoToUser(format string, args ...interface{})

	// WarningToUser logs a warning message intended for users.
	WarningToUser(format string, args ...interface{})

	// Success logs a success message to the user.
	Success(format string, args ...interface{})

	// StatusMessage prints a plain status line to the user. It is not logged.
	StatusMessage(format string, args ...interface{})

	// Close flushes the log file and releases it.
	Close() error
}

// DefaultLogger implements Logger on top of a zap file core and styled
// stdout/stderr writers.
type DefaultLogger struct {
	mu      sync.Mutex
	zl      *zap.Logger
	enabled bool
	logFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	styles  ui.Styles
	session string
	file    *os.File
}

// New creates a new Logger writing user messages to the process stdout/stderr.
func New(enabled bool, logFile string, verbose bool) Logger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	session := uuid.NewString()
	l := &DefaultLogger{
		zl:      zap.NewNop(),
		enabled: enabled,
		logFile: logFile,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
		session: session,
	}

	if !enabled {
		return l
	}

	logDir := filepath.Dir(logFile)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			_, _ = fmt.Fprintf(stderr, "⚠️ Failed to create log directory: %v\n", err)
		}
	}

	var sink zapcore.WriteSyncer
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		l.file = f
		sink = zapcore.AddSync(f)
		_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)
	} else {
		sink = zapcore.Lock(zapcore.AddSync(stderr))
		_, _ = fmt.Fprintf(stderr, "⚠️ Failed to open log file: %v, using stderr instead\n", err)
	}

	l.zl = zap.New(newFileCore(sink)).With(zap.String("session", session))
	l.zl.Info("commitbuddy debug logging started")

	return l
}

func newFileCore(sink zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, zapcore.InfoLevel)
}

// SetStyles replaces the styles used for user-facing lines.
func (l *DefaultLogger) SetStyles(s ui.Styles) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.styles = s
}

// Session returns the identifier attached to every file log entry of this run.
func (l *DefaultLogger) Session() string {
	return l.session
}

// Info logs an informational message
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zl.Info(msg)

	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "%s\n", l.styles.Muted("🔍 "+msg))
	}
}

// InfoToUser logs an informational message to both file and stdout
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zl.Info(msg)

	_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", l.styles.Info(msg))
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zl.Info(msg)

	_, _ = fmt.Fprintf(l.stdout, "✅ %s\n", l.styles.Success(msg))
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zl.Warn(msg)

	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", l.styles.Warning(msg))
	}
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zl.Warn(msg)

	_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", l.styles.Warning(msg))
}

// Error logs an error message
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zl.Error(msg)

	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", l.styles.Error(msg))
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(l.stdout, msg)
}

// Close flushes pending entries and closes the log file.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	// zap reports sync errors for some sinks that cannot be fsynced; the
	// file close result is what matters here.
	_ = l.zl.Sync()
	err := l.file.Close()
	l.file = nil
	return err
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
