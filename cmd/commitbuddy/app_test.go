package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bashhack/commitbuddy/internal/config"
	"github.com/bashhack/commitbuddy/internal/diagnostics"
	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCommitter records whether the commit cycle ran
type MockCommitter struct {
	RunCalled bool
	RunErr    error
}

func (m *MockCommitter) Run(ctx context.Context) error {
	m.RunCalled = true
	return m.RunErr
}

// MockDiagnoser returns a canned report
type MockDiagnoser struct {
	Check  string
	Report *diagnostics.Report
}

func (m *MockDiagnoser) Run(ctx context.Context, check string) *diagnostics.Report {
	m.Check = check
	return m.Report
}

// MockLocker tracks lock calls
type MockLocker struct {
	AcquireCalled bool
	ReleaseCalled bool
	AcquireErr    error
}

func (m *MockLocker) Acquire() error {
	m.AcquireCalled = true
	return m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCalled = true
	return nil
}

type testApp struct {
	*App
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	committer *MockCommitter
	locker    *MockLocker
}

// isolateEnv keeps the developer's environment and config files out of tests
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	unsetEnv(t, config.ConfigFileEnv)
	unsetEnv(t, config.APIKeyEnv)
	for _, name := range []string{"MODEL", "ENDPOINT", "TIMEOUT_SECONDS", "MAX_DIFF_SIZE", "MAX_TOKENS",
		"TEMPERATURE", "DETAILED_COMMITS", "VERBOSE", "DEBUG", "REPO_PATH", "LOG_FILE"} {
		unsetEnv(t, "COMMITBUDDY_"+name)
	}
	return dir
}

// unsetEnv removes key for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func newTestApp(t *testing.T, isRepo bool) *testApp {
	t.Helper()
	dir := isolateEnv(t)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	committer := &MockCommitter{}
	locker := &MockLocker{}

	cfg := config.New()
	cfg.VersionInfo = config.VersionInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-02"}

	app := NewApp(AppOptions{
		Config:       cfg,
		Committer:    committer,
		Locker:       locker,
		Stdin:        strings.NewReader(""),
		Stdout:       stdout,
		Stderr:       stderr,
		DotEnvPath:   filepath.Join(dir, "missing.env"),
		Exit:         func(int) {},
		ExecLookPath: func(string) (string, error) { return "/usr/bin/git", nil },
		IsRepository: func(string) (bool, error) { return isRepo, nil },
	})

	return &testApp{App: app, stdout: stdout, stderr: stderr, committer: committer, locker: locker}
}

func TestNewAppRequiresConfig(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected NewApp to panic without a config")
		}
	}()
	NewApp(AppOptions{})
}

func TestNewAppDefaults(t *testing.T) {
	app := NewApp(AppOptions{Config: config.New()})

	assert.Equal(t, os.Stdout, app.Stdout)
	assert.Equal(t, os.Stderr, app.Stderr)
	assert.Equal(t, os.Stdin, app.Stdin)
	assert.Equal(t, ".env", app.dotEnvPath)
	assert.NotNil(t, app.exit)
	assert.NotNil(t, app.execLookPath)
	assert.NotNil(t, app.isRepository)
}

func TestExecuteWithoutModePrintsHelp(t *testing.T) {
	app := newTestApp(t, true)

	code := app.Execute(context.Background(), nil)

	assert.Equal(t, 0, code)
	assert.Contains(t, app.stdout.String(), "Usage:")
	assert.Contains(t, app.stdout.String(), "--from-diff")
	assert.False(t, app.committer.RunCalled)
}

func TestExecuteVersion(t *testing.T) {
	app := newTestApp(t, true)

	code := app.Execute(context.Background(), []string{"--version"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "commitbuddy 1.2.3 (abc1234) built on 2026-01-02\n", app.stdout.String())
}

func TestExecuteFromDiff(t *testing.T) {
	app := newTestApp(t, true)

	code := app.Execute(context.Background(), []string{"--from-diff"})

	assert.Equal(t, 0, code)
	assert.True(t, app.committer.RunCalled)
	assert.True(t, app.locker.AcquireCalled)
	assert.True(t, app.locker.ReleaseCalled)
	assert.Empty(t, app.stderr.String())
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		isRepo   bool
		lookErr  bool
		lockErr  error
		runErr   error
		wantErr  string
		wantHint string
	}{
		{
			name:     "not a repository",
			args:     []string{"--from-diff"},
			wantErr:  "not a git repository",
			wantHint: "--repo",
		},
		{
			name:     "git missing",
			args:     []string{"--from-diff"},
			isRepo:   true,
			lookErr:  true,
			wantErr:  "git is not installed",
			wantHint: "install git",
		},
		{
			name:     "commit rejected",
			args:     []string{"--from-diff"},
			isRepo:   true,
			runErr:   errors.WithHint(errors.NewCommitError(errors.CommitReasonIdentity, "", nil), "git config --global user.email"),
			wantErr:  "git user identity is not configured",
			wantHint: "user.email",
		},
		{
			name:     "session already running",
			args:     []string{"--from-diff"},
			isRepo:   true,
			lockErr:  errors.NewLockError("/tmp/commitbuddy-x.lock", 4242, errors.ErrAlreadyRunning),
			wantErr:  "another commitbuddy session is running",
			wantHint: "finish the other commitbuddy session",
		},
		{
			name:    "conflicting modes",
			args:    []string{"--from-diff", "--debug-api"},
			isRepo:  true,
			wantErr: "cannot be combined",
		},
		{
			name:    "invalid format",
			args:    []string{"--debug-api", "--format", "xml"},
			isRepo:  true,
			wantErr: "invalid format",
		},
		{
			name:    "unknown flag",
			args:    []string{"--nope"},
			isRepo:  true,
			wantErr: "unknown flag",
		},
		{
			name:    "positional argument",
			args:    []string{"--from-diff", "extra"},
			isRepo:  true,
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.isRepo)
			app.committer.RunErr = tt.runErr
			app.locker.AcquireErr = tt.lockErr
			if tt.lookErr {
				app.execLookPath = func(string) (string, error) { return "", errors.New("not found") }
			}

			code := app.Execute(context.Background(), tt.args)

			assert.Equal(t, 1, code)
			assert.Contains(t, app.stderr.String(), "❌ Error: ")
			assert.Contains(t, app.stderr.String(), tt.wantErr)
			if tt.wantHint != "" {
				assert.Contains(t, app.stderr.String(), "💡")
				assert.Contains(t, app.stderr.String(), tt.wantHint)
			}
		})
	}
}

func TestExecuteCancelledIsNotAFailure(t *testing.T) {
	app := newTestApp(t, true)
	app.committer.RunErr = errors.Wrap(context.Canceled, "validate repository")

	code := app.Execute(context.Background(), []string{"--from-diff"})

	assert.Equal(t, 0, code)
	assert.Contains(t, app.stdout.String(), "Operation cancelled")
}

func TestExecuteDebugAPI(t *testing.T) {
	app := newTestApp(t, false)
	diag := &MockDiagnoser{Report: &diagnostics.Report{
		Timestamp: "2026-01-02T00:00:00Z",
		Checks:    []diagnostics.CheckResult{{Name: diagnostics.CheckKey, Message: "GROQ_API_KEY is not configured"}},
	}}
	app.Diagnostics = diag

	code := app.Execute(context.Background(), []string{"--debug-api", "--check", "KEY", "--format", "json"})

	assert.Equal(t, 0, code, "diagnostics always exit 0")
	assert.Equal(t, "key", diag.Check)
	assert.Contains(t, app.stdout.String(), `"name": "key"`)
	assert.False(t, app.committer.RunCalled, "diagnostics must not touch the repository")
	assert.False(t, app.locker.AcquireCalled)
}

func TestConfigurationPrecedence(t *testing.T) {
	app := newTestApp(t, true)
	dir := t.TempDir()

	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("model: from-file\nendpoint: https://file.example/v1/chat/completions\nmax_tokens: 42\n"), 0644))
	t.Setenv(config.ConfigFileEnv, cfgFile)
	t.Setenv("COMMITBUDDY_ENDPOINT", "https://env.example/v1/chat/completions")

	dotEnv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotEnv, []byte("GROQ_API_KEY=gsk_from_dotenv_123\n"), 0644))
	app.dotEnvPath = dotEnv
	t.Cleanup(func() { _ = os.Unsetenv(config.APIKeyEnv) })

	code := app.Execute(context.Background(), []string{"--from-diff", "--model", "from-flag"})
	require.Equal(t, 0, code, app.stderr.String())

	assert.Equal(t, "from-flag", app.Config.Model)
	assert.Equal(t, "https://env.example/v1/chat/completions", app.Config.Endpoint)
	assert.Equal(t, 42, app.Config.MaxTokens)
	assert.Equal(t, "gsk_from_dotenv_123", app.Config.APIKey)
	assert.Equal(t, cfgFile, app.Config.ConfigFile)
}

func TestNewCommitterWiring(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		yes    bool
		warn   bool
	}{
		{"no key, interactive", "", false, false},
		{"valid key, assume yes", "gsk_valid_key_1234", true, false},
		{"malformed key", "not-a-key", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, true)
			app.Config.APIKey = tt.apiKey
			app.Config.AssumeYes = tt.yes
			require.NoError(t, app.Initialize())

			committer := app.newCommitter()
			require.NotNil(t, committer)

			if tt.warn {
				assert.Contains(t, app.stdout.String(), "using locally generated messages")
			} else {
				assert.NotContains(t, app.stdout.String(), "using locally generated messages")
			}
		})
	}
}
