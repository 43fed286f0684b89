package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bashhack/commitbuddy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionRepo creates a repository with one commit and a staged greeting.go
func sessionRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0644))
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "docs: add readme")

	greeting := "package demo\n\nfunc Greet(name string) string {\n\treturn \"hello \" + name\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.go"), []byte(greeting), 0644))
	runGit(t, dir, "add", "greeting.go")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func newSessionApp(t *testing.T, stdin string) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := isolateEnv(t)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewApp(AppOptions{
		Config:     config.New(),
		Stdin:      strings.NewReader(stdin),
		Stdout:     stdout,
		Stderr:     stderr,
		DotEnvPath: filepath.Join(dir, "missing.env"),
		Exit:       func(int) {},
	})
	return app, stdout, stderr
}

func TestSessionCommitsFallbackMessage(t *testing.T) {
	repo := sessionRepo(t)
	app, stdout, stderr := newSessionApp(t, "")

	code := app.Execute(context.Background(), []string{"--from-diff", "--yes", "--no-color", "--repo", repo})

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "feat: update greeting.go", runGit(t, repo, "log", "-1", "--pretty=%B"))
	assert.Contains(t, stdout.String(), "1 file(s) staged for commit")
	assert.Empty(t, runGit(t, repo, "diff", "--cached", "--name-only"))
}

func TestSessionCommitsModelMessage(t *testing.T) {
	repo := sessionRepo(t)

	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) > 0 {
			prompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Add greeting helper\n\n- greeting.go: new Greet function\n\nExplanation: the diff adds a helper."}}]}`))
	}))
	defer server.Close()

	app, stdout, stderr := newSessionApp(t, "y\n")
	t.Setenv(config.APIKeyEnv, "gsk_session_test_key")

	code := app.Execute(context.Background(), []string{
		"--from-diff", "--no-color", "--repo", repo,
		"--endpoint", server.URL + "/v1/chat/completions",
	})

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, prompt, "+func Greet(name string) string {")
	assert.Equal(t, "feat: Add greeting helper\n\n- greeting.go: new Greet function", runGit(t, repo, "log", "-1", "--pretty=%B"))
	assert.Contains(t, stdout.String(), "feat: Add greeting helper")
}

func TestSessionDryRunLeavesIndexStaged(t *testing.T) {
	repo := sessionRepo(t)
	app, stdout, stderr := newSessionApp(t, "")

	code := app.Execute(context.Background(), []string{"--from-diff", "--dry-run", "--no-color", "--repo", repo})

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "feat: update greeting.go")
	assert.Equal(t, "docs: add readme", runGit(t, repo, "log", "-1", "--pretty=%s"))
	assert.Equal(t, "greeting.go", runGit(t, repo, "diff", "--cached", "--name-only"))
}

func TestSessionCancelledKeepsIndex(t *testing.T) {
	repo := sessionRepo(t)
	app, stdout, stderr := newSessionApp(t, "n\n")

	code := app.Execute(context.Background(), []string{"--from-diff", "--no-color", "--repo", repo})

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Commit cancelled")
	assert.Equal(t, "docs: add readme", runGit(t, repo, "log", "-1", "--pretty=%s"))
}
