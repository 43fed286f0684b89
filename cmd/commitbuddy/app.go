package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/bashhack/commitbuddy/internal/buddy"
	"github.com/bashhack/commitbuddy/internal/config"
	"github.com/bashhack/commitbuddy/internal/confirm"
	"github.com/bashhack/commitbuddy/internal/diagnostics"
	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/git"
	"github.com/bashhack/commitbuddy/internal/llm"
	"github.com/bashhack/commitbuddy/internal/lock"
	"github.com/bashhack/commitbuddy/internal/logger"
	"github.com/bashhack/commitbuddy/internal/ui"
	"github.com/spf13/cobra"
)

// Committer runs one generate-confirm-commit cycle
type Committer interface {
	Run(ctx context.Context) error
}

// Diagnoser runs the Message Source self-checks
type Diagnoser interface {
	Run(ctx context.Context, check string) *diagnostics.Report
}

// Locker guards the repository for the length of a session
type Locker interface {
	Acquire() error
	Release() error
}

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger      logger.Logger
	Committer   Committer
	Diagnostics Diagnoser
	Locker      Locker

	// I/O dependencies
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// DotEnvPath is the .env file loaded before the environment (default ".env")
	DotEnvPath string

	// System dependencies
	Exit         func(code int)
	ExecLookPath func(file string) (string, error)
	IsRepository func(string) (bool, error)
}

// App is the main commitbuddy application
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Committer   Committer
	Diagnostics Diagnoser
	Locker      Locker

	// I/O streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	styles     ui.Styles
	dotEnvPath string

	// System dependencies
	exit         func(code int)
	execLookPath func(file string) (string, error)
	isRepository func(string) (bool, error)
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo

	return NewApp(AppOptions{
		Config:       cfg,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Exit:         os.Exit,
		ExecLookPath: exec.LookPath,
		IsRepository: git.IsRepository,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Committer:    opts.Committer,
		Diagnostics:  opts.Diagnostics,
		Locker:       opts.Locker,
		Stdin:        opts.Stdin,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		dotEnvPath:   opts.DotEnvPath,
		exit:         opts.Exit,
		execLookPath: opts.ExecLookPath,
		isRepository: opts.IsRepository,
	}

	// Set defaults for nil dependencies
	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.dotEnvPath == "" {
		app.dotEnvPath = ".env"
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.isRepository == nil {
		app.isRepository = git.IsRepository
	}

	return app
}

// Execute loads configuration, parses args and runs the selected mode. It
// returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	if err := a.loadConfiguration(); err != nil {
		a.printError(err)
		return 1
	}

	cmd := a.Command()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(a.Stdout, "\nOperation cancelled")
			return 0
		}
		a.printError(err)
		return 1
	}
	return 0
}

// loadConfiguration applies the .env file, the YAML file and the environment,
// in that order. Flags are applied last by cobra.
func (a *App) loadConfiguration() error {
	if err := a.Config.LoadDotEnv(a.dotEnvPath); err != nil {
		return err
	}
	if err := a.Config.LoadFromFile(config.ConfigFilePath()); err != nil {
		return err
	}
	a.Config.LoadFromEnvironment()
	return nil
}

// Command builds the root cobra command bound to the App's config.
func (a *App) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commitbuddy",
		Short: "Conventional Commits messages for your staged changes",
		Long: `commitbuddy reads the staged changes of a git repository, asks an
OpenAI-compatible model (Groq by default) for a commit message, normalizes it
to Conventional Commits and commits once you confirm.

Without GROQ_API_KEY, or when the API fails, the message is derived from the
staged file names.`,
		Example: `  git add . && commitbuddy --from-diff
  commitbuddy --from-diff --dry-run
  commitbuddy --debug-api --format yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Run(cmd.Context(), cmd)
		},
	}

	cmd.SetIn(a.Stdin)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	a.Config.SetupFlags(cmd.Flags())

	return cmd
}

// Run executes the mode selected by the parsed flags
func (a *App) Run(ctx context.Context, cmd *cobra.Command) error {
	if a.Config.Version {
		a.ShowVersion()
		return nil
	}

	if !a.Config.FromDiff && !a.Config.DebugAPI {
		return cmd.Help()
	}

	if err := a.Initialize(); err != nil {
		return err
	}

	// Ensure we always clean up the logger, even on early error paths
	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
		}
	}()

	if a.Config.DebugAPI {
		return a.runDiagnostics(ctx)
	}
	return a.runFromDiff(ctx)
}

// Initialize validates the configuration and sets up the logger
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		if errors.Is(err, errors.ErrInvalidConfiguration) {
			return err
		}
		return errors.Wrap(errors.ErrInvalidConfiguration, err.Error())
	}

	a.styles = ui.NewStyles(a.Stdout, ui.ColorEnabled(a.Stdout, a.Config.NoColor))

	if a.Logger == nil {
		l := logger.NewWithOutput(a.Config.Debug, a.Config.LogFile, a.Config.Verbose, a.Stdout, a.Stderr)
		l.SetStyles(a.styles)
		a.Logger = l
	}

	if a.Config.ConfigFile != "" {
		a.Logger.Info("Loaded configuration from %s", a.Config.ConfigFile)
	}
	return nil
}

func (a *App) runDiagnostics(ctx context.Context) error {
	if a.Diagnostics == nil {
		a.Diagnostics = diagnostics.NewRunner(a.Config, a.Logger)
	}

	report := a.Diagnostics.Run(ctx, a.Config.Check)

	styles := a.styles
	if a.Config.Format != "text" {
		styles = ui.Plain()
	}
	return report.Render(a.Stdout, a.Config.Format, styles)
}

func (a *App) runFromDiff(ctx context.Context) error {
	if err := a.checkRequiredCommands(); err != nil {
		return err
	}

	isRepo, err := a.isRepository(a.Config.RepoPath)
	if err != nil {
		a.Logger.Warning("Failed to check if path is a git repository: %v", err)
		return errors.Wrap(errors.ErrGitOperationFailed, err.Error())
	}
	if !isRepo {
		return errors.WithHint(
			errors.Wrapf(errors.ErrNotGitRepository, "%s", a.Config.RepoPath),
			"run commitbuddy inside a git repository or pass --repo <path>",
		)
	}
	a.Logger.Info("Git repository verified at %s", a.Config.RepoPath)

	if err := a.acquireLock(); err != nil {
		return err
	}
	defer func() {
		if err := a.Locker.Release(); err != nil {
			a.Logger.Warning("Failed to release session lock: %v", err)
		}
	}()

	if a.Committer == nil {
		a.Committer = a.newCommitter()
	}
	return a.Committer.Run(ctx)
}

func (a *App) acquireLock() error {
	if a.Locker == nil {
		locker, err := lock.New(a.Config.RepoPath)
		if err != nil {
			return err
		}
		a.Locker = locker
	}

	if err := a.Locker.Acquire(); err != nil {
		if errors.Is(err, errors.ErrAlreadyRunning) {
			return errors.WithHint(err, "finish the other commitbuddy session for this repository first")
		}
		return err
	}
	return nil
}

// newCommitter wires the production Buddy.
func (a *App) newCommitter() Committer {
	repo := git.NewRepositoryWithDeps(a.Config.RepoPath, a.Logger, git.NewExecExecutor(), a.Config.GitTimeout)

	var source buddy.MessageSource
	if a.Config.HasAPIKey() {
		client, err := llm.NewClient(a.Config, a.Logger)
		if err != nil {
			a.Logger.WarningToUser("%v, using locally generated messages", err)
		} else {
			source = client
		}
	} else {
		a.Logger.Info("GROQ_API_KEY not configured, using locally generated messages")
	}

	var confirmer confirm.Confirmer
	if a.Config.AssumeYes {
		confirmer = &confirm.AutoConfirmer{Writer: a.Stdout, Styles: a.styles}
	} else {
		confirmer = &confirm.Loop{
			Reader: confirm.NewLineReader(a.Stdin),
			Writer: a.Stdout,
			Styles: a.styles,
			Logger: a.Logger,
		}
	}

	options := buddy.Options{
		Detailed: a.Config.DetailedCommits,
		DryRun:   a.Config.DryRun,
	}
	return buddy.NewBuddyWithDeps(options, a.Logger, repo, source, confirmer, a.Stdout, a.styles)
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "commitbuddy %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// checkRequiredCommands verifies git is available in PATH
func (a *App) checkRequiredCommands() error {
	if _, err := a.execLookPath("git"); err != nil {
		return errors.WithHint(errors.ErrGitNotInstalled, "install git from https://git-scm.com/downloads")
	}
	return nil
}

// printError writes err and any attached hints to stderr
func (a *App) printError(err error) {
	_, _ = fmt.Fprintf(a.Stderr, "❌ %s\n", a.styles.Error("Error: "+err.Error()))
	for _, hint := range errors.Hints(err) {
		_, _ = fmt.Fprintf(a.Stderr, "   💡 %s\n", a.styles.Muted(hint))
	}
}

// Close releases resources held by the App
func (a *App) Close() error {
	if a.Logger == nil {
		return nil
	}
	if err := a.Logger.Close(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
		return err
	}
	return nil
}
