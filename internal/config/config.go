package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is the chat model requested from the endpoint
	DefaultModel = "llama-3.1-8b-instant"

	// DefaultEndpoint is the OpenAI-compatible chat completions URL
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultTimeoutSeconds bounds a single API request
	DefaultTimeoutSeconds = 10

	// DefaultMaxDiffSize is the number of diff characters sent to the model
	DefaultMaxDiffSize = 12000

	// DefaultMaxTokens caps the length of the model's answer
	DefaultMaxTokens = 300

	// DefaultTemperature for generation
	DefaultTemperature = 0.3

	// DefaultGitTimeout bounds every git subprocess
	DefaultGitTimeout = 15 * time.Second

	// DefaultRequestsPerSecond paces calls to the endpoint
	DefaultRequestsPerSecond = 2.0

	// APIKeyEnv names the environment variable holding the credential
	APIKeyEnv = "GROQ_API_KEY"

	// ConfigFileEnv names the environment variable pointing at a YAML config file
	ConfigFileEnv = "COMMITBUDDY_CONFIG"

	envPrefix = "COMMITBUDDY_"
	appName   = "commitbuddy"
)

// Checks lists the diagnostics checks accepted by --check
var Checks = []string{"key", "connectivity", "sample", "models", "fallback", "all"}

// Formats lists the report formats accepted by --format
var Formats = []string{"text", "yaml", "json"}

// Config holds all commitbuddy settings
type Config struct {
	// Modes
	FromDiff bool
	DebugAPI bool
	Check    string `validate:"oneof=key connectivity sample models fallback all"`
	Format   string `validate:"oneof=text yaml json"`

	// Repository
	RepoPath   string
	GitTimeout time.Duration `validate:"gt=0"`

	// Message source
	APIKey            string
	Model             string  `validate:"required"`
	Endpoint          string  `validate:"required,url"`
	TimeoutSeconds    int     `validate:"gt=0"`
	MaxDiffSize       int     `validate:"gt=0"`
	MaxTokens         int     `validate:"gt=0"`
	Temperature       float64 `validate:"gte=0,lte=2"`
	RequestsPerSecond float64 `validate:"gt=0"`
	DetailedCommits   bool

	// Confirmation
	AssumeYes bool
	DryRun    bool

	// User experience
	Verbose bool
	NoColor bool

	// Debugging
	Debug   bool
	LogFile string

	// ConfigFile is the YAML file the settings were read from, if any
	ConfigFile string

	// Special flags
	Version bool

	// Build metadata
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// fileConfig mirrors the YAML config file. Pointers distinguish "unset" from
// zero values so a file only overrides what it names.
type fileConfig struct {
	Model           *string  `yaml:"model"`
	Endpoint        *string  `yaml:"endpoint"`
	TimeoutSeconds  *int     `yaml:"timeout_seconds"`
	MaxDiffSize     *int     `yaml:"max_diff_size"`
	MaxTokens       *int     `yaml:"max_tokens"`
	Temperature     *float64 `yaml:"temperature"`
	DetailedCommits *bool    `yaml:"detailed_commits"`
	GitTimeout      *string  `yaml:"git_timeout"`
	Verbose         *bool    `yaml:"verbose"`
	Debug           *bool    `yaml:"debug"`
	LogFile         *string  `yaml:"log_file"`
	RepoPath        *string  `yaml:"repo_path"`
	NoColor         *bool    `yaml:"no_color"`
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Check:             "all",
		Format:            "text",
		GitTimeout:        DefaultGitTimeout,
		Model:             DefaultModel,
		Endpoint:          DefaultEndpoint,
		TimeoutSeconds:    DefaultTimeoutSeconds,
		MaxDiffSize:       DefaultMaxDiffSize,
		MaxTokens:         DefaultMaxTokens,
		Temperature:       DefaultTemperature,
		RequestsPerSecond: DefaultRequestsPerSecond,
		DetailedCommits:   true,

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadDotEnv reads KEY=value pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func (c *Config) LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewConfigError("dotenv", path, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if err := godotenv.Load(path); err != nil {
		return errors.NewConfigError("dotenv", path, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to parse %s: %v", path, err)))
	}
	return nil
}

// ConfigFilePath returns the YAML file to load: COMMITBUDDY_CONFIG when set,
// otherwise $XDG_CONFIG_HOME/commitbuddy/config.yaml if it exists, otherwise "".
func ConfigFilePath() string {
	if p, ok := os.LookupEnv(ConfigFileEnv); ok && p != "" {
		return p
	}

	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}

	p := filepath.Join(dir, appName, "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// LoadFromFile updates config from a YAML file. An empty path is a no-op.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError("config", path, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to read config file: %v", err)))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.NewConfigError("config", path, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to parse config file: %v", err)))
	}

	setString(&c.Model, fc.Model)
	setString(&c.Endpoint, fc.Endpoint)
	setInt(&c.TimeoutSeconds, fc.TimeoutSeconds)
	setInt(&c.MaxDiffSize, fc.MaxDiffSize)
	setInt(&c.MaxTokens, fc.MaxTokens)
	if fc.Temperature != nil {
		c.Temperature = *fc.Temperature
	}
	setBool(&c.DetailedCommits, fc.DetailedCommits)
	setBool(&c.Verbose, fc.Verbose)
	setBool(&c.Debug, fc.Debug)
	setBool(&c.NoColor, fc.NoColor)
	setString(&c.LogFile, fc.LogFile)
	setString(&c.RepoPath, fc.RepoPath)

	if fc.GitTimeout != nil {
		d, err := time.ParseDuration(*fc.GitTimeout)
		if err != nil {
			return errors.NewConfigError("git_timeout", *fc.GitTimeout, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
		c.GitTimeout = d
	}

	c.ConfigFile = path
	return nil
}

// LoadFromEnvironment updates config from environment variables
func (c *Config) LoadFromEnvironment() {
	c.APIKey = getEnvString(APIKeyEnv, c.APIKey)
	c.Model = getEnvString(envPrefix+"MODEL", c.Model)
	c.Endpoint = getEnvString(envPrefix+"ENDPOINT", c.Endpoint)
	c.TimeoutSeconds = getEnvInt(envPrefix+"TIMEOUT_SECONDS", c.TimeoutSeconds)
	c.MaxDiffSize = getEnvInt(envPrefix+"MAX_DIFF_SIZE", c.MaxDiffSize)
	c.MaxTokens = getEnvInt(envPrefix+"MAX_TOKENS", c.MaxTokens)
	c.Temperature = getEnvFloat(envPrefix+"TEMPERATURE", c.Temperature)
	c.DetailedCommits = getEnvBool(envPrefix+"DETAILED_COMMITS", c.DetailedCommits)
	c.Verbose = getEnvBool(envPrefix+"VERBOSE", c.Verbose)
	c.Debug = getEnvBool(envPrefix+"DEBUG", c.Debug)
	c.LogFile = getEnvString(envPrefix+"LOG_FILE", c.LogFile)
	c.RepoPath = getEnvString(envPrefix+"REPO_PATH", c.RepoPath)

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.NoColor = true
	}
}

// SetupFlags binds command-line flags to config fields. Current field values
// become the flag defaults, so call it after the file and environment layers.
func (c *Config) SetupFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.FromDiff, "from-diff", c.FromDiff, "Generate a commit message from staged changes")
	fs.BoolVar(&c.DebugAPI, "debug-api", c.DebugAPI, "Diagnose the message source (API key, connectivity, sample request)")
	fs.StringVar(&c.Check, "check", c.Check, "Diagnostics check to run: "+strings.Join(Checks, ", "))
	fs.StringVar(&c.Format, "format", c.Format, "Diagnostics report format: "+strings.Join(Formats, ", "))

	fs.StringVar(&c.RepoPath, "repo", c.RepoPath, "Path to repository (default: current directory)")
	fs.StringVar(&c.Model, "model", c.Model, "Model to request")
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "Chat completions endpoint URL")
	fs.BoolVar(&c.DetailedCommits, "detailed", c.DetailedCommits, "Ask for a summary line plus per-file bullets")

	fs.BoolVarP(&c.AssumeYes, "yes", "y", c.AssumeYes, "Commit without asking for confirmation")
	fs.BoolVar(&c.DryRun, "dry-run", c.DryRun, "Print the proposed message without committing")

	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Show debug messages on stdout")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable coloured output")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging to a file")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/commitbuddy/logs/commitbuddy-{repo-hash}.log)")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
}

// Timeout returns the per-request API timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HasAPIKey reports whether a credential was supplied at all.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// flagNames maps struct fields to the user-visible setting names in errors.
var flagNames = map[string]string{
	"Check":             "check",
	"Format":            "format",
	"GitTimeout":        "git_timeout",
	"Model":             "model",
	"Endpoint":          "endpoint",
	"TimeoutSeconds":    "timeout_seconds",
	"MaxDiffSize":       "max_diff_size",
	"MaxTokens":         "max_tokens",
	"Temperature":       "temperature",
	"RequestsPerSecond": "requests_per_second",
}

var validate = validator.New()

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	c.Check = strings.ToLower(strings.TrimSpace(c.Check))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Endpoint = strings.TrimSpace(c.Endpoint)

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			name := flagNames[fe.StructField()]
			if name == "" {
				name = fe.StructField()
			}
			msg := fmt.Sprintf("invalid %s: %v (failed %q rule)", name, fe.Value(), ruleOf(fe))
			return errors.NewConfigError(name, fe.Value(), errors.Wrap(errors.ErrInvalidConfiguration, msg))
		}
		return errors.NewConfigError("config", nil, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if c.FromDiff && c.DebugAPI {
		return errors.NewConfigError("mode", nil, errors.Wrap(errors.ErrInvalidConfiguration, "--from-diff and --debug-api cannot be combined"))
	}

	if c.RepoPath == "" {
		var err error
		c.RepoPath, err = os.Getwd()
		if err != nil {
			return errors.NewConfigError("repoPath", "", errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to get current directory: %v", err)))
		}
	}

	absRepoPath, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return errors.NewConfigError("repoPath", c.RepoPath, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.RepoPath = absRepoPath

	if c.LogFile == "" {
		c.LogFile = defaultLogFile(c.RepoPath)
	}

	return nil
}

func ruleOf(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// defaultLogFile follows the XDG Base Directory layout:
// $XDG_DATA_HOME/commitbuddy/logs/commitbuddy-<repo hash>.log
func defaultLogFile(repoPath string) string {
	logDir := os.Getenv("XDG_DATA_HOME")
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			logDir = filepath.Join(homeDir, ".local", "share")
		} else {
			logDir = os.TempDir()
		}
	}

	repoHash := fmt.Sprintf("%x", sha256OfString(repoPath)[:8])
	return filepath.Join(logDir, appName, "logs", fmt.Sprintf("%s-%s.log", appName, repoHash))
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvFloat returns an environment variable as float64 or a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		valueLower := strings.ToLower(strings.TrimSpace(valueStr))
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
	}
	return defaultValue
}

// sha256OfString returns the SHA256 hash of a string
func sha256OfString(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}
