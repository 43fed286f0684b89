// Package config provides configuration handling for the commitbuddy application.
//
// This package manages every setting commitbuddy uses: the message source
// (credential, model, endpoint, limits), the repository path, the
// confirmation behaviour and logging. It merges several sources and validates
// the result before anything else runs.
//
// # Core Components
//
// - Config: Main configuration type that holds all commitbuddy settings
// - VersionInfo: Type for version, commit, and build date information
//
// # Configuration Sources
//
// Configuration values are loaded with the following precedence:
//
// 1. Command-line flags (highest priority)
// 2. Environment variables (a .env file in the working directory fills in
// variables that are not already set)
// 3. YAML config file ($COMMITBUDDY_CONFIG, or
// $XDG_CONFIG_HOME/commitbuddy/config.yaml when present)
// 4. Default values (lowest priority)
//
// # Environment Variables
//
//	GROQ_API_KEY                   API credential (required for AI messages)
//	COMMITBUDDY_MODEL              Model name (default: llama-3.1-8b-instant)
//	COMMITBUDDY_ENDPOINT           Chat completions URL (default: Groq)
//	COMMITBUDDY_TIMEOUT_SECONDS    Per-request timeout (default: 10)
//	COMMITBUDDY_MAX_DIFF_SIZE      Diff characters sent to the model (default: 12000)
//	COMMITBUDDY_MAX_TOKENS         Answer length cap (default: 300)
//	COMMITBUDDY_TEMPERATURE        Sampling temperature, 0 to 2 (default: 0.3)
//	COMMITBUDDY_DETAILED_COMMITS   Ask for summary plus bullets (default: true)
//	COMMITBUDDY_VERBOSE            Mirror debug messages to stdout
//	COMMITBUDDY_DEBUG              Enable debug logging to a file
//	COMMITBUDDY_LOG_FILE           Path to log file
//	COMMITBUDDY_REPO_PATH          Path to repository (default: current directory)
//	COMMITBUDDY_CONFIG             YAML config file
//	NO_COLOR                       Disable coloured output
//
// # Config File
//
//	model: llama-3.1-8b-instant
//	timeout_seconds: 10
//	max_diff_size: 12000
//	max_tokens: 300
//	temperature: 0.3
//	detailed_commits: true
//	git_timeout: 15s
//
// # Usage
//
//	cfg := config.New()
//	_ = cfg.LoadDotEnv(".env")
//	if err := cfg.LoadFromFile(config.ConfigFilePath()); err != nil {
//	    // Handle error
//	}
//	cfg.LoadFromEnvironment()
//	cfg.SetupFlags(cmd.Flags())
//	// ... flags are parsed by cobra ...
//	if err := cfg.Finalize(); err != nil {
//	    // Handle error
//	}
//
// Finalize validates the struct with go-playground/validator and reports the
// first violation as an *errors.ConfigError wrapping ErrInvalidConfiguration.
//
// # Thread Safety
//
// The Config type is not designed to be thread-safe. Configuration is loaded
// at startup and then used in a read-only fashion by the application.
package config
