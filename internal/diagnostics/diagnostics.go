package diagnostics

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bashhack/commitbuddy/internal/commitmsg"
	"github.com/bashhack/commitbuddy/internal/config"
	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/llm"
	"github.com/bashhack/commitbuddy/internal/logger"
)

// Check names accepted by Run.
const (
	CheckKey          = "key"
	CheckConnectivity = "connectivity"
	CheckSample       = "sample"
	CheckModels       = "models"
	CheckFallback     = "fallback"
	CheckAll          = "all"
)

const sampleDiff = `diff --git a/test.py b/test.py
index 1234567..abcdefg 100644
--- a/test.py
+++ b/test.py
@@ -1,3 +1,4 @@
 def hello():
     print("Hello, World!")
+    print("This is a test change")
`

// Source is the part of the Message Source the diagnostics exercise.
// *llm.Client implements it.
type Source interface {
	Ping(ctx context.Context) (int, string, error)
	GenerateCommitMessage(ctx context.Context, diff string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// SourceFactory builds a Source from the configuration.
type SourceFactory func(cfg *config.Config, log logger.Logger) (Source, error)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name    string            `json:"name" yaml:"name"`
	Success bool              `json:"success" yaml:"success"`
	Message string            `json:"message" yaml:"message"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Environment describes where the diagnostics ran.
type Environment struct {
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
	APIKeySet bool   `json:"api_key_set" yaml:"api_key_set"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Model     string `json:"model" yaml:"model"`
}

// Report collects every check run by Runner.Run.
type Report struct {
	Timestamp       string        `json:"timestamp" yaml:"timestamp"`
	Environment     Environment   `json:"environment" yaml:"environment"`
	Checks          []CheckResult `json:"checks" yaml:"checks"`
	FallbackReasons []string      `json:"fallback_reasons" yaml:"fallback_reasons"`
	Recommendations []string      `json:"recommendations" yaml:"recommendations"`
	Healthy         bool          `json:"healthy" yaml:"healthy"`
}

// Check returns the named result, if that check ran.
func (r *Report) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Runner executes the self-checks. It never touches the repository.
type Runner struct {
	cfg       *config.Config
	logger    logger.Logger
	newSource SourceFactory
	now       func() time.Time
}

// NewRunner creates a Runner backed by the real LLM client.
func NewRunner(cfg *config.Config, log logger.Logger) *Runner {
	return NewRunnerWithDeps(cfg, log, defaultFactory, time.Now)
}

// NewRunnerWithDeps creates a Runner with an explicit source factory and clock.
func NewRunnerWithDeps(cfg *config.Config, log logger.Logger, factory SourceFactory, now func() time.Time) *Runner {
	return &Runner{cfg: cfg, logger: log, newSource: factory, now: now}
}

func defaultFactory(cfg *config.Config, log logger.Logger) (Source, error) {
	client, err := llm.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// run holds the state shared by the checks of one Run.
type run struct {
	*Runner
	report *Report

	source    Source
	sourceErr error
	reachable bool
}

// Run executes check (one of the Check* names) and returns the report.
// "fallback" also runs the checks it derives its reasons from.
func (r *Runner) Run(ctx context.Context, check string) *Report {
	report := &Report{
		Timestamp: r.now().Format(time.RFC3339),
		Environment: Environment{
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			APIKeySet: r.cfg.HasAPIKey(),
			Endpoint:  r.cfg.Endpoint,
			Model:     r.cfg.Model,
		},
		FallbackReasons: []string{},
		Recommendations: []string{},
	}
	if report.Environment.APIKeySet {
		report.Environment.APIKey = llm.MaskKey(r.cfg.APIKey)
	}

	st := &run{Runner: r, report: report}
	r.logger.Info("Running diagnostics: %s", check)

	switch check {
	case CheckKey:
		st.checkKey()
	case CheckConnectivity:
		st.checkConnectivity(ctx)
	case CheckSample:
		st.checkSample(ctx)
	case CheckModels:
		st.checkModels(ctx)
	case CheckFallback:
		st.checkKey()
		st.checkConnectivity(ctx)
		st.checkSample(ctx)
		st.checkFallback()
	default:
		st.checkKey()
		st.checkConnectivity(ctx)
		st.checkSample(ctx)
		st.checkModels(ctx)
		st.checkFallback()
	}

	report.Healthy = true
	for _, c := range report.Checks {
		report.Healthy = report.Healthy && c.Success
	}
	r.logger.Info("Diagnostics finished, healthy=%t", report.Healthy)
	return report
}

func (s *run) add(result CheckResult) {
	s.logger.Info("Check %s: success=%t %s", result.Name, result.Success, result.Message)
	s.report.Checks = append(s.report.Checks, result)
}

func (s *run) recommend(text string) {
	for _, existing := range s.report.Recommendations {
		if existing == text {
			return
		}
	}
	s.report.Recommendations = append(s.report.Recommendations, text)
}

// client builds the Source once per run.
func (s *run) client() (Source, error) {
	if s.source == nil && s.sourceErr == nil {
		s.source, s.sourceErr = s.newSource(s.cfg, s.logger)
	}
	return s.source, s.sourceErr
}

func (s *run) checkKey() {
	if err := llm.ValidateAPIKey(s.cfg.APIKey); err != nil {
		s.add(CheckResult{Name: CheckKey, Message: keyProblem(err)})
		s.recommend("Configure GROQ_API_KEY (keys are issued at https://console.groq.com/keys)")
		return
	}
	s.add(CheckResult{
		Name:    CheckKey,
		Success: true,
		Message: "API key format is valid",
		Details: map[string]string{"key": llm.MaskKey(s.cfg.APIKey)},
	})
}

func (s *run) checkConnectivity(ctx context.Context) {
	client, err := s.client()
	if err != nil {
		s.add(CheckResult{Name: CheckConnectivity, Message: "client initialization failed: " + keyProblem(err)})
		s.recommend("Configure GROQ_API_KEY (keys are issued at https://console.groq.com/keys)")
		return
	}

	status, body, err := client.Ping(ctx)
	if err != nil {
		s.add(CheckResult{Name: CheckConnectivity, Message: fmt.Sprintf("connection failed: %v", err)})
		s.recommend("Check network connectivity, proxy and firewall settings")
		return
	}
	s.reachable = llm.Reachable(status)

	result := CheckResult{
		Name:    CheckConnectivity,
		Details: map[string]string{"status": fmt.Sprintf("%d", status), "endpoint": s.cfg.Endpoint},
	}

	switch {
	case status == http.StatusOK:
		result.Success = true
		result.Message = "API connectivity test successful"
	case status == http.StatusUnauthorized:
		result.Message = "authentication failed, the API key was rejected"
		s.recommend("Verify the API key is valid and not expired")
	case status == http.StatusTooManyRequests:
		result.Message = "rate limit exceeded, the API is reachable but throttled"
		s.recommend("Wait a few minutes before trying again")
	case status == http.StatusInternalServerError:
		result.Message = "server error, the API is reachable but failing"
		s.recommend("Try again later, the API is experiencing issues")
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(body), "decommissioned"):
		result.Message = fmt.Sprintf("model %s has been decommissioned", s.cfg.Model)
		s.recommend(fmt.Sprintf("Choose a current model with --model (%s is no longer served)", s.cfg.Model))
	default:
		result.Message = fmt.Sprintf("API returned status %d: %s", status, abbreviate(body, 200))
		s.recommend("Check network connectivity, proxy and firewall settings")
	}
	s.add(result)
}

func (s *run) checkSample(ctx context.Context) {
	client, err := s.client()
	if err != nil {
		s.add(CheckResult{Name: CheckSample, Message: "client initialization failed: " + keyProblem(err)})
		return
	}

	raw, err := client.GenerateCommitMessage(ctx, sampleDiff)
	if err != nil {
		s.add(CheckResult{Name: CheckSample, Message: fmt.Sprintf("sample API call failed: %v", err)})
		return
	}

	normalized := commitmsg.Normalize(&raw, []string{"test.py"})
	s.add(CheckResult{
		Name:    CheckSample,
		Success: true,
		Message: fmt.Sprintf("sample API call successful, generated %q", normalized),
		Details: map[string]string{"raw": raw, "normalized": normalized},
	})
}

func (s *run) checkModels(ctx context.Context) {
	client, err := s.client()
	if err != nil {
		s.add(CheckResult{Name: CheckModels, Message: "client initialization failed: " + keyProblem(err)})
		return
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		s.add(CheckResult{Name: CheckModels, Message: fmt.Sprintf("listing models failed: %v", err)})
		return
	}

	details := map[string]string{"available": fmt.Sprintf("%d", len(models))}
	for _, m := range models {
		if m == s.cfg.Model {
			s.add(CheckResult{
				Name:    CheckModels,
				Success: true,
				Message: fmt.Sprintf("model %s is available", s.cfg.Model),
				Details: details,
			})
			return
		}
	}

	s.add(CheckResult{
		Name:    CheckModels,
		Message: fmt.Sprintf("model %s is not offered by the endpoint", s.cfg.Model),
		Details: details,
	})
	s.recommend(fmt.Sprintf("Choose a model the endpoint offers with --model (%s is not listed)", s.cfg.Model))
}

// checkFallback explains why a normal run would use the local fallback.
func (s *run) checkFallback() {
	var reasons []string

	if key, ok := s.report.Check(CheckKey); ok && !key.Success {
		if s.cfg.HasAPIKey() {
			reasons = append(reasons, "API key format is invalid: "+key.Message)
		} else {
			reasons = append(reasons, "GROQ_API_KEY not configured")
		}
	} else if s.sourceErr != nil {
		reasons = append(reasons, "client initialization failed: "+keyProblem(s.sourceErr))
	} else {
		if !s.reachable {
			reasons = append(reasons, "API is not available (network or server issues)")
		}
		if sample, ok := s.report.Check(CheckSample); ok && !sample.Success {
			reasons = append(reasons, sample.Message)
		}
	}

	s.report.FallbackReasons = append(s.report.FallbackReasons, reasons...)

	if len(reasons) == 0 {
		s.add(CheckResult{Name: CheckFallback, Success: true, Message: "no fallback triggers detected"})
		return
	}
	s.add(CheckResult{Name: CheckFallback, Message: fmt.Sprintf("%d fallback trigger(s) detected", len(reasons))})
	s.recommend("Address the fallback triggers listed above")
}

// keyProblem returns the first line of a credential error without the
// sentinel suffix.
func keyProblem(err error) string {
	msg := err.Error()
	if errors.Is(err, errors.ErrInvalidCredential) {
		msg = strings.TrimSuffix(msg, ": "+errors.ErrInvalidCredential.Error())
	}
	return msg
}

func abbreviate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
