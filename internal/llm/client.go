package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bashhack/commitbuddy/internal/config"
	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/logger"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// breakerThreshold is the number of consecutive transport or server
	// failures that open the breaker.
	breakerThreshold = 3

	// breakerCooldown is how long an open breaker rejects calls.
	breakerCooldown = 30 * time.Second

	// maxResponseBody bounds how much of an answer is read.
	maxResponseBody = 1 << 20
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an OpenAI-compatible chat completions request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type modelListResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client talks to a chat completions endpoint. Requests are paced by a rate
// limiter and guarded by a circuit breaker; a Client is safe for concurrent
// use.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	maxDiffSize int
	maxTokens   int
	temperature float64
	detailed    bool

	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger
}

// NewClient creates a Client from cfg. It fails with ErrInvalidCredential
// when the API key is missing or malformed.
func NewClient(cfg *config.Config, log logger.Logger) (*Client, error) {
	if err := ValidateAPIKey(cfg.APIKey); err != nil {
		return nil, err
	}

	c := &Client{
		endpoint:    strings.TrimSpace(cfg.Endpoint),
		model:       cfg.Model,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		maxDiffSize: cfg.MaxDiffSize,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		detailed:    cfg.DetailedCommits,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:      log,
		http: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warning("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Endpoint returns the chat completions URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GenerateCommitMessage asks the model for a commit message describing diff.
// The answer is returned trimmed but otherwise untouched.
func (c *Client) GenerateCommitMessage(ctx context.Context, diff string) (string, error) {
	truncated := TruncateDiff(diff, c.maxDiffSize)
	if len(truncated) != len(diff) {
		c.logger.Info("Diff truncated to %d characters for the request", c.maxDiffSize)
	}

	c.logger.Info("Requesting commit message from %s (model %s, detailed %t)", c.endpoint, c.model, c.detailed)

	content, err := c.Chat(ctx, ChatRequest{
		Messages:    []Message{{Role: "user", Content: BuildPrompt(truncated, c.detailed)}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Warning("Commit message request failed: %v", err)
		return "", err
	}

	c.logger.Info("Received %d characters from the model", len(content))
	return content, nil
}

// Chat sends req and returns the first choice's content.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", errors.New("chat requires at least one message")
	}
	if req.Model == "" {
		req.Model = c.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	body, err := c.execute(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return "", err
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.NewAPIError(http.StatusOK, "invalid JSON response", errors.ErrMalformedResponse)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.NewAPIError(http.StatusOK, "no choices in response", errors.ErrMalformedResponse)
	}

	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", errors.NewAPIError(http.StatusOK, "empty response content", errors.ErrMalformedResponse)
	}
	return content, nil
}

// Ping sends a one-token request and reports the HTTP status. The error is
// set only when no HTTP answer was received. Ping bypasses the breaker.
func (c *Client) Ping(ctx context.Context) (int, string, error) {
	payload, err := json.Marshal(ChatRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: "test"}},
		MaxTokens:   1,
		Temperature: 0.1,
	})
	if err != nil {
		return 0, "", errors.Wrap(err, "marshal request")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, "", unavailable(err)
	}

	status, body, err := c.send(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return 0, "", err
	}
	return status, string(body), nil
}

// Reachable reports whether status proves the endpoint answered a well-formed
// request, even if it refused it.
func Reachable(status int) bool {
	switch status {
	case http.StatusOK, http.StatusBadRequest, http.StatusUnauthorized,
		http.StatusTooManyRequests, http.StatusInternalServerError:
		return true
	}
	return false
}

// ListModels returns the model IDs the endpoint advertises.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	body, err := c.execute(ctx, http.MethodGet, ModelsURL(c.endpoint), nil)
	if err != nil {
		return nil, err
	}

	var decoded modelListResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.NewAPIError(http.StatusOK, "invalid JSON model list", errors.ErrMalformedResponse)
	}

	models := make([]string, 0, len(decoded.Data))
	for _, m := range decoded.Data {
		if m.ID != "" {
			models = append(models, m.ID)
		}
	}
	return models, nil
}

// ModelsURL derives the model listing URL from a chat completions endpoint.
func ModelsURL(endpoint string) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	return base + "/models"
}

// execute paces, guards and classifies one request.
func (c *Client) execute(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable(err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		status, body, err := c.send(ctx, method, url, payload)
		if err != nil {
			return nil, err
		}
		if err := classify(status, body); err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.WithHint(
				errors.NewAPIError(0, "circuit breaker is open after repeated failures", errors.ErrMessageSourceUnavailable),
				"the endpoint failed several times in a row; try again in a moment",
			)
		}
		return nil, err
	}
	return result.([]byte), nil
}

// send performs the HTTP exchange. Only transport failures are errors.
func (c *Client) send(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, unavailable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, unavailable(err)
	}

	c.logger.Info("%s %s -> %d in %s", method, url, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp.StatusCode, body, nil
}

// classify maps a non-2xx answer onto the error taxonomy.
func classify(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	message := apiMessage(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if message == "" {
			message = "invalid API key, check GROQ_API_KEY"
		}
		return errors.NewAPIError(status, message, errors.ErrAuthentication)
	case status == http.StatusTooManyRequests:
		if message == "" {
			message = "rate limit exceeded, try again later"
		}
		return errors.NewAPIError(status, message, errors.ErrRateLimited)
	case status >= 500:
		if message == "" {
			message = "server error, try again later"
		}
		return errors.NewAPIError(status, message, errors.ErrServerError)
	default:
		return errors.NewAPIError(status, message, errors.ErrAPIRequest)
	}
}

// apiMessage extracts {"error":{"message":...}} or falls back to the raw body.
func apiMessage(body []byte) string {
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

func unavailable(err error) error {
	return errors.NewAPIError(0, fmt.Sprintf("unable to reach endpoint: %v", err), errors.ErrMessageSourceUnavailable)
}

// isTransient reports failures that count towards opening the breaker.
func isTransient(err error) bool {
	return errors.Is(err, errors.ErrMessageSourceUnavailable) || errors.Is(err, errors.ErrServerError)
}
