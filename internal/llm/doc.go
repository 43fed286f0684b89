// Package llm is commitbuddy's Message Source: a small client for
// OpenAI-compatible chat completions endpoints (Groq by default).
//
// The client only fetches text. Turning the answer into a valid commit
// summary is the job of package commitmsg.
//
// Failures are returned as *errors.APIError wrapping one of the sentinels
// ErrAuthentication (401/403), ErrRateLimited (429), ErrServerError (5xx),
// ErrAPIRequest (other statuses), ErrMessageSourceUnavailable (transport
// failures, timeouts, open breaker) or ErrMalformedResponse.
//
// Requests are paced with golang.org/x/time/rate and pass through a
// sony/gobreaker circuit breaker that opens after three consecutive
// transport or server failures.
package llm
