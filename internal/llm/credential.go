package llm

import (
	"strings"
	"unicode"

	"github.com/bashhack/commitbuddy/internal/errors"
)

const (
	keyPrefix    = "gsk_"
	minKeyLength = 10

	keyHint = "export GROQ_API_KEY=your_api_key (keys are issued at https://console.groq.com/keys)"
)

// ValidateAPIKey checks the shape of a Groq credential without contacting the
// endpoint. The returned error wraps ErrInvalidCredential.
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)

	var problem string
	switch {
	case key == "":
		problem = "GROQ_API_KEY is not configured"
	case strings.IndexFunc(key, unicode.IsSpace) >= 0:
		problem = "GROQ_API_KEY must not contain spaces"
	case len(key) < minKeyLength:
		problem = "GROQ_API_KEY appears to be too short"
	case !strings.HasPrefix(key, keyPrefix):
		problem = "GROQ_API_KEY must start with '" + keyPrefix + "'"
	default:
		return nil
	}

	return errors.WithHint(errors.Wrap(errors.ErrInvalidCredential, problem), keyHint)
}

// MaskKey shows enough of key to identify it in logs and reports.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
