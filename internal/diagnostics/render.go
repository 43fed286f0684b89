package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bashhack/commitbuddy/internal/errors"
	"github.com/bashhack/commitbuddy/internal/ui"
	"gopkg.in/yaml.v3"
)

var checkTitles = map[string]string{
	CheckKey:          "API key configuration",
	CheckConnectivity: "API connectivity",
	CheckSample:       "Sample API call",
	CheckModels:       "Model availability",
	CheckFallback:     "Fallback analysis",
}

const rule = "=================================================="

// Render writes the report in format (text, yaml or json).
func (r *Report) Render(w io.Writer, format string, styles ui.Styles) error {
	switch strings.ToLower(format) {
	case "", "text":
		return r.renderText(w, styles)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode YAML report")
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode JSON report")
		}
		return nil
	default:
		return errors.Errorf("unknown report format %q", format)
	}
}

func (r *Report) renderText(w io.Writer, styles ui.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n", styles.Title("🔍 commitbuddy API diagnostics"), rule)
	fmt.Fprintf(&b, "Time:      %s\n", r.Timestamp)
	fmt.Fprintf(&b, "Platform:  %s (%s)\n", r.Environment.Platform, r.Environment.GoVersion)
	fmt.Fprintf(&b, "Endpoint:  %s\n", r.Environment.Endpoint)
	fmt.Fprintf(&b, "Model:     %s\n", r.Environment.Model)
	if r.Environment.APIKeySet {
		fmt.Fprintf(&b, "API key:   %s\n", r.Environment.APIKey)
	} else {
		fmt.Fprintf(&b, "API key:   %s\n", styles.Warning("not set"))
	}

	for i, c := range r.Checks {
		title := checkTitles[c.Name]
		if title == "" {
			title = c.Name
		}
		mark := styles.Success("✅")
		if !c.Success {
			mark = styles.Error("❌")
		}
		fmt.Fprintf(&b, "\n%d. %s\n   %s %s\n", i+1, title, mark, c.Message)
		if c.Name == CheckFallback {
			for _, reason := range r.FallbackReasons {
				fmt.Fprintf(&b, "      - %s\n", reason)
			}
		}
	}

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, styles.Title("📊 Summary"), rule)
	if r.Healthy {
		fmt.Fprintf(&b, "%s\n", styles.Success("✅ All checks passed, AI commit messages should work."))
	} else {
		fmt.Fprintf(&b, "%s\n", styles.Error("❌ Issues detected, commit messages will likely use the local fallback."))
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", styles.Title("🔧 Recommended actions:"))
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "   %d. %s\n", i+1, rec)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
