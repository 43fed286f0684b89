package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette used for every styled line the CLI prints.
var (
	ColorInfo    = lipgloss.Color("#0099ff")
	ColorSuccess = lipgloss.Color("#00c853")
	ColorWarning = lipgloss.Color("#ffaa00")
	ColorError   = lipgloss.Color("#ff3b30")
	ColorMuted   = lipgloss.Color("#808080")
	ColorAccent  = lipgloss.Color("#00ffff")
)

// Styles renders user-facing text. The zero value renders everything as
// plain text.
type Styles struct {
	enabled bool

	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
	message lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

// NewStyles builds styles bound to w. When enabled is false, or w does not
// support colour, text is returned untouched.
func NewStyles(w io.Writer, enabled bool) Styles {
	if !enabled {
		return Plain()
	}

	r := lipgloss.NewRenderer(w)
	return Styles{
		enabled: true,
		info:    r.NewStyle().Foreground(ColorInfo),
		success: r.NewStyle().Foreground(ColorSuccess).Bold(true),
		warning: r.NewStyle().Foreground(ColorWarning),
		failure: r.NewStyle().Foreground(ColorError).Bold(true),
		muted:   r.NewStyle().Foreground(ColorMuted),
		title:   r.NewStyle().Foreground(ColorAccent).Bold(true),
		message: r.NewStyle().Bold(true),
		added:   r.NewStyle().Foreground(ColorSuccess),
		removed: r.NewStyle().Foreground(ColorError),
	}
}

// Plain returns styles that never emit escape sequences.
func Plain() Styles {
	return Styles{}
}

// Enabled reports whether the styles emit colour.
func (s Styles) Enabled() bool {
	return s.enabled
}

func (s Styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s Styles) Info(text string) string    { return s.render(s.info, text) }
func (s Styles) Success(text string) string { return s.render(s.success, text) }
func (s Styles) Warning(text string) string { return s.render(s.warning, text) }
func (s Styles) Error(text string) string   { return s.render(s.failure, text) }
func (s Styles) Muted(text string) string   { return s.render(s.muted, text) }
func (s Styles) Title(text string) string   { return s.render(s.title, text) }
func (s Styles) Message(text string) string { return s.render(s.message, text) }
func (s Styles) Added(text string) string   { return s.render(s.added, text) }
func (s Styles) Removed(text string) string { return s.render(s.removed, text) }

type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether v (usually an *os.File) is attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ColorEnabled decides whether output written to w should be styled.
// NO_COLOR (any value) and noColor both switch colour off.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(w)
}
