// Package ui holds terminal presentation helpers for commitbuddy: colour
// detection and the lipgloss styles used by the logger and the confirmation
// prompt.
//
// Styling is off when NO_COLOR is set, when --no-color is passed, or when the
// output is not a terminal. A disabled Styles value returns text unchanged,
// which is what tests rely on.
package ui
