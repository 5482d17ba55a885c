package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue, used for item refs
	colorOpen   = 114 // green
	colorMuted  = 245 // medium gray
)

var noColor bool

// RenderRef returns an item ref (e.g. "WEB-42") in the accent color.
func RenderRef(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderOpen returns s in green, used for the open status.
func RenderOpen(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorOpen, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
