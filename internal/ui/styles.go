// Package ui provides terminal styling for smig CLI output.
// Adaptive light/dark colors via lipgloss.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Semantic status colors (adaptive light/dark).
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
)

// Status styles - consistent across all commands.
var (
	PassStyle  = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle  = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Status icons.
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
)

// RenderPass renders text with pass (green) styling.
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warn (yellow) styling.
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling.
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling.
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}
