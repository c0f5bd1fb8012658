// Package ui renders documents, responses and diffs for the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Minimal color palette
var (
	DimColor    = lipgloss.Color("#6c6c6c")
	TextColor   = lipgloss.Color("#e0e0e0")
	AccentColor = lipgloss.Color("#7aa2f7")
	ErrorColor  = lipgloss.Color("#f7768e")
	OKColor     = lipgloss.Color("#9ece6a")
	WarnColor   = lipgloss.Color("#e0af68")
)

var (
	WorkspaceStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	CollectionStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	RequestStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MethodStyle = lipgloss.NewStyle().
			Foreground(OKColor).
			Bold(true)

	IDStyle = lipgloss.NewStyle().
		Foreground(DimColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarnStyle = lipgloss.NewStyle().
			Foreground(WarnColor)

	HeadingStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Underline(true)
)

// statusStyle colors an HTTP status by class.
func statusStyle(code uint16) lipgloss.Style {
	switch {
	case code >= 500:
		return ErrorStyle
	case code >= 400:
		return WarnStyle
	default:
		return MethodStyle
	}
}
