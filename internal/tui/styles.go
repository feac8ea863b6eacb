package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Header bar
	headerColor = lipgloss.Color("#7dd3fc") // Sky

	// Selected list row
	selectionColor = lipgloss.Color("#f43f5e") // Rose

	// Muted metadata and help line
	mutedColor = lipgloss.Color("#6b7280") // Gray

	// Status feedback after an action
	statusColor = lipgloss.Color("#F59E0B") // Amber
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(headerColor).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(selectionColor).
			Bold(true)

	rowStyle = lipgloss.NewStyle()

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(statusColor)

	viewerTitleStyle = lipgloss.NewStyle().
				Foreground(headerColor).
				Bold(true).
				Underline(true)
)
