package view

import "github.com/charmbracelet/lipgloss"

// Styles shared by the terminal front ends.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	StepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#aaaacc"))

	CurrentStepStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#00ff88"))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666688")).
			Italic(true)
)
