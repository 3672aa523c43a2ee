package ui

import "github.com/charmbracelet/lipgloss"

// Base palette (dark terminals).
var (
	colorSkyBlue   = lipgloss.Color("#86bada")
	colorMauve     = lipgloss.Color("#dbaad7")
	colorPeach     = lipgloss.Color("#f6bcb0")
	colorMutedText = lipgloss.Color("#6b6d8a")
	colorBodyText  = lipgloss.Color("#c8cad8")
)

var (
	userLabelStyle  = lipgloss.NewStyle().Foreground(colorSkyBlue).Bold(true)
	modelLabelStyle = lipgloss.NewStyle().Foreground(colorMauve).Bold(true)
	bodyStyle       = lipgloss.NewStyle().Foreground(colorBodyText)
	errorStyle      = lipgloss.NewStyle().Foreground(colorPeach)
	hintStyle       = lipgloss.NewStyle().Foreground(colorMutedText)
	promptStyle     = lipgloss.NewStyle().Foreground(colorSkyBlue)
)
