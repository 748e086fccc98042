package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all meet WCAG AA contrast (4.5:1) on black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)

	// Task status colors
	StatusCompleted = lipgloss.NewStyle().Foreground(SecondaryColor)
	StatusFailed    = lipgloss.NewStyle().Foreground(ErrorColor)
	StatusPending   = lipgloss.NewStyle().Foreground(MutedColor)
	StatusCurrent   = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	SectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			MarginTop(1)

	Label = lipgloss.NewStyle().
		Foreground(MutedColor)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Progress bar segments
	BarDone = lipgloss.NewStyle().Foreground(SecondaryColor)
	BarTodo = lipgloss.NewStyle().Foreground(BorderColor)
)
