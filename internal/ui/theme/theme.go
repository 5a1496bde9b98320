package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, modelled on a multifunction tester display.
var (
	Primary     = lipgloss.Color("#F59E0B") // Tester amber
	Secondary   = lipgloss.Color("#14B8A6") // Teal
	Accent      = lipgloss.Color("#F97316") // Orange
	Success     = lipgloss.Color("#22C55E") // Green
	Error       = lipgloss.Color("#F43F5E") // Rose
	Warning     = lipgloss.Color("#EAB308") // Yellow
	Text        = lipgloss.Color("#F8FAFC") // White
	TextDim     = lipgloss.Color("#94A3B8") // Slate
	BgDark      = lipgloss.Color("#0F172A") // Deep Navy
	BgCard      = lipgloss.Color("#1E293B") // Dark Slate
	Border      = lipgloss.Color("#334155") // Slate
	Display     = lipgloss.Color("#A3E635") // LCD green
	Continuity  = lipgloss.Color("#38BDF8") // Sky
	Insulation  = lipgloss.Color("#C084FC") // Violet
	PanelYellow = lipgloss.Color("#FACC15")
	PanelCyan   = lipgloss.Color("#22D3EE")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Heading = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Abnormal = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Normal = lipgloss.NewStyle().
		Foreground(Success)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	// Meter is the LCD panel of the tester.
	Meter = lipgloss.NewStyle().
		Foreground(Display).
		Background(BgDark).
		Bold(true).
		Border(lipgloss.ThickBorder()).
		BorderForeground(Primary).
		Padding(0, 2)
)
