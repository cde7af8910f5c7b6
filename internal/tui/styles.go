package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the editor.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	DirtyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ModeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)

// levelStyles tint section titles by heading depth; index 0 is the preamble.
var levelStyles = []lipgloss.Style{
	DimStyle,
	lipgloss.NewStyle().Foreground(ColorWhite).Bold(true),
	lipgloss.NewStyle().Foreground(ColorCyan),
	lipgloss.NewStyle().Foreground(ColorGreen),
}

func levelStyle(level int) lipgloss.Style {
	if level < 0 {
		level = 0
	}
	if level >= len(levelStyles) {
		return SectionStyle
	}
	return levelStyles[level]
}
