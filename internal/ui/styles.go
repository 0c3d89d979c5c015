package ui

import "github.com/charmbracelet/lipgloss"

// Palette is a set of colors the styles are built from.
type Palette struct {
	Name    string
	Red     lipgloss.Color
	Green   lipgloss.Color
	Yellow  lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Faint   lipgloss.Color
	Text    lipgloss.Color
	Special lipgloss.Color
}

var (
	Dark = Palette{
		Name:    "dark",
		Red:     lipgloss.Color("#FF5F5F"),
		Green:   lipgloss.Color("#00FF00"),
		Yellow:  lipgloss.Color("#FFFF00"),
		Accent:  lipgloss.Color("#00FFFF"),
		Muted:   lipgloss.Color("#666666"),
		Faint:   lipgloss.Color("#444444"),
		Text:    lipgloss.Color("#FFFFFF"),
		Special: lipgloss.Color("#FF00FF"),
	}

	Light = Palette{
		Name:    "light",
		Red:     lipgloss.Color("#C00000"),
		Green:   lipgloss.Color("#007A00"),
		Yellow:  lipgloss.Color("#9A6700"),
		Accent:  lipgloss.Color("#005F87"),
		Muted:   lipgloss.Color("#6E6E6E"),
		Faint:   lipgloss.Color("#B0B0B0"),
		Text:    lipgloss.Color("#1A1A1A"),
		Special: lipgloss.Color("#8700AF"),
	}
)

// Styles used throughout the UI. Rebuilt by Apply.
var (
	TitleStyle            lipgloss.Style
	StatusStyle           lipgloss.Style
	ConnectedDotStyle     lipgloss.Style
	ConnectingDotStyle    lipgloss.Style
	IdleDotStyle          lipgloss.Style
	ErrorStyle            lipgloss.Style
	ErrorTextStyle        lipgloss.Style
	SuccessTextStyle      lipgloss.Style
	TimestampStyle        lipgloss.Style
	PanelTitleStyle       lipgloss.Style
	PanelTitleActiveStyle lipgloss.Style
	DimStyle              lipgloss.Style
	TextStyle             lipgloss.Style
	FooterKeyStyle        lipgloss.Style
	FooterDescStyle       lipgloss.Style
	DividerStyle          lipgloss.Style
	LiveBadgeStyle        lipgloss.Style
	ScrollBadgeStyle      lipgloss.Style
	InfoStyle             lipgloss.Style

	current Palette
)

func init() {
	Apply(Dark)
}

// Current returns the palette styles were last built from.
func Current() Palette {
	return current
}

// For returns the dark or light palette.
func For(dark bool) Palette {
	if dark {
		return Dark
	}
	return Light
}

// Apply rebuilds every style from p.
func Apply(p Palette) {
	current = p

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	StatusStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	ConnectedDotStyle = lipgloss.NewStyle().
		Foreground(p.Green).
		Bold(true)

	ConnectingDotStyle = lipgloss.NewStyle().
		Foreground(p.Yellow).
		Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Red).
		Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
		Foreground(p.Red)

	SuccessTextStyle = lipgloss.NewStyle().
		Foreground(p.Green)

	TimestampStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	PanelTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text)

	PanelTitleActiveStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	DimStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	TextStyle = lipgloss.NewStyle().
		Foreground(p.Text)

	FooterKeyStyle = lipgloss.NewStyle().
		Foreground(p.Yellow).
		Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Faint)

	LiveBadgeStyle = lipgloss.NewStyle().
		Foreground(p.Green).
		Bold(true)

	ScrollBadgeStyle = lipgloss.NewStyle().
		Foreground(p.Yellow).
		Bold(true)

	InfoStyle = lipgloss.NewStyle().
		Foreground(p.Special)
}
