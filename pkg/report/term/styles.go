package term

import "github.com/charmbracelet/lipgloss"

// Colors used in terminal reports.
var (
	ColorBlue  = lipgloss.Color("#3B82F6")
	ColorNavy  = lipgloss.Color("#1E3A8A")
	ColorRed   = lipgloss.Color("#DC2626")
	ColorGray  = lipgloss.Color("#64748B")
	ColorLight = lipgloss.Color("#F8FAFC")
	ColorInk   = lipgloss.Color("#0F172A")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorInk)

	HeadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorNavy).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(ColorBlue).
			PaddingLeft(1)

	BulletMarkerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)

	SubjectLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)

	SubjectStyle = lipgloss.NewStyle().
			Foreground(ColorLight).
			Background(ColorInk)

	FieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGray)

	FieldValueStyle = lipgloss.NewStyle().
			Bold(true)

	HotValueStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(ColorRed)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)
)
