package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// HeaderSegmentStyle colours one block of the header bar.
type HeaderSegmentStyle struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
}

type Theme struct {
	AppFrame       lipgloss.Style
	EditorBorder   lipgloss.Style
	OutputBorder   lipgloss.Style
	HeaderBrand    lipgloss.Style
	HeaderValue    lipgloss.Style
	HeaderSegments []HeaderSegmentStyle
	PrimaryAction  lipgloss.Style
	Tabs           lipgloss.Style
	TabActive      lipgloss.Style
	TabInactive    lipgloss.Style
	TabPending     lipgloss.Style
	PaneHeading    lipgloss.Style
	PaneBody       lipgloss.Style
	Warning        lipgloss.Style
	Error          lipgloss.Style
	Success        lipgloss.Style
	Link           lipgloss.Style
	StatusBar      lipgloss.Style
	StatusBarKey   lipgloss.Style
	StatusBarValue lipgloss.Style
	Prompt         lipgloss.Style
	Muted          lipgloss.Style
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#CE422B")
	border := lipgloss.Color("#403B59")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1DC"))

	return Theme{
		AppFrame:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border),
		EditorBorder: base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(accent),
		OutputBorder: base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5FB3B3")),
		HeaderBrand: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1020")).
			Background(lipgloss.Color("#F6A35B")).
			Bold(true).
			Padding(0, 1),
		HeaderValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#D1CFF6")),
		HeaderSegments: []HeaderSegmentStyle{
			{Background: lipgloss.Color("#CE422B"), Foreground: lipgloss.Color("#FFF4EE")},
			{Background: lipgloss.Color("#15AABF"), Foreground: lipgloss.Color("#EFFDFF")},
			{Background: lipgloss.Color("#33C481"), Foreground: lipgloss.Color("#052817")},
			{Background: lipgloss.Color("#FFB61E"), Foreground: lipgloss.Color("#1F1500")},
		},
		PrimaryAction: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Bold(true).
			Padding(0, 1),
		Tabs: lipgloss.NewStyle().Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFBFF")).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		TabInactive:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8A85A0")).Padding(0, 1),
		TabPending:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB61E")).Italic(true).Padding(0, 1),
		PaneHeading:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Bold(true).Underline(true),
		PaneBody:       base,
		Warning:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB61E")),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Success:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		Link:           lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB3F3")).Underline(true),
		StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBarValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		Prompt:         lipgloss.NewStyle().Foreground(accent).Bold(true),
		Muted:          lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")),
	}
}

func (t Theme) HeaderSegment(idx int) HeaderSegmentStyle {
	if len(t.HeaderSegments) == 0 {
		return HeaderSegmentStyle{Background: lipgloss.Color("#3B355D"), Foreground: lipgloss.Color("#F5F2FF")}
	}
	return t.HeaderSegments[idx%len(t.HeaderSegments)]
}

// UseNoColor switches lipgloss to the ASCII profile so every style renders
// as plain text.
func UseNoColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
