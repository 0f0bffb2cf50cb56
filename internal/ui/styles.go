package ui

import (
	"github.com/abelbrown/shortfeed/internal/panel"
	"github.com/charmbracelet/lipgloss"
)

// Theme is the full set of styles for one color scheme.
type Theme struct {
	Name string

	Header      lipgloss.Style
	StatusBar   lipgloss.Style
	Notice      lipgloss.Style
	Active      lipgloss.Style // header row of the active card
	Muted       lipgloss.Style
	Text        lipgloss.Style
	Link        lipgloss.Style
	Heart       lipgloss.Style
	Media       lipgloss.Style
	ActiveMedia lipgloss.Style
	Progress    lipgloss.Style
	Detail      lipgloss.Style
	DebugPanel  lipgloss.Style
	DebugHeader lipgloss.Style

	Panel panel.Styles
}

type palette struct {
	bg, surface, border, text, muted, accent, heart, warn lipgloss.Color
}

var (
	darkPalette = palette{
		bg:      "#0d1117",
		surface: "#161b22",
		border:  "#30363d",
		text:    "#c9d1d9",
		muted:   "#8b949e",
		accent:  "#58a6ff",
		heart:   "#f85149",
		warn:    "#d29922",
	}
	lightPalette = palette{
		bg:      "#ffffff",
		surface: "#f6f8fa",
		border:  "#d0d7de",
		text:    "#1f2328",
		muted:   "#656d76",
		accent:  "#0969da",
		heart:   "#cf222e",
		warn:    "#9a6700",
	}
)

// DarkTheme is the default scheme.
func DarkTheme() Theme { return newTheme("dark", darkPalette) }

// LightTheme is the alternate scheme toggled with t.
func LightTheme() Theme { return newTheme("light", lightPalette) }

// ThemeByName returns the named theme, falling back to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

func newTheme(name string, p palette) Theme {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	return Theme{
		Name: name,
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text).
			Background(p.surface).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.muted).
			Background(p.surface).
			Padding(0, 1),
		Notice:      lipgloss.NewStyle().Foreground(p.warn),
		Active:      lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(p.muted),
		Text:        lipgloss.NewStyle().Foreground(p.text),
		Link:        lipgloss.NewStyle().Foreground(p.accent).Underline(true),
		Heart:       lipgloss.NewStyle().Foreground(p.heart).Bold(true),
		Media:       box,
		ActiveMedia: box.BorderForeground(p.accent),
		Progress:    lipgloss.NewStyle().Foreground(p.accent),
		Detail: box.
			BorderForeground(p.accent).
			Padding(1, 2),
		DebugPanel: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.warn).
			Padding(1, 2),
		DebugHeader: lipgloss.NewStyle().Foreground(p.warn).Bold(true),

		Panel: panel.Styles{
			Box:      box,
			Title:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
			Author:   lipgloss.NewStyle().Foreground(p.text).Bold(true),
			Muted:    lipgloss.NewStyle().Foreground(p.muted),
			Notice:   lipgloss.NewStyle().Foreground(p.warn),
			Selected: lipgloss.NewStyle().Background(p.surface),
			Skeleton: lipgloss.NewStyle().Foreground(p.border),
			Button: lipgloss.NewStyle().
				Foreground(p.bg).
				Background(p.accent).
				Padding(0, 1),
			Thumb: lipgloss.NewStyle().Foreground(p.muted),
		},
	}
}
