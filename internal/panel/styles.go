package panel

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles panels render with. The host derives them
// from its active theme.
type Styles struct {
	Box      lipgloss.Style
	Title    lipgloss.Style
	Author   lipgloss.Style
	Muted    lipgloss.Style
	Notice   lipgloss.Style
	Selected lipgloss.Style
	Skeleton lipgloss.Style
	Button   lipgloss.Style
	Thumb    lipgloss.Style
}

// DefaultStyles returns the dark-theme panel styles.
func DefaultStyles() Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(0, 1),
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff")).Bold(true),
		Author:   lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9")).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")),
		Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922")),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("#21262d")),
		Skeleton: lipgloss.NewStyle().Foreground(lipgloss.Color("#30363d")),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0d1117")).
			Background(lipgloss.Color("#58a6ff")).
			Padding(0, 1),
		Thumb: lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")),
	}
}

// TimeAgo formats t relative to now the way the feed shows post ages:
// "Just now", minutes, hours, days, then a dd/mm/yy date.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
	return t.Local().Format("02/01/06")
}
