package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/shortfeed/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by the debug
// panel's border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if Theme.DebugPanel changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing feed stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, theme Theme, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, theme.DebugHeader.Render("Feed Stats"))
	lines = append(lines, fmt.Sprintf("  Loads:      %d started, %d complete, %d errors",
		stats[otel.KindFeedLoadStart], stats[otel.KindFeedLoadComplete], stats[otel.KindFeedLoadError]))
	lines = append(lines, fmt.Sprintf("  Active:     %d changes", stats[otel.KindFeedActive]))
	lines = append(lines, fmt.Sprintf("  Gestures:   %d resolved", stats[otel.KindGesture]))
	lines = append(lines, fmt.Sprintf("  Likes:      %d sent, %d errors",
		stats[otel.KindLikeSent], stats[otel.KindLikeError]))
	lines = append(lines, fmt.Sprintf("  Panels:     %d loaded, %d stale, %d errors",
		stats[otel.KindPanelLoad], stats[otel.KindPanelStale], stats[otel.KindPanelError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, theme.DebugHeader.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Source != "" {
			line += "  " + truncateRunes(e.Source, 12)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height
	maxHeight := max(1, height-debugPanelChrome)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	if panelWidth < 20 {
		panelWidth = 20
	}

	return theme.DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
