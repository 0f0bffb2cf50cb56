package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/shortfeed/internal/otel"
	tea "github.com/charmbracelet/bubbletea"
)

func TestDebugOverlayNilRing(t *testing.T) {
	result := debugOverlay(nil, DarkTheme(), 80, 24)
	if result != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", result)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindFeedLoadStart, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindFeedLoadComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindFeedLoadError, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindLikeSent, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindPanelStale, Time: time.Now()})

	result := debugOverlay(ring, DarkTheme(), 100, 40)

	if !strings.Contains(result, "Feed Stats") {
		t.Error("overlay should contain 'Feed Stats' header")
	}
	if !strings.Contains(result, "1 started, 1 complete, 1 errors") {
		t.Errorf("overlay should show load stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 sent, 0 errors") {
		t.Errorf("overlay should show like stats, got:\n%s", result)
	}
	if !strings.Contains(result, "0 loaded, 1 stale") {
		t.Errorf("overlay should show panel stats, got:\n%s", result)
	}
	if !strings.Contains(result, "5 / 64 events") {
		t.Errorf("overlay should show buffer stats, got:\n%s", result)
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindGesture, Time: time.Now(), Source: "p7", Msg: "like"})
	ring.Push(otel.Event{Kind: otel.KindLikeError, Time: time.Now(), Err: "timeout"})

	result := debugOverlay(ring, DarkTheme(), 100, 40)

	if !strings.Contains(result, "Recent Events") {
		t.Error("overlay should contain 'Recent Events' header")
	}
	if !strings.Contains(result, "p7") || !strings.Contains(result, "like") {
		t.Errorf("overlay should show event source and message, got:\n%s", result)
	}
	if !strings.Contains(result, "ERR:timeout") {
		t.Errorf("overlay should show error, got:\n%s", result)
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindFeedActive, Time: time.Now()})
	}

	// Very small height should still render without panic
	result := debugOverlay(ring, DarkTheme(), 80, 10)
	if result == "" {
		t.Error("overlay should still render with small height")
	}

	// With height=10, maxHeight=6 content lines plus border and padding
	if lines := strings.Count(result, "\n") + 1; lines > 10 {
		t.Errorf("overlay should be truncated, got %d lines", lines)
	}
}

func TestDebugToggle(t *testing.T) {
	app, _ := newTestApp(t, newFakeSource(4))
	app.ring = otel.NewRingBuffer(16)

	if app.debug {
		t.Error("debug should be hidden initially")
	}

	app = press(t, app, "?")
	if !app.debug {
		t.Error("? should show debug overlay")
	}
	if view := app.View(); !strings.Contains(view, "[DEBUG]") {
		t.Errorf("debug view should contain '[DEBUG]', got:\n%s", view)
	}

	app = press(t, app, "?")
	if app.debug {
		t.Error("second ? should hide debug overlay")
	}

	app = press(t, app, "?")
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).debug {
		t.Error("esc should close the debug overlay")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0ms"},
		{50 * time.Millisecond, "50ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.5s"},
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "2m"}, // 1.5 minutes rounds to 2 with %.0f
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		got := formatAge(tt.dur)
		if got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

func TestFormatAgeNegative(t *testing.T) {
	got := formatAge(-5 * time.Second)
	if got != "0ms" {
		t.Errorf("formatAge(-5s) = %q, want \"0ms\"", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld", 5); got != "héll…" {
		t.Errorf("truncateRunes = %q", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("truncateRunes = %q", got)
	}
}
