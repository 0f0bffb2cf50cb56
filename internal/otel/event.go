// Package otel provides structured event logging for shortfeed.
//
// Events are typed structs serialized as JSONL lines by an asynchronous
// Logger. An optional RingBuffer keeps the most recent events in memory for
// the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Feed controller
	KindFeedLoadStart    EventKind = "feed.load_start"
	KindFeedLoadComplete EventKind = "feed.load_complete"
	KindFeedLoadError    EventKind = "feed.load_error"
	KindFeedActive       EventKind = "feed.active"
	KindGesture          EventKind = "feed.gesture"
	KindLikeSent         EventKind = "like.sent"
	KindLikeError        EventKind = "like.error"

	// Side panels
	KindPanelLoad  EventKind = "panel.load"
	KindPanelStale EventKind = "panel.stale"
	KindPanelError EventKind = "panel.error"

	// UI
	KindKeyPress EventKind = "ui.key"
	KindMouse    EventKind = "ui.mouse"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
	KindDropped  EventKind = "sys.dropped"
)

// Event is the universal event record. Every field except Kind and Time is
// optional.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "feed", "panel", "ui", "main"
	SessionID string         `json:"session_id,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"` // post or user id the event concerns
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := struct {
		alias
	}{alias: alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
