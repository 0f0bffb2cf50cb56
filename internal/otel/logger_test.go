package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindFeedLoadStart, Level: LevelInfo, Comp: "feed", Count: 16})
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["kind"] != "feed.load_start" {
		t.Errorf("kind = %v", lines[0]["kind"])
	}
	if lines[0]["comp"] != "feed" {
		t.Errorf("comp = %v", lines[0]["comp"])
	}
	if lines[0]["count"] != float64(16) {
		t.Errorf("count = %v", lines[0]["count"])
	}
}

func TestEmitStampsTimeAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Emit(Event{Kind: KindShutdown})
	l.Close()

	var evs []Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		evs = append(evs, ev)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Time.Before(before) {
		t.Errorf("time %v is before emit", evs[0].Time)
	}
	if len(evs[0].SessionID) != 16 || evs[0].SessionID != evs[1].SessionID {
		t.Errorf("session ids %q / %q", evs[0].SessionID, evs[1].SessionID)
	}
	if evs[0].SessionID != l.SessionID() {
		t.Errorf("SessionID() = %q, events carry %q", l.SessionID(), evs[0].SessionID)
	}
}

func TestDurSerializedAsMillis(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindFeedLoadComplete, Dur: 250 * time.Millisecond})
	l.Close()

	lines := decodeLines(t, &buf)
	if lines[0]["dur_ms"] != float64(250) {
		t.Errorf("dur_ms = %v, want 250", lines[0]["dur_ms"])
	}
}

func TestEmptyFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := buf.String()
	for _, field := range []string{"dur_ms", "count", "source", "err", "msg", "extra"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("field %q should be omitted: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindGesture, Comp: "feed"})
		}()
	}
	wg.Wait()
	l.Close()

	if got := len(decodeLines(t, &buf)); got != 50 {
		t.Errorf("expected 50 lines, got %d", got)
	}
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	l := NewNullLogger()
	l.Close()
	l.Emit(Event{Kind: KindStartup})
	if l.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", l.Dropped())
	}
	l.Close()
}

type gateWriter struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *gateWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.entered)
		<-w.release
	})
	return len(p), nil
}

func TestFullQueueDrops(t *testing.T) {
	w := &gateWriter{entered: make(chan struct{}), release: make(chan struct{})}
	l := NewLogger(w)

	l.Emit(Event{Kind: KindGesture})
	<-w.entered

	for i := 0; i < queueSize+5; i++ {
		l.Emit(Event{Kind: KindGesture})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops with a full queue")
	}
	close(w.release)
	l.Close()
}

// flakyWriter fails the first fails writes, then buffers.
type flakyWriter struct {
	fails int
	buf   bytes.Buffer
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fails > 0 {
		w.fails--
		return 0, errors.New("disk full")
	}
	return w.buf.Write(p)
}

func TestCloseRecordsDroppedCount(t *testing.T) {
	w := &flakyWriter{fails: 1}
	ring := NewRingBuffer(8)
	l := NewLogger(w)
	l.SetRingBuffer(ring)

	l.Emit(Event{Kind: KindLikeSent})
	l.Emit(Event{Kind: KindLikeError})
	l.Close()
	l.Close()

	lines := decodeLines(t, &w.buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0]["kind"] != "like.error" {
		t.Errorf("first line kind = %v, want like.error", lines[0]["kind"])
	}
	if lines[1]["kind"] != "sys.dropped" || lines[1]["count"] != float64(1) {
		t.Errorf("summary = %v, want sys.dropped with count 1", lines[1])
	}
	if got := ring.Stats()[KindDropped]; got != 1 {
		t.Errorf("ring sys.dropped = %d, want 1", got)
	}
}

func TestCloseWithoutDropsWritesNoSummary(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	if lines := decodeLines(t, &buf); len(lines) != 1 {
		t.Errorf("expected only the emitted line, got %d", len(lines))
	}
}

func TestLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info(KindStartup, "main", "starting")
	l.Warn(KindPanelStale, "panel", "late response")
	l.Error(KindFeedLoadError, "feed", errors.New("HTTP 502"))
	l.Close()

	lines := decodeLines(t, &buf)
	want := []struct{ level, kind string }{
		{"info", "sys.startup"},
		{"warn", "panel.stale"},
		{"error", "feed.load_error"},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i, w := range want {
		if lines[i]["level"] != w.level || lines[i]["kind"] != w.kind {
			t.Errorf("line %d: level=%v kind=%v, want %s %s", i, lines[i]["level"], lines[i]["kind"], w.level, w.kind)
		}
	}
	if lines[2]["err"] != "HTTP 502" {
		t.Errorf("err = %v", lines[2]["err"])
	}
}

func TestRingMirror(t *testing.T) {
	ring := NewRingBuffer(8)
	l := NewNullLogger()
	l.SetRingBuffer(ring)
	l.Emit(Event{Kind: KindLikeSent, Dur: time.Second})
	l.Close()

	got := ring.Last(1)
	if len(got) != 1 || got[0].Kind != KindLikeSent {
		t.Fatalf("ring = %+v", got)
	}
	if got[0].Dur != time.Second {
		t.Errorf("ring copy lost Dur: %v", got[0].Dur)
	}
}

func TestTraceToggle(t *testing.T) {
	orig := TraceEnabled()
	defer SetTraceEnabled(orig)

	SetTraceEnabled(true)
	if !TraceEnabled() {
		t.Error("trace should be enabled")
	}
	SetTraceEnabled(false)
	if TraceEnabled() {
		t.Error("trace should be disabled")
	}
}
