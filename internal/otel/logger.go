package otel

// The drain goroutine is the only reader of l.ch and the only writer to l.w
// until Close, which writes the drop summary after drain has exited.

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// queueSize bounds the async write queue. Events past it are dropped.
const queueSize = 2048

type queued struct {
	line []byte
	ev   Event
}

// Logger writes events as JSONL from a background goroutine. Emit never
// blocks the caller; a full queue drops the event and counts it.
type Logger struct {
	ring      atomic.Pointer[RingBuffer]
	sessionID string
	ch        chan queued
	w         io.Writer
	dropped   atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewLogger starts a Logger writing to w. Close flushes and stops it.
func NewLogger(w io.Writer) *Logger {
	var sid [8]byte
	_, _ = rand.Read(sid[:])

	l := &Logger{
		sessionID: fmt.Sprintf("%x", sid[:]),
		ch:        make(chan queued, queueSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go l.drain()
	return l
}

// NewNullLogger returns a Logger that discards output.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) drain() {
	defer close(l.done)
	for q := range l.ch {
		if _, err := l.w.Write(q.line); err != nil {
			l.dropped.Add(1)
		}
		if ring := l.ring.Load(); ring != nil {
			ring.Push(q.ev)
		}
	}
}

// Emit queues an event, stamping Time (if unset) and SessionID.
// Safe to call concurrently with Close: late events are counted as dropped.
func (l *Logger) Emit(e Event) {
	defer func() {
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()

	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.sessionID

	line, err := encode(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}

	select {
	case l.ch <- queued{line: line, ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info-level event.
func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn-level event.
func (l *Logger) Warn(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. A nil err is logged as empty.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	l.Emit(Event{Level: LevelError, Kind: kind, Comp: comp, Err: msg})
}

// SetRingBuffer mirrors every written event into ring.
func (l *Logger) SetRingBuffer(ring *RingBuffer) {
	l.ring.Store(ring)
}

// SessionID returns the random id stamped on every event of this run.
func (l *Logger) SessionID() string { return l.sessionID }

// Dropped returns how many events were lost.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close drains pending events and stops the writer. When events were lost
// it appends one sys.dropped record carrying the count. Idempotent.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		<-l.done

		d := l.dropped.Load()
		if d == 0 {
			return
		}
		e := Event{
			Time:      time.Now(),
			Level:     LevelWarn,
			Kind:      KindDropped,
			Comp:      "otel",
			SessionID: l.sessionID,
			Count:     int(d),
		}
		if line, err := encode(e); err == nil {
			_, _ = l.w.Write(line)
		}
		if ring := l.ring.Load(); ring != nil {
			ring.Push(e)
		}
	})
}

func encode(e Event) ([]byte, error) {
	line, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
