package feed

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Timings are the gesture disambiguation windows.
type Timings struct {
	DoubleTap time.Duration // max gap between taps of a double-tap; also the like debounce window
	Hold      time.Duration // press duration that turns a tap into a hold
}

// DefaultTimings returns the canonical 300ms double-tap and 350ms hold windows.
func DefaultTimings() Timings {
	return Timings{
		DoubleTap: 300 * time.Millisecond,
		Hold:      350 * time.Millisecond,
	}
}

// Validate checks that a hold can never be mistaken for the second tap of a
// double-tap.
func (t Timings) Validate() error {
	if t.DoubleTap <= 0 || t.Hold <= 0 {
		return fmt.Errorf("gesture timings must be positive (double-tap %v, hold %v)", t.DoubleTap, t.Hold)
	}
	if t.Hold <= t.DoubleTap {
		return fmt.Errorf("hold threshold %v must exceed double-tap window %v", t.Hold, t.DoubleTap)
	}
	return nil
}

// GestureState is the disambiguation state of one card's media element.
type GestureState int

const (
	Idle GestureState = iota
	AwaitingSecondTap
	Holding
)

func (s GestureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSecondTap:
		return "awaiting-second-tap"
	case Holding:
		return "holding"
	default:
		return fmt.Sprintf("GestureState(%d)", int(s))
	}
}

// PointerKind is a pointer input event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerUp
	PointerCancel
	PointerLeave
	DoubleClick
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerUp:
		return "pointerup"
	case PointerCancel:
		return "pointercancel"
	case PointerLeave:
		return "pointerleave"
	case DoubleClick:
		return "dblclick"
	default:
		return fmt.Sprintf("PointerKind(%d)", int(k))
	}
}

// Action is the outcome of a resolved gesture.
type Action int

const (
	ActTogglePlay Action = iota + 1
	ActHoldStart
	ActHoldEnd
	ActLike
	ActNavigate
)

func (a Action) String() string {
	switch a {
	case ActTogglePlay:
		return "toggle-play"
	case ActHoldStart:
		return "hold-start"
	case ActHoldEnd:
		return "hold-end"
	case ActLike:
		return "like"
	case ActNavigate:
		return "navigate"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Gesture is the per-card finite-state machine that disambiguates tap,
// double-tap and press-and-hold. It never sleeps: timer expiry is observed
// when the host calls Tick (or any other event) with a time at or past
// Deadline.
//
// Not safe for concurrent use; the Controller serializes access.
type Gesture struct {
	media   MediaType
	timings Timings
	state   GestureState
	pressed bool
	holdAt  time.Time // zero when no hold timer is armed
	lastTap time.Time // zero when no tap is pending
	likes   *rate.Limiter
}

// NewGesture creates an idle gesture machine for the given media type.
func NewGesture(media MediaType, t Timings) *Gesture {
	return &Gesture{
		media:   media,
		timings: t,
		likes:   rate.NewLimiter(rate.Every(t.DoubleTap), 1),
	}
}

// State returns the current disambiguation state.
func (g *Gesture) State() GestureState { return g.state }

// Deadline returns the earliest pending timer expiry, or the zero time when no
// timer is armed.
func (g *Gesture) Deadline() time.Time {
	var d time.Time
	if g.pressed && g.state != Holding && !g.holdAt.IsZero() {
		d = g.holdAt
	}
	if g.state == AwaitingSecondTap && !g.lastTap.IsZero() {
		tapAt := g.lastTap.Add(g.timings.DoubleTap)
		if d.IsZero() || tapAt.Before(d) {
			d = tapAt
		}
	}
	return d
}

// Handle feeds a pointer event observed at now and returns the resolved actions.
func (g *Gesture) Handle(kind PointerKind, now time.Time) []Action {
	acts := g.Tick(now)

	switch kind {
	case PointerDown:
		g.pressed = true
		g.holdAt = now.Add(g.timings.Hold)

	case PointerUp:
		if !g.pressed {
			return acts
		}
		g.pressed = false
		g.holdAt = time.Time{}
		if g.state == Holding {
			g.state = Idle
			return append(acts, ActHoldEnd)
		}
		return append(acts, g.tap(now)...)

	case PointerCancel, PointerLeave:
		g.pressed = false
		g.holdAt = time.Time{}
		if g.state == Holding {
			g.state = Idle
			acts = append(acts, ActHoldEnd)
		}

	case DoubleClick:
		if g.likes.AllowN(now, 1) {
			acts = append(acts, ActLike)
		}
	}
	return acts
}

// Tick fires any timers that expired at or before now.
func (g *Gesture) Tick(now time.Time) []Action {
	var acts []Action

	if g.state == AwaitingSecondTap && !now.Before(g.lastTap.Add(g.timings.DoubleTap)) {
		g.state = Idle
		g.lastTap = time.Time{}
		if g.media == MediaImage {
			acts = append(acts, ActNavigate)
		}
	}

	if g.pressed && g.state != Holding && !g.holdAt.IsZero() && !now.Before(g.holdAt) {
		g.holdAt = time.Time{}
		g.state = Holding
		g.lastTap = time.Time{}
		acts = append(acts, ActHoldStart)
	}
	return acts
}

// tap resolves a completed, non-hold tap.
func (g *Gesture) tap(now time.Time) []Action {
	if g.state == AwaitingSecondTap && now.Sub(g.lastTap) < g.timings.DoubleTap {
		// A third rapid tap starts a new chain instead of extending this one.
		g.state = Idle
		g.lastTap = time.Time{}
		if g.likes.AllowN(now, 1) {
			return []Action{ActLike}
		}
		return nil
	}

	g.state = AwaitingSecondTap
	g.lastTap = now
	if g.media == MediaVideo {
		return []Action{ActTogglePlay}
	}
	return nil
}
