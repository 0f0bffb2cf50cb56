package feed

import (
	"errors"
	"sync"
	"time"
)

// Player controls playback of a card's video.
type Player interface {
	Paused() bool
	Play() error
	Pause()
	SetRate(rate float64)
	Rate() float64
}

// Playback rates used by the hold gesture.
const (
	NormalRate = 1.0
	FastRate   = 2.0
)

// ErrPlaybackBlocked is returned by Play when the platform refuses to start
// playback (for example an autoplay policy).
var ErrPlaybackBlocked = errors.New("playback blocked")

// Card is one rendered post. Identity is Post.ID. Only the like count changes
// after creation.
type Card struct {
	Post

	player     Player
	gesture    *Gesture
	userPaused bool
	heartUntil time.Time
}

// Player returns the card's video player, or nil for image posts.
func (c *Card) Player() Player { return c.player }

// Gesture returns the card's gesture machine, or nil before initialization.
func (c *Card) Gesture() *Gesture { return c.gesture }

// Hearting reports whether the heart-burst feedback is visible at now.
func (c *Card) Hearting(now time.Time) bool {
	return now.Before(c.heartUntil)
}

// initGesture attaches the gesture machine once. It reports whether this call
// did the attaching.
func (c *Card) initGesture(t Timings) bool {
	if c.gesture != nil {
		return false
	}
	c.gesture = NewGesture(c.MediaType, t)
	return true
}

// Playback is an in-memory Player. It tracks position so a host can render
// progress; videos loop, so position only grows.
type Playback struct {
	mu       sync.Mutex
	paused   bool
	rate     float64
	position time.Duration
	blocked  bool
}

// NewPlayback returns a paused player at normal rate.
func NewPlayback() *Playback {
	return &Playback{paused: true, rate: NormalRate}
}

func (p *Playback) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Playback) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blocked {
		return ErrPlaybackBlocked
	}
	p.paused = false
	return nil
}

func (p *Playback) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *Playback) SetRate(rate float64) {
	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()
}

func (p *Playback) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetBlocked makes subsequent Play calls fail with ErrPlaybackBlocked.
func (p *Playback) SetBlocked(blocked bool) {
	p.mu.Lock()
	p.blocked = blocked
	p.mu.Unlock()
}

// Advance moves the position forward by d scaled by the current rate when
// playing.
func (p *Playback) Advance(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		p.position += time.Duration(float64(d) * p.rate)
	}
}

// Position returns the accumulated play position.
func (p *Playback) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}
