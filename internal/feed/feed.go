// Package feed implements the short-feed scroll and gesture controller.
//
// The controller owns pagination state for an append-only list of post cards,
// tracks which card is currently in view, and turns ambiguous pointer input on
// a card into exactly one of toggle-play, speed-boost-while-held, like, or
// navigate-to-detail. It has no UI dependency: hosts feed it viewport
// intersections and pointer events, and it calls back into the panels that
// follow the active post.
package feed

import (
	"context"
	"time"
)

// Defaults mirror the values used by the web feed.
const (
	DefaultBatchSize         = 16
	DefaultPrefetchThreshold = 3
	DefaultActiveThreshold   = 0.6
	DefaultPrefetchRatio     = 0.1
	DefaultNearBottom        = 200
	DefaultHeartBurst        = 800 * time.Millisecond
)

// MediaType is the kind of media a post carries.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType maps an API value to a MediaType. Anything that is not
// "video" renders as an image.
func ParseMediaType(s string) MediaType {
	if s == string(MediaVideo) {
		return MediaVideo
	}
	return MediaImage
}

// Post is one feed record as served by the feed API.
type Post struct {
	ID            string
	UserID        string
	MediaType     MediaType
	MediaPath     string
	Caption       string
	CreatedAt     time.Time
	LikesCount    int
	CommentsCount int
}

// Page is one batch returned by the feed API.
type Page struct {
	Posts      []Post
	BatchSize  int
	HasMore    bool
	NextOffset int
}

// State is a snapshot of the controller's pagination and active pointer.
type State struct {
	Offset       int
	HasMore      bool
	Loading      bool
	BatchSize    int
	ActivePostID string
}

// Intersection is one viewport-observation entry for a card.
// Ratio is the visible fraction of the card in [0, 1].
type Intersection struct {
	PostID string
	Ratio  float64
}

// Direction is a keyboard/button scroll direction.
type Direction int

const (
	Down Direction = iota
	Up
)

// Source loads feed batches.
type Source interface {
	FetchFeed(ctx context.Context, offset int) (Page, error)
}

// Liker submits likes for a post.
type Liker interface {
	Like(ctx context.Context, postID string) error
}

// Notifier is informed whenever the active post changes.
type Notifier interface {
	NotifyActivePost(postID string)
	NotifyActiveUser(userID string)
}

// CaptionProcessor re-measures captions of freshly appended cards.
type CaptionProcessor interface {
	ProcessNewNodes(cards []*Card)
}

// Navigator opens the detail view of a post.
type Navigator interface {
	OpenPost(postID string)
}

// Logger is the subset of charmbracelet/log used by the controller.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Clock supplies the current time. Gesture timing is computed against it so
// tests can drive a virtual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Config holds the controller tunables.
type Config struct {
	BatchSize         int
	PrefetchThreshold int
	ActiveThreshold   float64
	PrefetchRatio     float64
	NearBottom        int // host units (pixels, rows) from the bottom edge
	HeartBurst        time.Duration
	Timings           Timings
}

// DefaultConfig returns the canonical tunables.
func DefaultConfig() Config {
	return Config{
		BatchSize:         DefaultBatchSize,
		PrefetchThreshold: DefaultPrefetchThreshold,
		ActiveThreshold:   DefaultActiveThreshold,
		PrefetchRatio:     DefaultPrefetchRatio,
		NearBottom:        DefaultNearBottom,
		HeartBurst:        DefaultHeartBurst,
		Timings:           DefaultTimings(),
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.PrefetchThreshold <= 0 {
		c.PrefetchThreshold = d.PrefetchThreshold
	}
	if c.ActiveThreshold <= 0 {
		c.ActiveThreshold = d.ActiveThreshold
	}
	if c.PrefetchRatio <= 0 {
		c.PrefetchRatio = d.PrefetchRatio
	}
	if c.NearBottom <= 0 {
		c.NearBottom = d.NearBottom
	}
	if c.HeartBurst <= 0 {
		c.HeartBurst = d.HeartBurst
	}
	if c.Timings.DoubleTap <= 0 {
		c.Timings.DoubleTap = d.Timings.DoubleTap
	}
	if c.Timings.Hold <= 0 {
		c.Timings.Hold = d.Timings.Hold
	}
	return c
}
