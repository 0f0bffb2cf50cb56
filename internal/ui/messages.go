// Package ui provides the Bubble Tea host for the feed controller.
package ui

import (
	"time"

	"github.com/abelbrown/shortfeed/internal/feed"
)

// FeedLoaded is sent when a feed batch request finishes.
type FeedLoaded struct {
	Offset int
	Page   feed.Page
	Err    error
}

// GestureTick services a card's pending gesture timer.
type GestureTick struct {
	PostID string
}

// PlaybackTick advances playing videos and redraws progress bars.
type PlaybackTick struct {
	Time time.Time
}
