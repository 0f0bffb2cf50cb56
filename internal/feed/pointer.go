package feed

import (
	"context"
	"time"

	"github.com/abelbrown/shortfeed/internal/otel"
)

// Result is what a pointer event resolved to. Deadline is the next time the
// host must call Expire for this card, or zero when no timer is armed.
type Result struct {
	Actions  []Action
	Deadline time.Time
}

// Pointer feeds a pointer event on a card's media element and applies the
// resolved actions. Events for unknown cards are ignored.
func (c *Controller) Pointer(ctx context.Context, postID string, kind PointerKind) Result {
	return c.gesture(ctx, postID, func(g *Gesture, now time.Time) []Action {
		return g.Handle(kind, now)
	})
}

// Expire services a card's gesture timers.
func (c *Controller) Expire(ctx context.Context, postID string) Result {
	return c.gesture(ctx, postID, func(g *Gesture, now time.Time) []Action {
		return g.Tick(now)
	})
}

func (c *Controller) gesture(ctx context.Context, postID string, step func(*Gesture, time.Time) []Action) Result {
	now := c.now()

	c.mu.Lock()
	i, ok := c.index[postID]
	if !ok {
		c.mu.Unlock()
		return Result{}
	}
	card := c.cards[i]
	card.initGesture(c.cfg.Timings)
	acts := step(card.gesture, now)
	deadline := card.gesture.Deadline()

	var liked bool
	for _, a := range acts {
		switch a {
		case ActTogglePlay:
			c.togglePlayLocked(card)
		case ActHoldStart:
			c.holdLocked(card, true)
		case ActHoldEnd:
			c.holdLocked(card, false)
		case ActLike:
			c.bumpLikeLocked(card, now)
			liked = true
		}
	}
	c.mu.Unlock()

	for _, a := range acts {
		c.emitGesture(postID, a)
		if a == ActNavigate && c.navigator != nil {
			c.navigator.OpenPost(postID)
		}
	}
	if liked {
		c.sendLike(ctx, postID)
	}
	return Result{Actions: acts, Deadline: deadline}
}

// Like is the direct like path (desktop double-click). It is debounced by the
// same per-card window as double-tap likes and reports whether a like fired.
func (c *Controller) Like(ctx context.Context, postID string) bool {
	res := c.Pointer(ctx, postID, DoubleClick)
	for _, a := range res.Actions {
		if a == ActLike {
			return true
		}
	}
	return false
}

func (c *Controller) togglePlayLocked(card *Card) {
	if card.player == nil {
		return
	}
	if card.player.Paused() {
		if err := card.player.Play(); err != nil {
			c.log.Error("Video toggle failed", "id", card.ID, "err", err)
			return
		}
		card.userPaused = false
		return
	}
	card.player.Pause()
	card.userPaused = true
}

func (c *Controller) holdLocked(card *Card, start bool) {
	if card.player == nil {
		return
	}
	if !start {
		card.player.SetRate(NormalRate)
		return
	}
	if card.player.Paused() {
		if err := card.player.Play(); err != nil {
			c.log.Error("Video hold playback failed", "id", card.ID, "err", err)
		} else {
			card.userPaused = false
		}
	}
	card.player.SetRate(FastRate)
}

// bumpLikeLocked shows the heart burst and bumps the count optimistically.
// Neither is reconciled with the server.
func (c *Controller) bumpLikeLocked(card *Card, now time.Time) {
	card.heartUntil = now.Add(c.cfg.HeartBurst)
	card.LikesCount++
}

// sendLike fires the like request without waiting for it. The request is
// detached from ctx cancellation so a like sent just before quitting still
// reaches the server; the spawner bounds how long shutdown waits for it.
func (c *Controller) sendLike(ctx context.Context, postID string) {
	if c.liker == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	c.spawn(func() {
		if err := c.liker.Like(ctx, postID); err != nil {
			c.log.Error("Like request failed", "id", postID, "err", err)
			c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindLikeError, Comp: "feed", Source: postID, Err: err.Error()})
			return
		}
		c.emit(otel.Event{Kind: otel.KindLikeSent, Comp: "feed", Source: postID})
	})
}
