package feed

import "github.com/abelbrown/shortfeed/internal/otel"

// Intersect applies one observer tick. Entries for cards outside the observed
// window are ignored by the play/pause and active-post relations; the
// prefetch relation only looks at its trigger card.
//
// It returns true when the prefetch trigger became visible, in which case
// the trigger is unsubscribed and the host should call LoadNextBatch.
func (c *Controller) Intersect(entries []Intersection) (prefetch bool) {
	c.mu.Lock()

	var plays []playChange
	for _, e := range entries {
		i, ok := c.index[e.PostID]
		if !ok {
			continue
		}
		if c.prefetchID != "" && e.PostID == c.prefetchID && e.Ratio >= c.cfg.PrefetchRatio {
			c.prefetchID = ""
			prefetch = true
		}
		if !inWindow(i, c.winStart, c.winEnd) {
			continue
		}
		c.ratios[e.PostID] = e.Ratio
		if pc, ok := c.playLocked(c.cards[i], e.Ratio >= c.cfg.ActiveThreshold); ok {
			plays = append(plays, pc)
		}
	}

	n := c.pickActiveLocked()
	c.mu.Unlock()

	for _, pc := range plays {
		if err := pc.apply(); err != nil {
			c.log.Warn("Video autoplay failed", "id", pc.card.ID, "err", err)
		}
	}
	c.deliver(n)
	return prefetch
}

// pickActiveLocked selects the intersecting card with the strictly greatest
// ratio. The current active post keeps its place on a tie.
func (c *Controller) pickActiveLocked() notification {
	var (
		best      *Card
		bestRatio float64
	)
	if r, ok := c.ratios[c.activeID]; ok && r >= c.cfg.ActiveThreshold {
		best = c.cards[c.index[c.activeID]]
		bestRatio = r
	}
	for i := c.winStart; i < c.winEnd; i++ {
		card := c.cards[i]
		r, ok := c.ratios[card.ID]
		if !ok || r < c.cfg.ActiveThreshold {
			continue
		}
		if best == nil || r > bestRatio {
			best, bestRatio = card, r
		}
	}
	if best == nil {
		return notification{}
	}
	return c.activateLocked(best)
}

// playChange is a deferred player call, run outside the lock.
type playChange struct {
	card *Card
	play bool
}

func (p playChange) apply() error {
	if p.play {
		return p.card.player.Play()
	}
	p.card.player.Pause()
	return nil
}

// playLocked decides whether a visibility change should start or stop the
// card's video. Videos the user paused stay paused when they come back.
func (c *Controller) playLocked(card *Card, visible bool) (playChange, bool) {
	if card.player == nil {
		return playChange{}, false
	}
	paused := card.player.Paused()
	switch {
	case visible && paused && !card.userPaused:
		return playChange{card: card, play: true}, true
	case !visible && !paused:
		return playChange{card: card, play: false}, true
	}
	return playChange{}, false
}

// emitGesture records a resolved gesture in the event log.
func (c *Controller) emitGesture(postID string, a Action) {
	c.emit(otel.Event{Kind: otel.KindGesture, Comp: "feed", Source: postID, Msg: a.String()})
}
