package feed

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/abelbrown/shortfeed/internal/otel"
	"github.com/charmbracelet/log"
)

// Controller is the feed scroll and gesture controller. One instance serves
// one feed view.
//
// Goroutine safety: all methods may be called concurrently. The internal mutex
// is never held across network I/O or collaborator callbacks, so collaborators
// may call back into the controller.
type Controller struct {
	mu  sync.Mutex
	cfg Config

	source    Source
	liker     Liker
	notifier  Notifier
	captions  CaptionProcessor
	navigator Navigator
	newPlayer func(Post) Player
	spawn     func(func())
	clock     Clock
	log       Logger
	events    *otel.Logger

	// Pagination. loading is the re-entrancy guard; offset only advances
	// after a successful append.
	offset    int
	hasMore   bool
	loading   bool
	batchSize int

	cards []*Card
	index map[string]int

	// Observer relations, recomputed after every append.
	winStart, winEnd int
	prefetchID       string
	ratios           map[string]float64
	activeID         string
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the tunables. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg.withDefaults() }
}

// WithLiker sets the like submitter.
func WithLiker(l Liker) Option {
	return func(c *Controller) { c.liker = l }
}

// WithNotifier sets the active-post listener.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithCaptions sets the caption processor run on appended cards.
func WithCaptions(p CaptionProcessor) Option {
	return func(c *Controller) { c.captions = p }
}

// WithNavigator sets the detail-view opener.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.navigator = n }
}

// WithPlayerFactory sets how video cards get their Player.
func WithPlayerFactory(f func(Post) Player) Option {
	return func(c *Controller) { c.newPlayer = f }
}

// WithSpawner sets how fire-and-forget like requests are run. Defaults to a
// new goroutine; tests pass a synchronous runner.
func WithSpawner(spawn func(func())) Option {
	return func(c *Controller) { c.spawn = spawn }
}

// WithClock sets the time source.
func WithClock(clk Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithLogger sets the human-readable logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithEvents attaches the JSONL event log.
func WithEvents(e *otel.Logger) Option {
	return func(c *Controller) { c.events = e }
}

// New creates a Controller reading batches from src.
func New(src Source, opts ...Option) *Controller {
	c := &Controller{
		cfg:       DefaultConfig(),
		source:    src,
		newPlayer: func(Post) Player { return NewPlayback() },
		spawn:     func(f func()) { go f() },
		clock:     SystemClock,
		log:       log.New(io.Discard),
		hasMore:   true,
		index:     make(map[string]int),
		ratios:    make(map[string]float64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.batchSize = c.cfg.BatchSize
	return c
}

// State returns a snapshot of the pagination state and active pointer.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Offset:       c.offset,
		HasMore:      c.hasMore,
		Loading:      c.loading,
		BatchSize:    c.batchSize,
		ActivePostID: c.activeID,
	}
}

// Cards returns the rendered cards in feed order.
func (c *Controller) Cards() []*Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Len returns the number of rendered cards.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cards)
}

// Card returns the card with the given post id.
func (c *Controller) Card(postID string) (*Card, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[postID]
	if !ok {
		return nil, false
	}
	return c.cards[i], true
}

// IndexOf returns the feed position of a post, or -1.
func (c *Controller) IndexOf(postID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[postID]; ok {
		return i
	}
	return -1
}

// Observed returns the index window watched by the play/pause and
// active-post observers.
func (c *Controller) Observed() (start, end int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winStart, c.winEnd
}

// PrefetchTrigger returns the post id whose visibility starts the next load,
// or "" when no trigger is subscribed.
func (c *Controller) PrefetchTrigger() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefetchID
}

// Seed installs server-rendered posts as the initial cards. The offset starts
// after them.
func (c *Controller) Seed(posts []Post) {
	c.mu.Lock()
	added := c.appendLocked(posts)
	c.offset = len(c.cards)
	n := c.attachLocked()
	c.mu.Unlock()

	c.processCaptions(added)
	c.deliver(n)
}

// BeginLoad claims the loading guard. It returns the offset to fetch from and
// false when a load is already in flight or the feed is exhausted.
func (c *Controller) BeginLoad() (offset int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || !c.hasMore {
		return 0, false
	}
	c.loading = true
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedLoadStart, Comp: "feed", Count: c.offset})
	return c.offset, true
}

// CompleteLoad finishes a load claimed with BeginLoad. On error the state is
// left untouched so the same offset is retried by the next trigger.
func (c *Controller) CompleteLoad(page Page, err error) {
	c.mu.Lock()
	if !c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.log.Error("Load batch failed", "offset", c.State().Offset, "err", err)
		c.emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFeedLoadError, Comp: "feed", Err: err.Error()})
		return
	}

	if page.BatchSize > 0 {
		c.batchSize = page.BatchSize
	}
	c.hasMore = page.HasMore
	added := c.appendLocked(page.Posts)
	prev, stalled := c.offset, page.NextOffset <= c.offset
	if !stalled {
		c.offset = page.NextOffset
	}
	n := c.attachLocked()
	total := len(c.cards)
	c.mu.Unlock()

	if stalled && page.HasMore {
		c.log.Warn("Server did not advance next_offset", "offset", prev, "next_offset", page.NextOffset)
	}

	c.log.Debug("Batch appended", "added", len(added), "total", total, "has_more", page.HasMore)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedLoadComplete, Comp: "feed", Count: len(added)})
	c.processCaptions(added)
	c.deliver(n)
}

// LoadNextBatch fetches and appends the next batch. It returns false without
// issuing a request when a load is already in flight or the feed is exhausted.
func (c *Controller) LoadNextBatch(ctx context.Context) bool {
	offset, ok := c.BeginLoad()
	if !ok {
		return false
	}
	page, err := c.source.FetchFeed(ctx, offset)
	c.CompleteLoad(page, err)
	return true
}

// NearBottom is the scroll-position fallback trigger. It reports whether a
// load should start because the scroll position is within the configured
// distance of the bottom edge.
func (c *Controller) NearBottom(scrollTop, clientHeight, scrollHeight int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasMore || c.loading {
		return false
	}
	return scrollTop+clientHeight >= scrollHeight-c.cfg.NearBottom
}

// ScrollFeed moves the active pointer one card up or down and returns the
// index the host should scroll to. load reports that moving down reached the
// last card while more data exists.
func (c *Controller) ScrollFeed(dir Direction) (index int, load bool) {
	c.mu.Lock()
	if len(c.cards) == 0 {
		c.mu.Unlock()
		return -1, false
	}
	idx, ok := c.index[c.activeID]
	if !ok {
		idx = 0
	}
	switch dir {
	case Up:
		if idx > 0 {
			idx--
		}
	default:
		if idx < len(c.cards)-1 {
			idx++
		}
		load = idx == len(c.cards)-1 && c.hasMore && !c.loading
	}
	n := c.activateLocked(c.cards[idx])
	c.mu.Unlock()

	c.deliver(n)
	return idx, load
}

// ScrollTop moves the active pointer to the first card.
func (c *Controller) ScrollTop() int {
	c.mu.Lock()
	if len(c.cards) == 0 {
		c.mu.Unlock()
		return -1
	}
	n := c.activateLocked(c.cards[0])
	c.mu.Unlock()
	c.deliver(n)
	return 0
}

// BumpComments increments a card's comment count after a posted comment.
func (c *Controller) BumpComments(postID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[postID]; ok {
		c.cards[i].CommentsCount++
	}
}

// appendLocked appends one card per post in order. Posts whose id is already
// rendered are skipped. Returns the new cards.
func (c *Controller) appendLocked(posts []Post) []*Card {
	added := make([]*Card, 0, len(posts))
	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		if _, dup := c.index[p.ID]; dup {
			c.log.Debug("Skipping duplicate post", "id", p.ID)
			continue
		}
		card := &Card{Post: p}
		if p.MediaType == MediaVideo && c.newPlayer != nil {
			card.player = c.newPlayer(p)
		}
		c.index[p.ID] = len(c.cards)
		c.cards = append(c.cards, card)
		added = append(added, card)
	}
	return added
}

// attachLocked re-establishes all observer relations over the current card
// list and defaults the active post to the first card.
func (c *Controller) attachLocked() notification {
	total := len(c.cards)
	c.winStart, c.winEnd = ObservedWindow(total, c.batchSize)
	for i := c.winStart; i < c.winEnd; i++ {
		c.cards[i].initGesture(c.cfg.Timings)
	}
	for id := range c.ratios {
		if i, ok := c.index[id]; !ok || !inWindow(i, c.winStart, c.winEnd) {
			delete(c.ratios, id)
		}
	}

	c.prefetchID = ""
	if i := PrefetchIndex(total, c.cfg.PrefetchThreshold); i >= 0 {
		c.prefetchID = c.cards[i].ID
	}

	if c.activeID == "" && total > 0 {
		return c.activateLocked(c.cards[0])
	}
	return notification{}
}

// notification is an active-post change to deliver outside the lock.
type notification struct {
	postID string
	userID string
}

func (c *Controller) activateLocked(card *Card) notification {
	if card.ID == c.activeID {
		return notification{}
	}
	c.activeID = card.ID
	return notification{postID: card.ID, userID: card.UserID}
}

func (c *Controller) deliver(n notification) {
	if n.postID == "" {
		return
	}
	c.emit(otel.Event{Kind: otel.KindFeedActive, Comp: "feed", Msg: n.postID})
	if c.notifier == nil {
		return
	}
	c.notifier.NotifyActivePost(n.postID)
	if n.userID != "" {
		c.notifier.NotifyActiveUser(n.userID)
	}
}

func (c *Controller) processCaptions(cards []*Card) {
	if c.captions != nil && len(cards) > 0 {
		c.captions.ProcessNewNodes(cards)
	}
}

func (c *Controller) emit(e otel.Event) {
	if c.events != nil {
		c.events.Emit(e)
	}
}

// now is a convenience for the clock.
func (c *Controller) now() time.Time { return c.clock.Now() }
