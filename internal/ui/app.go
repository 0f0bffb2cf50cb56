package ui

import (
	"context"
	"time"

	"github.com/abelbrown/shortfeed/internal/api"
	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/abelbrown/shortfeed/internal/logging"
	"github.com/abelbrown/shortfeed/internal/otel"
	"github.com/abelbrown/shortfeed/internal/panel"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Rows taken by the header and status bar.
const chromeRows = 2

// Columns kept free after a clamped caption for its "See more" label.
const captionReserve = 10

const playbackInterval = 250 * time.Millisecond

type inputMode int

const (
	modeFeed inputMode = iota
	modeCompose
	modeCommand
)

// SocialAPI is the comments and profile surface of the API client.
type SocialAPI interface {
	panel.CommentsAPI
	panel.UserAPI
}

// Options wires the App to its data sources.
type Options struct {
	Source      feed.Source
	Liker       feed.Liker
	Social      SocialAPI
	Feed        feed.Config
	CardRows    int
	MobileWidth int
	Theme       string
	Events      *otel.Logger
	Ring        *otel.RingBuffer
	Clock       feed.Clock

	// FeedOptions are applied after the host's own controller options.
	FeedOptions []feed.Option
}

// App is the root Bubble Tea model. It owns the terminal geometry and turns
// it into intersection entries and pointer events for the controller.
type App struct {
	ctrl     *feed.Controller
	src      feed.Source
	host     *host
	comments *panel.Comments
	user     *panel.User
	captions *panel.Captions
	layout   *panel.Layout
	events   *otel.Logger
	ring     *otel.RingBuffer
	clock    feed.Clock
	tick     func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	theme   Theme
	geo     geometry
	spinner spinner.Model
	help    help.Model
	input   textinput.Model
	mode    inputMode

	width  int
	height int
	ready  bool
	scroll int
	detail string
	debug  bool
	notice string

	// pressed is the card holding the mouse button, "" when released.
	pressed   string
	ratios    map[string]float64
	scheduled map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the App and its feed controller.
func New(opts Options) App {
	clock := opts.Clock
	if clock == nil {
		clock = feed.SystemClock
	}
	theme := ThemeByName(opts.Theme)

	comments := panel.NewComments(opts.Social, opts.Events)
	user := panel.NewUser(opts.Social, opts.Events)
	h := &host{comments: comments, user: user}
	captions := panel.NewCaptions(0)

	fcfg := opts.Feed
	if fcfg.NearBottom <= 0 {
		fcfg.NearBottom = defaultNearBottomRows
	}

	fopts := []feed.Option{
		feed.WithConfig(fcfg),
		feed.WithNotifier(h),
		feed.WithNavigator(h),
		feed.WithCaptions(captions),
		feed.WithClock(clock),
		feed.WithEvents(opts.Events),
		feed.WithLogger(logging.WithPrefix("feed")),
	}
	if opts.Liker != nil {
		fopts = append(fopts, feed.WithLiker(opts.Liker))
	}
	fopts = append(fopts, opts.FeedOptions...)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Active

	ti := textinput.New()
	ti.CharLimit = api.MaxCommentLen
	ti.Cursor.SetMode(cursor.CursorStatic)

	ctx, cancel := context.WithCancel(context.Background())

	return App{
		ctrl:      feed.New(opts.Source, fopts...),
		src:       opts.Source,
		host:      h,
		comments:  comments,
		user:      user,
		captions:  captions,
		layout:    panel.NewLayout(opts.MobileWidth),
		events:    opts.Events,
		ring:      opts.Ring,
		clock:     clock,
		tick:      tea.Tick,
		theme:     theme,
		geo:       newGeometry(opts.CardRows),
		spinner:   s,
		help:      help.New(),
		input:     ti,
		ratios:    make(map[string]float64),
		scheduled: make(map[string]time.Time),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init starts the first feed load and the playback clock.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.loadMore(),
		a.schedulePlayback(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		cmds = append(cmds, a.observe())

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case FeedLoaded:
		a.ctrl.CompleteLoad(msg.Page, msg.Err)
		a.scroll = a.geo.clamp(a.scroll, a.ctrl.Len())
		// The observed window moved; report every card afresh.
		clear(a.ratios)
		cmds = append(cmds, a.observe())

	case GestureTick:
		delete(a.scheduled, msg.PostID)
		res := a.ctrl.Expire(a.ctx, msg.PostID)
		cmds = append(cmds, a.afterGesture(msg.PostID, res))

	case PlaybackTick:
		a.advancePlayback()
		cmds = append(cmds, a.schedulePlayback())

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case panel.CommentsLoaded:
		a.comments.ApplyLoaded(msg)

	case panel.CommentPosted:
		if a.comments.ApplyPosted(msg) {
			a.ctrl.BumpComments(msg.PostID)
		}

	case panel.CommentLiked:
		a.comments.ApplyLiked(msg)

	case panel.UserLoaded:
		a.user.ApplyLoaded(msg)

	case panel.FollowDone:
		a.user.ApplyFollow(msg)
	}

	cmd := a.batch(cmds...)
	return a, cmd
}

// handleKey processes keyboard input.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}
	if a.mode != modeFeed {
		return a.handleInput(msg)
	}

	var cmds []tea.Cmd
	active := a.ctrl.State().ActivePostID

	switch {
	case key.Matches(msg, keys.Quit):
		a.cancel()
		return a, tea.Quit

	case key.Matches(msg, keys.Close):
		switch {
		case a.debug:
			a.debug = false
		case a.detail != "":
			a.detail = ""
		default:
			a.layout.Apply(panel.Command{Action: panel.Show, Target: panel.Content})
			a.layout.Apply(panel.Command{Action: panel.Hide, Target: panel.CommentsPanel})
			a.layout.Apply(panel.Command{Action: panel.Hide, Target: panel.UserPanel})
			a.relayout()
		}

	case key.Matches(msg, keys.Debug):
		a.debug = !a.debug

	case key.Matches(msg, keys.Down):
		cmds = append(cmds, a.scrollFeed(feed.Down))

	case key.Matches(msg, keys.Up):
		cmds = append(cmds, a.scrollFeed(feed.Up))

	case key.Matches(msg, keys.Top):
		if a.ctrl.ScrollTop() >= 0 {
			a.scroll = 0
		}
		cmds = append(cmds, a.observe())

	case key.Matches(msg, keys.Tap):
		if active != "" {
			a.ctrl.Pointer(a.ctx, active, feed.PointerDown)
			res := a.ctrl.Pointer(a.ctx, active, feed.PointerUp)
			cmds = append(cmds, a.afterGesture(active, res))
		}

	case key.Matches(msg, keys.Like):
		if active != "" {
			a.ctrl.Like(a.ctx, active)
		}

	case key.Matches(msg, keys.More):
		a.captions.Toggle(active)

	case key.Matches(msg, keys.Open):
		a.detail = active

	case key.Matches(msg, keys.Comments):
		a.applyPanel(panel.Command{Action: panel.Toggle, Target: panel.CommentsPanel})

	case key.Matches(msg, keys.User):
		a.applyPanel(panel.Command{Action: panel.Toggle, Target: panel.UserPanel})

	case key.Matches(msg, keys.Follow):
		cmds = append(cmds, a.user.ToggleFollow())

	case key.Matches(msg, keys.CommentDown):
		a.comments.Move(1)

	case key.Matches(msg, keys.CommentUp):
		a.comments.Move(-1)

	case key.Matches(msg, keys.LikeComment):
		cmds = append(cmds, a.comments.LikeSelected())

	case key.Matches(msg, keys.Compose):
		a.applyPanel(panel.Command{Action: panel.Show, Target: panel.CommentsPanel})
		cmds = append(cmds, a.openInput(modeCompose, "› ", "Add a comment..."))

	case key.Matches(msg, keys.Command):
		cmds = append(cmds, a.openInput(modeCommand, ":", "toggle:comments"))

	case key.Matches(msg, keys.Theme):
		if a.theme.Name == "dark" {
			a.setTheme(LightTheme())
		} else {
			a.setTheme(DarkTheme())
		}
	}

	cmd := a.batch(cmds...)
	return a, cmd
}

// handleInput routes keys to the comment or command line while it is open.
func (a App) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC:
		a.cancel()
		return a, tea.Quit

	case tea.KeyEsc:
		a.closeInput()

	case tea.KeyEnter:
		mode, value := a.mode, a.input.Value()
		a.closeInput()
		if mode == modeCompose {
			cmds = append(cmds, a.comments.Submit(value))
		} else {
			a.runCommand(value)
		}

	default:
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmd := a.batch(cmds...)
	return a, cmd
}

// handleMouse maps terminal mouse events onto pointer events. Only presses
// on a card's media box start a gesture; the caption row toggles "See more".
func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMouse, Comp: "ui", Msg: msg.String()})
	}

	var cmds []tea.Cmd
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		a.scroll = a.geo.clamp(a.scroll-wheelRows, a.ctrl.Len())
		cmds = append(cmds, a.observe())

	case msg.Button == tea.MouseButtonWheelDown:
		a.scroll = a.geo.clamp(a.scroll+wheelRows, a.ctrl.Len())
		cmds = append(cmds, a.observe())

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if a.detail != "" || a.debug {
			break
		}
		id, z := a.hitTest(msg.X, msg.Y)
		switch z {
		case zoneMedia:
			a.pressed = id
			res := a.ctrl.Pointer(a.ctx, id, feed.PointerDown)
			cmds = append(cmds, a.afterGesture(id, res))
		case zoneCaption:
			a.captions.Toggle(id)
		}

	case msg.Action == tea.MouseActionMotion:
		if a.pressed == "" {
			break
		}
		if id, z := a.hitTest(msg.X, msg.Y); id != a.pressed || z != zoneMedia {
			res := a.ctrl.Pointer(a.ctx, a.pressed, feed.PointerLeave)
			cmds = append(cmds, a.afterGesture(a.pressed, res))
			a.pressed = ""
		}

	case msg.Action == tea.MouseActionRelease:
		if a.pressed == "" {
			break
		}
		res := a.ctrl.Pointer(a.ctx, a.pressed, feed.PointerUp)
		cmds = append(cmds, a.afterGesture(a.pressed, res))
		a.pressed = ""
	}

	cmd := a.batch(cmds...)
	return a, cmd
}

// batch collects panel fetches queued by controller callbacks and picks up
// navigation requests.
func (a *App) batch(cmds ...tea.Cmd) tea.Cmd {
	cmds = append(cmds, a.host.flush()...)
	if id := a.host.takeOpened(); id != "" {
		a.detail = id
	}
	return tea.Batch(cmds...)
}

// loadMore starts a feed fetch unless one is in flight or the feed ended.
func (a App) loadMore() tea.Cmd {
	offset, ok := a.ctrl.BeginLoad()
	if !ok {
		return nil
	}
	src, ctx := a.src, a.ctx
	return func() tea.Msg {
		page, err := src.FetchFeed(ctx, offset)
		return FeedLoaded{Offset: offset, Page: page, Err: err}
	}
}

// observe reports changed intersection ratios and runs both load triggers.
func (a *App) observe() tea.Cmd {
	if !a.ready {
		return nil
	}
	cards := a.ctrl.Cards()
	var entries []feed.Intersection
	for i, c := range cards {
		r := a.geo.ratio(i, a.scroll)
		if prev, seen := a.ratios[c.ID]; seen && prev == r {
			continue
		}
		a.ratios[c.ID] = r
		entries = append(entries, feed.Intersection{PostID: c.ID, Ratio: r})
	}

	load := len(entries) > 0 && a.ctrl.Intersect(entries)
	if a.ctrl.NearBottom(a.scroll, a.geo.viewRows, a.geo.totalRows(len(cards))) {
		load = true
	}
	if load {
		return a.loadMore()
	}
	return nil
}

// scrollFeed moves the active card and brings it to the top of the viewport.
func (a *App) scrollFeed(dir feed.Direction) tea.Cmd {
	idx, load := a.ctrl.ScrollFeed(dir)
	if idx >= 0 {
		a.scroll = a.geo.clamp(idx*a.geo.cardRows, a.ctrl.Len())
	}
	var cmds []tea.Cmd
	if load {
		cmds = append(cmds, a.loadMore())
	}
	cmds = append(cmds, a.observe())
	return tea.Batch(cmds...)
}

// afterGesture arms a tick for the card's gesture deadline.
func (a *App) afterGesture(postID string, res feed.Result) tea.Cmd {
	if res.Deadline.IsZero() {
		delete(a.scheduled, postID)
		return nil
	}
	if at, ok := a.scheduled[postID]; ok && at.Equal(res.Deadline) {
		return nil
	}
	a.scheduled[postID] = res.Deadline
	d := max(0, res.Deadline.Sub(a.clock.Now()))
	return a.tick(d, func(time.Time) tea.Msg { return GestureTick{PostID: postID} })
}

func (a App) schedulePlayback() tea.Cmd {
	return a.tick(playbackInterval, func(t time.Time) tea.Msg { return PlaybackTick{Time: t} })
}

func (a App) advancePlayback() {
	for _, c := range a.ctrl.Cards() {
		if p, ok := c.Player().(interface{ Advance(time.Duration) }); ok {
			p.Advance(playbackInterval)
		}
	}
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	a.layout.Resize(width)
	a.geo.viewRows = max(0, height-chromeRows)
	a.help.Width = width
	a.input.Width = max(10, width-4)
	a.relayout()
	clear(a.ratios)
}

// relayout re-measures captions after the feed column changed width.
func (a *App) relayout() {
	w, _, _ := a.columns()
	a.captions.SetWidth(max(0, w-captionReserve))
	a.scroll = a.geo.clamp(a.scroll, a.ctrl.Len())
}

func (a *App) applyPanel(cmd panel.Command) {
	a.layout.Apply(cmd)
	a.relayout()
}

func (a *App) runCommand(s string) {
	cmd, err := panel.ParseCommand(s)
	if err != nil {
		a.notice = err.Error()
		return
	}
	a.notice = ""
	a.applyPanel(cmd)
}

func (a *App) openInput(mode inputMode, prompt, placeholder string) tea.Cmd {
	a.mode = mode
	a.notice = ""
	a.input.Reset()
	a.input.Prompt = prompt
	a.input.Placeholder = placeholder
	return a.input.Focus()
}

func (a *App) closeInput() {
	a.mode = modeFeed
	a.input.Blur()
	a.input.Reset()
}

func (a *App) setTheme(t Theme) {
	a.theme = t
	a.spinner.Style = t.Active
}

func (a App) emit(e otel.Event) {
	if a.events != nil {
		a.events.Emit(e)
	}
}

// Controller returns the feed controller (for testing).
func (a App) Controller() *feed.Controller { return a.ctrl }

// Scroll returns the feed row at the top of the viewport (for testing).
func (a App) Scroll() int { return a.scroll }

// Detail returns the post shown in the detail overlay, or "".
func (a App) Detail() string { return a.detail }

// Layout returns the panel layout (for testing).
func (a App) Layout() *panel.Layout { return a.layout }
