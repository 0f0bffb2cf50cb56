// Package panel holds the side panels that follow the feed's active post:
// comments for the post and a profile of its author. Both panels receive
// active-post notifications from the feed controller, fetch in the background
// as tea commands, and drop responses that arrive for a post or user that is
// no longer current.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/shortfeed/internal/api"
	"github.com/abelbrown/shortfeed/internal/logging"
	"github.com/abelbrown/shortfeed/internal/otel"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CommentsAPI is the subset of the API client used by the comments panel.
type CommentsAPI interface {
	FetchComments(ctx context.Context, postID string) (api.Comments, error)
	PostComment(ctx context.Context, postID, text string) (api.Comment, error)
	LikeComment(ctx context.Context, postID, commentID string) (int, bool, error)
}

// CommentsLoaded carries the result of a comments fetch.
type CommentsLoaded struct {
	PostID   string
	Comments []api.Comment
	Err      error
}

// CommentPosted carries the result of submitting a comment.
type CommentPosted struct {
	PostID  string
	Comment api.Comment
	Err     error
}

// CommentLiked carries the result of liking a comment.
type CommentLiked struct {
	PostID    string
	CommentID string
	Likes     int
	Known     bool
	Err       error
}

// LoadStatus is the fetch state of a panel.
type LoadStatus int

const (
	StatusEmpty LoadStatus = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

type commentItem struct {
	api.Comment
	liked bool
}

// Comments is the comments panel for the active post.
type Comments struct {
	api     CommentsAPI
	events  *otel.Logger
	timeout time.Duration
	now     func() time.Time

	current string
	status  LoadStatus
	items   []commentItem
	cursor  int
	notice  string
	posting bool
	queued  tea.Cmd
}

// NewComments creates an empty comments panel.
func NewComments(c CommentsAPI, events *otel.Logger) *Comments {
	return &Comments{
		api:     c,
		events:  events,
		timeout: 15 * time.Second,
		now:     time.Now,
	}
}

// NotifyActivePost switches the panel to postID. Repeats of the current post
// are ignored. The fetch is queued; collect it with Flush.
func (c *Comments) NotifyActivePost(postID string) {
	if postID == "" || postID == c.current {
		return
	}
	c.current = postID
	c.status = StatusLoading
	c.items = nil
	c.cursor = 0
	c.notice = ""
	c.queued = c.load(postID)
}

// Flush returns and clears the queued fetch command.
func (c *Comments) Flush() tea.Cmd {
	cmd := c.queued
	c.queued = nil
	return cmd
}

// PostID returns the post the panel currently shows.
func (c *Comments) PostID() string { return c.current }

// Status returns the fetch state.
func (c *Comments) Status() LoadStatus { return c.status }

// Len returns the number of comments shown.
func (c *Comments) Len() int { return len(c.items) }

// Comment returns the i-th shown comment and whether the session liked it.
func (c *Comments) Comment(i int) (api.Comment, bool) {
	if i < 0 || i >= len(c.items) {
		return api.Comment{}, false
	}
	return c.items[i].Comment, c.items[i].liked
}

// Notice returns the status line shown under the comment box.
func (c *Comments) Notice() string { return c.notice }

func (c *Comments) load(postID string) tea.Cmd {
	client, timeout := c.api, c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := client.FetchComments(ctx, postID)
		if err != nil {
			return CommentsLoaded{PostID: postID, Err: err}
		}
		return CommentsLoaded{PostID: string(res.PostID), Comments: res.Comments}
	}
}

// ApplyLoaded installs a fetch result. It reports false when the result was
// discarded as stale.
func (c *Comments) ApplyLoaded(msg CommentsLoaded) bool {
	if msg.PostID != c.current {
		logging.Debug("Discarding stale comments", "post", msg.PostID, "current", c.current)
		c.emit(otel.Event{Kind: otel.KindPanelStale, Comp: "comments", Source: msg.PostID})
		return false
	}
	if msg.Err != nil {
		logging.Error("Comments load failed", "post", msg.PostID, "err", msg.Err)
		c.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindPanelError, Comp: "comments", Source: msg.PostID, Err: msg.Err.Error()})
		c.status = StatusFailed
		c.items = nil
		return true
	}
	c.status = StatusLoaded
	c.items = make([]commentItem, len(msg.Comments))
	for i, cm := range msg.Comments {
		c.items[i] = commentItem{Comment: cm}
	}
	c.cursor = 0
	c.emit(otel.Event{Kind: otel.KindPanelLoad, Comp: "comments", Source: msg.PostID, Count: len(msg.Comments)})
	return true
}

// Move moves the comment cursor by delta, clamped to the list.
func (c *Comments) Move(delta int) {
	c.cursor = max(0, min(c.cursor+delta, len(c.items)-1))
}

// Cursor returns the selected comment index.
func (c *Comments) Cursor() int { return c.cursor }

// Submit validates text and posts it to the current post.
func (c *Comments) Submit(text string) tea.Cmd {
	if c.current == "" {
		c.notice = "Select a post first"
		return nil
	}
	if c.posting {
		return nil
	}
	text, err := api.ValidateComment(text)
	if err != nil {
		c.notice = capitalize(err.Error())
		return nil
	}
	c.posting = true
	c.notice = "Posting..."

	client, timeout, postID := c.api, c.timeout, c.current
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		cm, err := client.PostComment(ctx, postID, text)
		return CommentPosted{PostID: postID, Comment: cm, Err: err}
	}
}

// ApplyPosted installs a submitted comment. It reports whether the comment
// was stored, so the host can bump the card's comment count.
func (c *Comments) ApplyPosted(msg CommentPosted) bool {
	c.posting = false
	if msg.Err != nil {
		logging.Error("Posting comment failed", "post", msg.PostID, "err", msg.Err)
		var se *api.StatusError
		switch {
		case errors.As(msg.Err, &se) && se.Msg != "":
			c.notice = se.Msg
		case errors.Is(msg.Err, api.ErrUnauthorized):
			c.notice = "Log in to comment"
		default:
			c.notice = "Failed"
		}
		return false
	}
	c.notice = "Posted"
	if msg.PostID == c.current {
		c.items = append([]commentItem{{Comment: msg.Comment}}, c.items...)
		c.status = StatusLoaded
		c.cursor = 0
	}
	return true
}

// LikeSelected likes the comment under the cursor with an optimistic bump.
// Comments without an id are liked locally only.
func (c *Comments) LikeSelected() tea.Cmd {
	if c.current == "" {
		logging.Warn("Cannot like comment: no active post selected")
		return nil
	}
	if c.cursor < 0 || c.cursor >= len(c.items) {
		return nil
	}
	it := &c.items[c.cursor]
	if it.liked {
		return nil
	}
	it.liked = true
	it.Likes++
	if it.ID == "" {
		logging.Warn("Comment id missing; performing optimistic local like")
		return nil
	}

	client, timeout := c.api, c.timeout
	postID, commentID := c.current, string(it.ID)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		likes, known, err := client.LikeComment(ctx, postID, commentID)
		return CommentLiked{PostID: postID, CommentID: commentID, Likes: likes, Known: known, Err: err}
	}
}

// ApplyLiked reconciles a comment like. A failure reverts the optimistic
// bump; a reported count replaces it.
func (c *Comments) ApplyLiked(msg CommentLiked) {
	if msg.PostID != c.current {
		return
	}
	for i := range c.items {
		it := &c.items[i]
		if string(it.ID) != msg.CommentID {
			continue
		}
		switch {
		case msg.Err != nil:
			logging.Error("Failed to like comment", "comment", msg.CommentID, "err", msg.Err)
			it.liked = false
			it.Likes--
		case msg.Known:
			it.Likes = msg.Likes
		}
		return
	}
}

// View renders the panel into a box of the given size.
func (c *Comments) View(width, height int, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Title.Render("Comments"))
	b.WriteString("\n")

	switch c.status {
	case StatusEmpty:
		b.WriteString(st.Muted.Render("No post selected."))
	case StatusLoading:
		for i := 0; i < 3; i++ {
			b.WriteString(st.Skeleton.Render(strings.Repeat("░", max(0, width-6-i*4))))
			b.WriteString("\n")
		}
	case StatusFailed:
		b.WriteString(st.Muted.Render("Failed to load."))
	case StatusLoaded:
		if len(c.items) == 0 {
			b.WriteString(st.Muted.Render("No comments."))
			break
		}
		now := c.now()
		for i, it := range c.items {
			author := st.Author.Render(it.DisplayAuthor())
			meta := st.Muted.Render(fmt.Sprintf("%s  %d❤", TimeAgo(it.CreatedAt.Time, now), it.Likes))
			body := lipgloss.NewStyle().Width(max(1, width-4)).Render(it.Body())
			entry := lipgloss.JoinVertical(lipgloss.Left, author, body, meta)
			if i == c.cursor {
				entry = st.Selected.Render(entry)
			}
			b.WriteString(entry)
			b.WriteString("\n")
		}
	}

	if c.notice != "" {
		b.WriteString("\n")
		b.WriteString(st.Notice.Render(c.notice))
	}
	return st.Box.Width(max(0, width-2)).Height(max(0, height-2)).Render(b.String())
}

func (c *Comments) emit(e otel.Event) {
	if c.events != nil {
		c.events.Emit(e)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
