package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/abelbrown/shortfeed/internal/panel"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Simulated clip length used for the progress bar. Videos loop.
const clipLength = 15 * time.Second

type zone int

const (
	zoneNone zone = iota
	zoneHeader
	zoneMedia
	zoneCaption
	zoneActions
)

// columns returns the widths of the feed, comments and profile columns. The
// feed is always the leftmost column.
func (a App) columns() (content, comments, user int) {
	vis := a.layout.Visible()
	if a.layout.Mobile() {
		switch {
		case vis.Comments:
			return 0, a.width, 0
		case vis.User:
			return 0, 0, a.width
		default:
			return a.width, 0, 0
		}
	}
	if vis.Comments {
		comments = sidePanelWidth
	}
	if vis.User {
		user = sidePanelWidth
	}
	return max(0, a.width-comments-user), comments, user
}

// hitTest maps a screen cell to the card under it and the part of the card.
func (a App) hitTest(x, y int) (string, zone) {
	w, _, _ := a.columns()
	if x < 0 || x >= w {
		return "", zoneNone
	}
	cards := a.ctrl.Cards()
	idx, row, ok := a.geo.hit(a.scroll, y-1, len(cards))
	if !ok {
		return "", zoneNone
	}
	card := cards[idx]
	media, caption := a.geo.split(a.captionLines(card, w))
	switch {
	case row == 0:
		return card.ID, zoneHeader
	case row <= media:
		return card.ID, zoneMedia
	case row <= media+caption:
		return card.ID, zoneCaption
	case row == media+caption+1:
		return card.ID, zoneActions
	}
	return card.ID, zoneNone
}

// captionLines is the number of rows a card's caption needs at width w.
func (a App) captionLines(c *feed.Card, w int) int {
	if !a.captions.Expanded(c.ID) {
		return 1
	}
	return len(a.wrapCaption(c, w))
}

func (a App) wrapCaption(c *feed.Card, w int) []string {
	text := c.Caption + " " + a.captions.Label(c.ID)
	return strings.Split(lipgloss.NewStyle().Width(max(1, w)).Render(text), "\n")
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var body string
	if a.debug {
		body = lipgloss.Place(a.width, a.geo.viewRows, lipgloss.Center, lipgloss.Center,
			debugOverlay(a.ring, a.theme, a.width, a.geo.viewRows))
	} else {
		body = a.renderBody()
	}
	body = lipgloss.NewStyle().Height(a.geo.viewRows).MaxHeight(a.geo.viewRows).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderStatusBar())
}

func (a App) renderHeader() string {
	st := a.ctrl.State()
	left := fmt.Sprintf("shortfeed │ %d posts", a.ctrl.Len())
	if i := a.ctrl.IndexOf(st.ActivePostID); i >= 0 {
		left += fmt.Sprintf(" │ %d/%d", i+1, a.ctrl.Len())
	}

	right := ""
	switch {
	case st.Loading:
		right = a.spinner.View() + " Loading"
	case !st.HasMore:
		right = "end of feed"
	}

	gap := max(1, a.width-runewidth.StringWidth(left)-lipgloss.Width(right)-2)
	return a.theme.Header.Width(a.width).Render(fitLine(left+strings.Repeat(" ", gap)+right, a.width-2))
}

func (a App) renderStatusBar() string {
	var content string
	switch {
	case a.debug:
		content = "[DEBUG]  ?:close"
	case a.mode != modeFeed:
		content = a.input.View()
	case a.notice != "":
		content = a.theme.Notice.Render(a.notice)
	default:
		content = a.help.ShortHelpView(keys.ShortHelp())
	}
	return a.theme.StatusBar.Width(a.width).Render(fitLine(content, a.width-2))
}

func (a App) renderBody() string {
	h := a.geo.viewRows
	feedW, commentsW, userW := a.columns()
	vis := a.layout.Visible()

	var cols []string
	if vis.Content && feedW > 0 {
		var col string
		if a.detail != "" {
			col = a.renderDetail(feedW, h)
		} else {
			col = a.renderFeed(feedW, h)
		}
		cols = append(cols, fitBlock(col, feedW))
	}
	if vis.Comments && commentsW > 0 {
		cols = append(cols, a.comments.View(commentsW, h, a.theme.Panel))
	}
	if vis.User && userW > 0 {
		cols = append(cols, a.user.View(userW, h, a.theme.Panel))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// renderFeed draws the card rows visible at the current scroll position.
func (a App) renderFeed(w, h int) string {
	cards := a.ctrl.Cards()
	if len(cards) == 0 {
		msg := "No posts yet."
		if a.ctrl.State().Loading {
			msg = a.spinner.View() + " Loading feed..."
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, a.theme.Muted.Render(msg))
	}

	active := a.ctrl.State().ActivePostID
	now := a.clock.Now()
	first := a.scroll / a.geo.cardRows

	var lines []string
	for i := first; i < len(cards) && len(lines) < h+a.geo.cardRows; i++ {
		lines = append(lines, a.renderCard(cards[i], cards[i].ID == active, w, now)...)
	}
	skip := min(a.scroll-first*a.geo.cardRows, len(lines))
	lines = lines[skip:]
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

// renderCard returns exactly cardRows lines for one post.
func (a App) renderCard(c *feed.Card, active bool, w int, now time.Time) []string {
	media, captionRows := a.geo.split(a.captionLines(c, w))
	lines := make([]string, 0, a.geo.cardRows)

	head := fmt.Sprintf("@%s · %s", c.UserID, panel.TimeAgo(c.CreatedAt, now))
	headStyle := a.theme.Muted
	if active {
		head = "▍" + head
		headStyle = a.theme.Active
	}
	lines = append(lines, headStyle.Render(runewidth.Truncate(head, w, "…")))
	lines = append(lines, a.renderMedia(c, active, w, media, now)...)

	if a.captions.Expanded(c.ID) {
		wrapped := a.wrapCaption(c, w)
		for i := 0; i < captionRows; i++ {
			line := ""
			if i < len(wrapped) {
				line = wrapped[i]
			}
			lines = append(lines, a.theme.Text.Render(line))
		}
	} else {
		caption := a.theme.Text.Render(a.captions.Render(c.ID, c.Caption))
		if label := a.captions.Label(c.ID); label != "" {
			caption += " " + a.theme.Link.Render(label)
		}
		lines = append(lines, caption)
	}

	heart := "♡"
	if c.Hearting(now) {
		heart = a.theme.Heart.Render("♥")
	}
	lines = append(lines, fmt.Sprintf("%s %d   ✎ %d", heart, c.LikesCount, c.CommentsCount), "")
	return lines
}

// renderMedia draws the media box: a play state and progress bar for
// videos, a placeholder for images, and the heart burst after a like.
func (a App) renderMedia(c *feed.Card, active bool, w, rows int, now time.Time) []string {
	inner := max(1, w-4)
	var body []string

	if c.Hearting(now) {
		body = append(body, a.theme.Heart.Render("♥ ♥ ♥"))
	}
	if p := c.Player(); p != nil {
		state := "▶ playing"
		if p.Paused() {
			state = "❚❚ paused"
		}
		if p.Rate() > feed.NormalRate {
			state += fmt.Sprintf("  %gx", p.Rate())
		}
		body = append(body, state)
		if pos, ok := p.(interface{ Position() time.Duration }); ok {
			body = append(body, a.theme.Progress.Render(progressBar(pos.Position(), inner)))
		}
	} else {
		body = append(body, "▣ image")
	}
	body = append(body, a.theme.Muted.Render(runewidth.Truncate(c.MediaPath, inner, "…")))

	if len(body) > rows-2 {
		body = body[:max(0, rows-2)]
	}
	box := a.theme.Media
	if active {
		box = a.theme.ActiveMedia
	}
	out := box.Width(max(0, w-2)).Height(max(0, rows-2)).Render(strings.Join(body, "\n"))
	return strings.Split(out, "\n")
}

// progressBar renders the loop position of a clip as a bar of width w.
func progressBar(pos time.Duration, w int) string {
	if w <= 0 {
		return ""
	}
	filled := int(float64(pos%clipLength) / float64(clipLength) * float64(w))
	return strings.Repeat("━", filled) + strings.Repeat("─", w-filled)
}

// renderDetail draws the post opened by enter or an image tap.
func (a App) renderDetail(w, h int) string {
	card, ok := a.ctrl.Card(a.detail)
	if !ok {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, a.theme.Muted.Render("Post not found."))
	}
	inner := max(10, w-8)
	lines := []string{
		a.theme.Active.Render("Post " + card.ID),
		a.theme.Muted.Render(fmt.Sprintf("@%s · %s", card.UserID, card.CreatedAt.Local().Format("02 Jan 2006 15:04"))),
		"",
		lipgloss.NewStyle().Width(inner).Render(card.Caption),
		"",
		fmt.Sprintf("%s  %s", card.MediaType, runewidth.Truncate(card.MediaPath, inner, "…")),
		fmt.Sprintf("♥ %d   ✎ %d", card.LikesCount, card.CommentsCount),
		"",
		a.theme.Muted.Render("esc to close"),
	}
	box := a.theme.Detail.Width(max(0, w-4)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

// fitLine truncates or pads a styled line to exactly w cells.
func fitLine(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	return s + strings.Repeat(" ", max(0, w-ansi.StringWidth(s)))
}

// fitBlock applies fitLine to every line so the block is exactly w wide.
func fitBlock(s string, w int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = fitLine(l, w)
	}
	return strings.Join(lines, "\n")
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
