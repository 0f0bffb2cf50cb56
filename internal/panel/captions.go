package panel

import (
	"strings"

	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/mattn/go-runewidth"
)

// Captions clamps post captions to a single line and tracks which cards
// have been expanded with "See more".
type Captions struct {
	width     int
	text      map[string]string
	truncated map[string]bool
	expanded  map[string]bool
}

// NewCaptions creates a caption clamp for the given line width.
func NewCaptions(width int) *Captions {
	return &Captions{
		width:     width,
		text:      make(map[string]string),
		truncated: make(map[string]bool),
		expanded:  make(map[string]bool),
	}
}

// ProcessNewNodes measures the captions of freshly appended cards.
func (c *Captions) ProcessNewNodes(cards []*feed.Card) {
	for _, card := range cards {
		c.text[card.ID] = singleLine(card.Caption)
		c.measure(card.ID)
	}
}

// SetWidth re-measures every caption against a new line width. Expansion
// state is reset for captions that now fit.
func (c *Captions) SetWidth(width int) {
	if width == c.width {
		return
	}
	c.width = width
	for id := range c.text {
		c.measure(id)
	}
}

// measure decides whether a caption needs the clamp. A zero width means
// layout is not known yet; the caption is measured on the next SetWidth.
func (c *Captions) measure(id string) {
	if c.width <= 0 {
		return
	}
	if runewidth.StringWidth(c.text[id]) > c.width {
		c.truncated[id] = true
		return
	}
	delete(c.truncated, id)
	delete(c.expanded, id)
}

// Truncated reports whether a card's caption overflows its line.
func (c *Captions) Truncated(id string) bool { return c.truncated[id] }

// Expanded reports whether a card's caption is shown in full.
func (c *Captions) Expanded(id string) bool { return c.expanded[id] }

// Toggle flips "See more"/"See less" on a truncated caption. It reports
// whether anything changed.
func (c *Captions) Toggle(id string) bool {
	if !c.truncated[id] {
		return false
	}
	c.expanded[id] = !c.expanded[id]
	return true
}

// Label returns the toggle label for a card, or "" when the caption fits.
func (c *Captions) Label(id string) string {
	switch {
	case !c.truncated[id]:
		return ""
	case c.expanded[id]:
		return "See less"
	default:
		return "See more"
	}
}

// Render returns the caption as it should be displayed: clamped with an
// ellipsis unless expanded.
func (c *Captions) Render(id, caption string) string {
	if c.expanded[id] || !c.truncated[id] || c.width <= 0 {
		return caption
	}
	return runewidth.Truncate(singleLine(caption), c.width, "…")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
