package ui

// Card rows outside the media box: header, actions, spacer.
const cardChrome = 3

const (
	minCardRows     = 8
	minMediaRows    = 3
	defaultCardRows = 12
	sidePanelWidth  = 40
	wheelRows       = 3

	// Distance from the bottom edge, in rows, that starts a fallback load.
	defaultNearBottomRows = 8
)

// geometry maps the card list onto terminal rows. Cards are stacked at a
// fixed height; the scroll position is the feed row at the top of the
// viewport.
type geometry struct {
	cardRows int
	viewRows int
}

func newGeometry(cardRows int) geometry {
	if cardRows <= 0 {
		cardRows = defaultCardRows
	}
	return geometry{cardRows: max(cardRows, minCardRows)}
}

func (g geometry) totalRows(n int) int { return n * g.cardRows }

func (g geometry) maxScroll(n int) int {
	return max(0, g.totalRows(n)-g.viewRows)
}

func (g geometry) clamp(scroll, n int) int {
	return max(0, min(scroll, g.maxScroll(n)))
}

// ratio is the visible fraction of card i at the given scroll position.
func (g geometry) ratio(i, scroll int) float64 {
	top := i * g.cardRows
	visible := min(top+g.cardRows, scroll+g.viewRows) - max(top, scroll)
	if visible <= 0 {
		return 0
	}
	return float64(visible) / float64(g.cardRows)
}

// hit maps a viewport row to a card index and the row inside that card.
func (g geometry) hit(scroll, y, n int) (idx, row int, ok bool) {
	if y < 0 || y >= g.viewRows {
		return 0, 0, false
	}
	abs := scroll + y
	idx = abs / g.cardRows
	if idx >= n {
		return 0, 0, false
	}
	return idx, abs % g.cardRows, true
}

// split divides a card's rows between the media box and the caption.
func (g geometry) split(captionLines int) (media, caption int) {
	caption = max(1, min(captionLines, g.cardRows-cardChrome-minMediaRows))
	return g.cardRows - cardChrome - caption, caption
}
