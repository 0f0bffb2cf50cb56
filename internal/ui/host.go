package ui

import (
	"github.com/abelbrown/shortfeed/internal/panel"
	tea "github.com/charmbracelet/bubbletea"
)

// host receives controller callbacks. They arrive synchronously on the
// Update goroutine, so panel fetches are queued here and collected with
// flush once the controller call returns.
type host struct {
	comments *panel.Comments
	user     *panel.User
	opened   string
}

func (h *host) NotifyActivePost(postID string) { h.comments.NotifyActivePost(postID) }

func (h *host) NotifyActiveUser(userID string) { h.user.NotifyActiveUser(userID) }

func (h *host) OpenPost(postID string) { h.opened = postID }

// flush returns the queued panel fetches.
func (h *host) flush() []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := h.comments.Flush(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := h.user.Flush(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// takeOpened returns and clears the last navigation request.
func (h *host) takeOpened() string {
	id := h.opened
	h.opened = ""
	return id
}
