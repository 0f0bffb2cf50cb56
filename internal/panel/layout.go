package panel

import (
	"fmt"
	"strings"
)

// DefaultMobileWidth is the terminal width at or below which the layout
// switches to one panel at a time.
const DefaultMobileWidth = 120

// Action is what a panel command does.
type Action int

const (
	Toggle Action = iota
	Show
	Hide
)

// Target is the panel a command applies to.
type Target int

const (
	Content Target = iota
	CommentsPanel
	UserPanel
)

func (t Target) String() string {
	switch t {
	case Content:
		return "content"
	case CommentsPanel:
		return "comments"
	case UserPanel:
		return "user"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Command is a parsed panel command such as "toggle:comments".
type Command struct {
	Action Action
	Target Target
}

// ParseCommand parses "<action>:<panel>" or a bare "<panel>", which toggles.
func ParseCommand(s string) (Command, error) {
	action, target, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	if !found {
		action, target = "toggle", action
	}

	var cmd Command
	switch action {
	case "toggle":
		cmd.Action = Toggle
	case "show":
		cmd.Action = Show
	case "hide":
		cmd.Action = Hide
	default:
		return Command{}, fmt.Errorf("unknown panel action %q", action)
	}
	switch target {
	case "content", "feed":
		cmd.Target = Content
	case "comments":
		cmd.Target = CommentsPanel
	case "user", "profile":
		cmd.Target = UserPanel
	default:
		return Command{}, fmt.Errorf("unknown panel %q", target)
	}
	return cmd, nil
}

// Layout tracks which panels are open. Wide terminals always show the feed
// and toggle each side panel independently. Narrow terminals show exactly
// one of feed, comments, or profile.
type Layout struct {
	MobileWidth int

	width    int
	mobile   bool
	sized    bool
	comments bool
	user     bool
	active   Target // mobile only
}

// NewLayout returns a layout with both side panels hidden.
func NewLayout(mobileWidth int) *Layout {
	if mobileWidth <= 0 {
		mobileWidth = DefaultMobileWidth
	}
	return &Layout{MobileWidth: mobileWidth}
}

// Resize applies a new terminal width. Crossing the breakpoint resets the
// panels to their initial state for the new mode.
func (l *Layout) Resize(width int) {
	l.width = width
	mobile := width <= l.MobileWidth
	if l.sized && mobile == l.mobile {
		return
	}
	l.sized = true
	l.mobile = mobile
	l.comments, l.user = false, false
	l.active = Content
}

// Mobile reports whether the narrow layout is in effect.
func (l *Layout) Mobile() bool { return l.mobile }

// Apply executes a panel command.
func (l *Layout) Apply(cmd Command) {
	if l.mobile {
		switch {
		case cmd.Target == Content:
			l.active = Content
		case cmd.Action == Hide:
			l.active = Content
		case cmd.Action == Toggle && l.active == cmd.Target:
			l.active = Content
		default:
			l.active = cmd.Target
		}
		return
	}

	var open *bool
	switch cmd.Target {
	case CommentsPanel:
		open = &l.comments
	case UserPanel:
		open = &l.user
	default:
		return
	}
	switch cmd.Action {
	case Toggle:
		*open = !*open
	case Show:
		*open = true
	case Hide:
		*open = false
	}
}

// Visibility says which panels are drawn.
type Visibility struct {
	Content  bool
	Comments bool
	User     bool
}

// Visible returns the panels to draw for the current mode and state.
func (l *Layout) Visible() Visibility {
	if l.mobile {
		return Visibility{
			Content:  l.active == Content,
			Comments: l.active == CommentsPanel,
			User:     l.active == UserPanel,
		}
	}
	return Visibility{Content: true, Comments: l.comments, User: l.user}
}
