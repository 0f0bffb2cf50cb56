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

// UserAPI is the subset of the API client used by the user panel.
type UserAPI interface {
	FetchUser(ctx context.Context, userID string) (api.User, error)
	Follow(ctx context.Context, userID string) (int, error)
	Unfollow(ctx context.Context, userID string) (int, error)
}

// UserLoaded carries the result of a profile fetch.
type UserLoaded struct {
	UserID string
	User   api.User
	Err    error
}

// FollowDone carries the result of a follow or unfollow.
type FollowDone struct {
	UserID    string
	Follow    bool
	Followers int
	Err       error
}

// User is the profile panel for the active post's author.
type User struct {
	api     UserAPI
	events  *otel.Logger
	timeout time.Duration

	current string
	user    *api.User
	loading bool
	busy    bool
	notice  string
	queued  tea.Cmd
}

// NewUser creates an empty user panel.
func NewUser(c UserAPI, events *otel.Logger) *User {
	return &User{api: c, events: events, timeout: 15 * time.Second}
}

// NotifyActiveUser switches the panel to userID. Repeats of the current user
// are ignored. The fetch is queued; collect it with Flush.
func (u *User) NotifyActiveUser(userID string) {
	if userID == "" || userID == u.current {
		return
	}
	u.current = userID
	u.clear()
	u.loading = true

	client, timeout := u.api, u.timeout
	u.queued = func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		usr, err := client.FetchUser(ctx, userID)
		return UserLoaded{UserID: userID, User: usr, Err: err}
	}
}

// Flush returns and clears the queued fetch command.
func (u *User) Flush() tea.Cmd {
	cmd := u.queued
	u.queued = nil
	return cmd
}

// UserID returns the user the panel currently follows.
func (u *User) UserID() string { return u.current }

// Profile returns the loaded profile, or nil.
func (u *User) Profile() *api.User { return u.user }

// Loading reports whether a fetch is outstanding for the current user.
func (u *User) Loading() bool { return u.loading }

// Notice returns the last follow error, if any.
func (u *User) Notice() string { return u.notice }

func (u *User) clear() {
	u.user = nil
	u.busy = false
	u.notice = ""
}

// ApplyLoaded installs a fetch result. A response whose id is not the
// current user is stale and dropped. A failed fetch for the current user
// clears the panel.
func (u *User) ApplyLoaded(msg UserLoaded) bool {
	if msg.Err != nil {
		if msg.UserID != u.current {
			return false
		}
		logging.Error("User load failed", "user", msg.UserID, "err", msg.Err)
		u.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindPanelError, Comp: "user", Source: msg.UserID, Err: msg.Err.Error()})
		u.clear()
		u.loading = false
		return true
	}
	if string(msg.User.ID) != u.current {
		logging.Debug("Discarding stale user", "user", msg.User.ID, "current", u.current)
		u.emit(otel.Event{Kind: otel.KindPanelStale, Comp: "user", Source: string(msg.User.ID)})
		return false
	}
	usr := msg.User
	u.user = &usr
	u.loading = false
	u.emit(otel.Event{Kind: otel.KindPanelLoad, Comp: "user", Source: u.current, Count: len(usr.Thumbnails)})
	return true
}

// CanFollow reports whether the follow toggle is shown.
func (u *User) CanFollow() bool {
	return u.user != nil && u.user.ID != "" && !u.user.IsSelf()
}

// ToggleFollow follows or unfollows the shown user.
func (u *User) ToggleFollow() tea.Cmd {
	if !u.CanFollow() || u.busy {
		return nil
	}
	u.busy = true
	u.notice = ""

	client, timeout := u.api, u.timeout
	id, follow := string(u.user.ID), !u.user.Following
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var (
			n   int
			err error
		)
		if follow {
			n, err = client.Follow(ctx, id)
		} else {
			n, err = client.Unfollow(ctx, id)
		}
		return FollowDone{UserID: id, Follow: follow, Followers: n, Err: err}
	}
}

// ApplyFollow installs a follow result for the shown user.
func (u *User) ApplyFollow(msg FollowDone) {
	if u.user == nil || string(u.user.ID) != msg.UserID {
		return
	}
	u.busy = false
	if msg.Err != nil {
		verb := "Follow"
		if !msg.Follow {
			verb = "Unfollow"
		}
		logging.Error(verb+" request failed", "user", msg.UserID, "err", msg.Err)
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			u.notice = "Log in to follow"
		}
		return
	}
	u.user.Following = msg.Follow
	u.user.FollowersCount = msg.Followers
}

// View renders the panel into a box of the given size.
func (u *User) View(width, height int, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Title.Render("Profile"))
	b.WriteString("\n")

	switch {
	case u.user == nil && u.loading:
		b.WriteString(st.Skeleton.Render(strings.Repeat("░", max(0, width-8))))
	case u.user == nil:
		b.WriteString(st.Muted.Render("—"))
	default:
		p := u.user
		name := p.Username
		if name == "" {
			name = "Unknown"
		}
		b.WriteString(st.Author.Render("@" + name))
		b.WriteString("\n")
		if p.Bio != "" {
			b.WriteString(lipgloss.NewStyle().Width(max(1, width-4)).Render(p.Bio))
			b.WriteString("\n")
		}
		b.WriteString(st.Muted.Render(fmt.Sprintf("Followers: %d   Posts: %d", p.FollowersCount, p.PostsCount)))
		b.WriteString("\n")
		if u.CanFollow() {
			label := "Follow"
			if p.Following {
				label = "Following"
			}
			b.WriteString(st.Button.Render(label))
			b.WriteString("\n")
		}
		if len(p.Thumbnails) > 0 {
			thumbs := make([]string, 0, len(p.Thumbnails))
			for _, t := range p.Thumbnails {
				glyph := "▣"
				if t.MediaType == "video" {
					glyph = "▶"
				}
				thumbs = append(thumbs, st.Thumb.Render(glyph))
			}
			b.WriteString(lipgloss.NewStyle().Width(max(1, width-4)).Render(strings.Join(thumbs, " ")))
		}
	}

	if u.notice != "" {
		b.WriteString("\n")
		b.WriteString(st.Notice.Render(u.notice))
	}
	return st.Box.Width(max(0, width-2)).Height(max(0, height-2)).Render(b.String())
}

func (u *User) emit(e otel.Event) {
	if u.events != nil {
		u.events.Emit(e)
	}
}
