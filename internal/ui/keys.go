package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Down        key.Binding
	Up          key.Binding
	Top         key.Binding
	Tap         key.Binding
	Like        key.Binding
	More        key.Binding
	Open        key.Binding
	Close       key.Binding
	Comments    key.Binding
	User        key.Binding
	Follow      key.Binding
	Compose     key.Binding
	CommentDown key.Binding
	CommentUp   key.Binding
	LikeComment key.Binding
	Command     key.Binding
	Theme       key.Binding
	Debug       key.Binding
	Quit        key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Tap, k.Like, k.Comments, k.User, k.Debug, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Top, k.Tap, k.Like, k.More, k.Open, k.Close},
		{k.Comments, k.User, k.Follow, k.Compose, k.CommentDown, k.CommentUp, k.LikeComment},
		{k.Command, k.Theme, k.Debug, k.Quit},
	}
}

var keys = keyMap{
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "scroll")),
	Up:          key.NewBinding(key.WithKeys("k", "up")),
	Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Tap:         key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "tap")),
	Like:        key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
	More:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "see more")),
	Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Comments:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
	User:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "profile")),
	Follow:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
	Compose:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "comment")),
	CommentDown: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next comment")),
	CommentUp:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev comment")),
	LikeComment: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "like comment")),
	Command:     key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "panel command")),
	Theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Debug:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
