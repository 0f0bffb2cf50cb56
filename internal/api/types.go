package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an identifier the server may encode as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Time accepts RFC 3339 timestamps as well as naive ISO timestamps, which
// are taken as UTC. Unparseable values decode to the zero time.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// Comment is one comment on a post.
type Comment struct {
	ID             ID     `json:"id"`
	UserID         ID     `json:"user_id"`
	Author         string `json:"author"`
	Text           string `json:"text"`
	LegacyText     string `json:"comment_string,omitempty"`
	CreatedAt      Time   `json:"created_at"`
	Likes          int    `json:"likes"`
	ProfilePicture string `json:"profile_picture_path"`
}

// Body returns the comment text, falling back to the legacy field name.
func (c Comment) Body() string {
	if c.Text != "" {
		return c.Text
	}
	return c.LegacyText
}

// DisplayAuthor returns the author name or "Anonymous".
func (c Comment) DisplayAuthor() string {
	if c.Author == "" {
		return "Anonymous"
	}
	return c.Author
}

// Comments is the comment list for one post.
type Comments struct {
	PostID   ID        `json:"post_id"`
	Comments []Comment `json:"comments"`
}

// Thumbnail is a post preview on a user profile.
type Thumbnail struct {
	ID        ID     `json:"id"`
	MediaType string `json:"media_type"`
	MediaPath string `json:"media_path"`
}

// User is a profile as shown in the user panel.
type User struct {
	ID             ID          `json:"id"`
	Username       string      `json:"username"`
	Bio            string      `json:"bio"`
	FollowersCount int         `json:"followers_count"`
	PostsCount     int         `json:"posts_count"`
	Following      bool        `json:"following"`
	SessionUserID  ID          `json:"session_user_id"`
	ProfilePicture string      `json:"profile_picture_path"`
	Thumbnails     []Thumbnail `json:"posts_thumbnails"`
}

// IsSelf reports whether the profile belongs to the logged-in user.
func (u User) IsSelf() bool {
	return u.SessionUserID != "" && u.ID == u.SessionUserID
}

// feedPost is the wire form of a feed record.
type feedPost struct {
	ID            ID     `json:"id"`
	UserID        ID     `json:"user_id"`
	MediaType     string `json:"media_type"`
	MediaPath     string `json:"media_path"`
	Caption       string `json:"caption"`
	CreatedAt     Time   `json:"created_at"`
	LikesCount    int    `json:"likes_count"`
	CommentsCount int    `json:"comments_count"`
}

// feedResponse is the wire form of GET /api/feed. Pointers distinguish
// missing keys from zero values.
type feedResponse struct {
	Posts      *[]feedPost `json:"posts"`
	BatchSize  int         `json:"batch_size"`
	HasMore    bool        `json:"has_more"`
	NextOffset *int        `json:"next_offset"`
}
