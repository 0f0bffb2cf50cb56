package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithHTTPClient(srv.Client()), WithRateLimit(0, 0))
}

func TestFetchFeed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/feed" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("offset"); got != "16" {
			t.Errorf("offset = %q, want 16", got)
		}
		if r.Header.Get("X-Request-ID") != "" {
			t.Error("GET should not carry a request id")
		}
		io.WriteString(w, `{
			"posts": [
				{"id": 17, "user_id": 4, "media_type": "video", "media_path": "/static/v.mp4",
				 "caption": "hi", "created_at": "2025-02-28T09:30:00", "likes_count": 3, "comments_count": 1},
				{"id": "18", "user_id": null, "media_type": "gif", "media_path": "https://cdn.example/x.png",
				 "caption": "", "created_at": "bogus", "likes_count": 0, "comments_count": 0}
			],
			"batch_size": 16, "has_more": true, "next_offset": 32
		}`)
	})

	page, err := c.FetchFeed(context.Background(), 16)
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	want := feed.Page{
		Posts: []feed.Post{
			{
				ID:            "17",
				UserID:        "4",
				MediaType:     feed.MediaVideo,
				MediaPath:     c.BaseURL() + "/static/v.mp4",
				Caption:       "hi",
				CreatedAt:     time.Date(2025, 2, 28, 9, 30, 0, 0, time.UTC),
				LikesCount:    3,
				CommentsCount: 1,
			},
			{ID: "18", MediaType: feed.MediaImage, MediaPath: "https://cdn.example/x.png"},
		},
		BatchSize:  16,
		HasMore:    true,
		NextOffset: 32,
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page (-want +got):\n%s", diff)
	}
}

func TestFetchFeedMissingNextOffset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"posts": [{"id": 1}, {"id": 2}], "has_more": false}`)
	})
	page, err := c.FetchFeed(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.NextOffset != 12 || page.HasMore {
		t.Errorf("page = %+v", page)
	}
}

func TestFetchFeedErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"server error", 503, `{"error":"down"}`, func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.Code == 503 && se.Msg == "down"
		}},
		{"unauthorized", 401, ``, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{"not json", 200, `<html>`, func(err error) bool { return errors.Is(err, ErrMalformed) }},
		{"missing posts", 200, `{"has_more": true}`, func(err error) bool { return errors.Is(err, ErrMalformed) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.FetchFeed(context.Background(), 0)
			if err == nil || !tt.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestLike(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/posts/42/like" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "{}" {
			t.Errorf("body = %q, want {}", b)
		}
		io.WriteString(w, `ok`)
	})
	if err := c.Like(context.Background(), "42"); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d", calls.Load())
	}
}

func TestComments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/comments/7":
			io.WriteString(w, `{"post_id": 7, "comments": [
				{"id": 1, "user_id": 2, "author": "rex", "text": "woof", "likes": 4, "created_at": "2025-01-02T03:04:05Z"},
				{"id": 2, "user_id": 3, "comment_string": "legacy"}
			]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/comments/7":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["text"] != "nice" {
				t.Errorf("text = %q", body["text"])
			}
			io.WriteString(w, `{"comment": {"id": 9, "user_id": 1, "author": "me", "text": "nice"}}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(404)
		}
	})
	ctx := context.Background()

	got, err := c.FetchComments(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if got.PostID != "7" || len(got.Comments) != 2 {
		t.Fatalf("comments = %+v", got)
	}
	if got.Comments[1].Body() != "legacy" || got.Comments[1].DisplayAuthor() != "Anonymous" {
		t.Errorf("legacy comment = %+v", got.Comments[1])
	}
	if got.Comments[0].Likes != 4 || got.Comments[0].CreatedAt.IsZero() {
		t.Errorf("first comment = %+v", got.Comments[0])
	}

	posted, err := c.PostComment(ctx, "7", "  nice  ")
	if err != nil {
		t.Fatal(err)
	}
	if posted.ID != "9" || posted.Body() != "nice" {
		t.Errorf("posted = %+v", posted)
	}
}

func TestValidateComment(t *testing.T) {
	if _, err := ValidateComment("   "); !errors.Is(err, ErrEmptyComment) {
		t.Errorf("blank: err = %v", err)
	}
	if _, err := ValidateComment(strings.Repeat("é", MaxCommentLen+1)); !errors.Is(err, ErrCommentTooLong) {
		t.Errorf("long: err = %v", err)
	}
	if got, err := ValidateComment(strings.Repeat("é", MaxCommentLen)); err != nil || got == "" {
		t.Errorf("max length rejected: %v", err)
	}
}

func TestPostCommentValidatesBeforeSending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	if _, err := c.PostComment(context.Background(), "1", ""); !errors.Is(err, ErrEmptyComment) {
		t.Errorf("err = %v", err)
	}
}

func TestLikeComment(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLikes int
		wantKnown bool
		wantErr   bool
	}{
		{"count returned", 200, `{"likes": 5}`, 5, true, false},
		{"no count", 200, `{}`, 0, false, false},
		{"empty body", 200, ``, 0, false, false},
		{"failure", 500, `{"error":"nope"}`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/post/3/comment/8" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			likes, known, err := c.LikeComment(context.Background(), "3", "8")
			if (err != nil) != tt.wantErr || likes != tt.wantLikes || known != tt.wantKnown {
				t.Errorf("LikeComment = (%d, %v, %v)", likes, known, err)
			}
		})
	}
}

func TestUserAndFollow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/5":
			io.WriteString(w, `{"id": 5, "username": "milo", "bio": "good boy", "followers_count": 10,
				"posts_count": 2, "following": false, "session_user_id": 1,
				"posts_thumbnails": [{"id": 3, "media_type": "video", "media_path": "/v.mp4"}]}`)
		case "/follow/5":
			io.WriteString(w, `{"followers_count": 11}`)
		case "/unfollow/5":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(404)
		}
	})
	ctx := context.Background()

	u, err := c.FetchUser(ctx, "5")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "milo" || u.IsSelf() || len(u.Thumbnails) != 1 || u.Thumbnails[0].ID != "3" {
		t.Errorf("user = %+v", u)
	}

	n, err := c.Follow(ctx, "5")
	if err != nil || n != 11 {
		t.Errorf("Follow = (%d, %v)", n, err)
	}
	if _, err := c.Unfollow(ctx, "5"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Unfollow err = %v, want ErrUnauthorized", err)
	}
	if _, err := c.FetchUser(ctx, "99"); err == nil {
		t.Error("404 should be an error")
	}
}

func TestUserIsSelf(t *testing.T) {
	if !(User{ID: "1", SessionUserID: "1"}).IsSelf() {
		t.Error("same id should be self")
	}
	if (User{ID: "1"}).IsSelf() {
		t.Error("anonymous session is never self")
	}
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"posts": []}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchFeed(ctx, 0); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestMediaURL(t *testing.T) {
	c := NewClient("http://host:8080/")
	tests := map[string]string{
		"":                  "",
		"/static/a.png":     "http://host:8080/static/a.png",
		"static/a.png":      "http://host:8080/static/a.png",
		"https://cdn/x.mp4": "https://cdn/x.mp4",
	}
	for in, want := range tests {
		if got := c.MediaURL(in); got != want {
			t.Errorf("MediaURL(%q) = %q, want %q", in, got, want)
		}
	}
}
