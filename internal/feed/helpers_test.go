package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// mockSource serves queued pages and records requested offsets.
type mockSource struct {
	mu      sync.Mutex
	pages   []Page
	errs    []error
	offsets []int
	gate    chan struct{} // when non-nil, FetchFeed blocks until closed
	entered chan struct{} // receives once per FetchFeed call
}

func (m *mockSource) FetchFeed(ctx context.Context, offset int) (Page, error) {
	m.mu.Lock()
	m.offsets = append(m.offsets, offset)
	gate, entered := m.gate, m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return Page{}, err
		}
	}
	if len(m.pages) == 0 {
		return Page{}, errors.New("no page queued")
	}
	p := m.pages[0]
	m.pages = m.pages[1:]
	return p, nil
}

func (m *mockSource) requests() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.offsets))
	copy(out, m.offsets)
	return out
}

// mockLiker counts like submissions.
type mockLiker struct {
	mu      sync.Mutex
	ids     []string
	ctxErrs []error // ctx.Err() seen by each request
	err     error
}

func (m *mockLiker) Like(ctx context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, postID)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return m.err
}

func (m *mockLiker) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}

// recNotifier records active-post notifications.
type recNotifier struct {
	posts []string
	users []string
}

func (r *recNotifier) NotifyActivePost(id string) { r.posts = append(r.posts, id) }
func (r *recNotifier) NotifyActiveUser(id string) { r.users = append(r.users, id) }

type recCaptions struct {
	batches [][]string
}

func (r *recCaptions) ProcessNewNodes(cards []*Card) {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	r.batches = append(r.batches, ids)
}

type recNavigator struct {
	opened []string
}

func (r *recNavigator) OpenPost(id string) { r.opened = append(r.opened, id) }

func syncSpawn(f func()) { f() }

// makePosts builds n posts with ids starting at first.
func makePosts(first, n int, media MediaType) []Post {
	posts := make([]Post, n)
	for i := range posts {
		id := first + i
		posts[i] = Post{
			ID:        fmt.Sprintf("p%d", id),
			UserID:    fmt.Sprintf("u%d", id%5),
			MediaType: media,
			MediaPath: fmt.Sprintf("/media/%d", id),
			Caption:   fmt.Sprintf("caption %d", id),
		}
	}
	return posts
}
