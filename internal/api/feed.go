package api

import (
	"context"
	"net/http"

	"github.com/abelbrown/shortfeed/internal/feed"
)

// FetchFeed loads one batch starting at offset.
func (c *Client) FetchFeed(ctx context.Context, offset int) (feed.Page, error) {
	var resp feedResponse
	if err := c.do(ctx, http.MethodGet, "/api/feed?offset="+itoa(offset), nil, &resp); err != nil {
		return feed.Page{}, err
	}
	if resp.Posts == nil {
		return feed.Page{}, ErrMalformed
	}

	posts := make([]feed.Post, 0, len(*resp.Posts))
	for _, p := range *resp.Posts {
		posts = append(posts, feed.Post{
			ID:            string(p.ID),
			UserID:        string(p.UserID),
			MediaType:     feed.ParseMediaType(p.MediaType),
			MediaPath:     c.MediaURL(p.MediaPath),
			Caption:       p.Caption,
			CreatedAt:     p.CreatedAt.Time,
			LikesCount:    p.LikesCount,
			CommentsCount: p.CommentsCount,
		})
	}

	next := offset + len(posts)
	if resp.NextOffset != nil {
		next = *resp.NextOffset
	}
	return feed.Page{
		Posts:      posts,
		BatchSize:  resp.BatchSize,
		HasMore:    resp.HasMore,
		NextOffset: next,
	}, nil
}

// Like records a like on a post. The response body is ignored.
func (c *Client) Like(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/api/posts/"+escape(postID)+"/like", struct{}{}, nil)
}
