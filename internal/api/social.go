package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// MaxCommentLen is the longest comment the server accepts, in characters.
const MaxCommentLen = 500

var (
	ErrEmptyComment   = errors.New("cannot post empty comment")
	ErrCommentTooLong = errors.New("too long (500 max)")
)

// ValidateComment trims text and checks it against the posting rules.
func ValidateComment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > MaxCommentLen {
		return "", ErrCommentTooLong
	}
	return text, nil
}

// FetchComments loads the comments on a post.
func (c *Client) FetchComments(ctx context.Context, postID string) (Comments, error) {
	var out Comments
	if err := c.do(ctx, http.MethodGet, "/api/comments/"+escape(postID), nil, &out); err != nil {
		return Comments{}, err
	}
	if out.PostID == "" {
		return Comments{}, ErrMalformed
	}
	return out, nil
}

// PostComment adds a comment to a post and returns the stored comment.
func (c *Client) PostComment(ctx context.Context, postID, text string) (Comment, error) {
	text, err := ValidateComment(text)
	if err != nil {
		return Comment{}, err
	}
	var out struct {
		Comment *Comment `json:"comment"`
	}
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/api/comments/"+escape(postID), body, &out); err != nil {
		return Comment{}, err
	}
	if out.Comment == nil {
		return Comment{}, ErrMalformed
	}
	return *out.Comment, nil
}

// LikeComment likes a comment. When the server reports the new like count it
// is returned with known=true.
func (c *Client) LikeComment(ctx context.Context, postID, commentID string) (likes int, known bool, err error) {
	var out struct {
		Likes *int `json:"likes"`
	}
	path := "/api/post/" + escape(postID) + "/comment/" + escape(commentID)
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &out); err != nil {
		if errors.Is(err, ErrMalformed) {
			// Stored, but the body carried no usable count.
			return 0, false, nil
		}
		return 0, false, err
	}
	if out.Likes == nil {
		return 0, false, nil
	}
	return *out.Likes, true, nil
}

// FetchUser loads a user profile.
func (c *Client) FetchUser(ctx context.Context, userID string) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/user/"+escape(userID), nil, &out); err != nil {
		return User{}, err
	}
	if out.ID == "" {
		return User{}, ErrMalformed
	}
	return out, nil
}

// Follow follows a user and returns their new follower count.
func (c *Client) Follow(ctx context.Context, userID string) (int, error) {
	return c.follow(ctx, "/follow/", userID)
}

// Unfollow unfollows a user and returns their new follower count.
func (c *Client) Unfollow(ctx context.Context, userID string) (int, error) {
	return c.follow(ctx, "/unfollow/", userID)
}

func (c *Client) follow(ctx context.Context, prefix, userID string) (int, error) {
	var out struct {
		FollowersCount int `json:"followers_count"`
	}
	if err := c.do(ctx, http.MethodPost, prefix+escape(userID), struct{}{}, &out); err != nil {
		return 0, err
	}
	return out.FollowersCount, nil
}
