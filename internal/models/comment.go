package models

import "time"

// Comment represents a reply attached to exactly one post
type Comment struct {
	ID        string      `json:"id"`
	PostID    string      `json:"post_id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	UserID    AuthorToken `json:"user_id"`
}

// CreateCommentRequest defines the request body for creating a new comment.
// Blank content is accepted and ignored by the service.
type CreateCommentRequest struct {
	Content string `json:"content"`
}
