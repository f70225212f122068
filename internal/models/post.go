package models

import (
	"time"
)

// Post represents a forum post. SecretKey is never serialised; editors must
// re-enter it rather than read it back.
type Post struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"image_url,omitempty"`
	Upvotes   int         `json:"upvotes"`
	CreatedAt time.Time   `json:"created_at"`
	UserID    AuthorToken `json:"user_id"`
	SecretKey string      `json:"-"`
	Flags     Flags       `json:"flags"`
	RepostID  *string     `json:"repost_id,omitempty"` // kept for schema parity, no read path uses it
}

// PostUpdate lists the editable fields of a post. A nil field is left unchanged.
type PostUpdate struct {
	Title    *string
	Content  *string
	ImageURL *string
	Flags    *Flags
}

// Empty reports whether the update would not touch any field.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.ImageURL == nil && u.Flags == nil
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title     string `json:"title" validate:"notblank"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	SecretKey string `json:"secret_key"`
	Flags     []Flag `json:"flags"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// A blank title is rejected by the service, after the secret key check.
type UpdatePostRequest struct {
	SecretKey string  `json:"secret_key"`
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	ImageURL  *string `json:"image_url,omitempty"`
	Flags     *[]Flag `json:"flags,omitempty"`
}

// ToUpdate converts the request into the fields to overwrite.
func (r UpdatePostRequest) ToUpdate() PostUpdate {
	u := PostUpdate{
		Title:    r.Title,
		Content:  r.Content,
		ImageURL: r.ImageURL,
	}
	if r.Flags != nil {
		flags := NewFlags(*r.Flags...)
		u.Flags = &flags
	}
	return u
}

// SecretKeyRequest carries the secret for delete and verify calls
type SecretKeyRequest struct {
	SecretKey string `json:"secret_key"`
}
