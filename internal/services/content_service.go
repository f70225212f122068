package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"github.com/anonto42/threadboard/backend/internal/repositories"
)

// ContentService owns posts and comments and every rule over them:
// creation, listing, upvoting, secret-key gated edits and cascading deletes.
//
// Every operation is one or more independent store round trips. Upvote is a
// read-modify-write, so concurrent upvotes of the same post can lose updates.
// DeletePost removes comments and then the post with no transaction between
// the two steps.
type ContentService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	logger   *slog.Logger
	now      func() time.Time
	newToken func() models.AuthorToken
}

// Option configures a ContentService.
type Option func(*ContentService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ContentService) { s.now = now }
}

// WithTokenSource replaces the author token generator.
func WithTokenSource(newToken func() models.AuthorToken) Option {
	return func(s *ContentService) { s.newToken = newToken }
}

// NewContentService creates a ContentService. A nil logger means slog.Default().
func NewContentService(posts repositories.PostRepository, comments repositories.CommentRepository, logger *slog.Logger, opts ...Option) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ContentService{
		posts:    posts,
		comments: comments,
		logger:   logger.With("component", "content"),
		now:      time.Now,
		newToken: models.NewAuthorToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// secretMatches is plain, case-sensitive string equality. A post created
// without a secret key accepts any key.
func secretMatches(stored, given string) bool {
	return stored == "" || stored == given
}

// CreatePost validates the title, stamps a fresh author token and stores the post.
func (s *ContentService) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("create post: %w: title is required", ErrValidation)
	}

	post := &models.Post{
		Title:     title,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Upvotes:   0,
		CreatedAt: s.now().UTC(),
		UserID:    s.newToken(),
		SecretKey: req.SecretKey,
		Flags:     models.NewFlags(req.Flags...),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeError("create post", err)
	}

	s.logger.InfoContext(ctx, "post created", "post_id", post.ID, "flags", post.Flags.Strings())
	return post, nil
}

// ListPosts returns every post, descending by sortBy. An empty sortBy means
// newest first.
func (s *ContentService) ListPosts(ctx context.Context, sortBy models.SortField) ([]models.Post, error) {
	sortBy, err := models.ParseSortField(string(sortBy))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w: %w", ErrValidation, err)
	}

	posts, err := s.posts.ListPosts(ctx, sortBy)
	if err != nil {
		return nil, storeError("list posts", err)
	}
	return posts, nil
}

// GetPost looks up a post by id.
func (s *ContentService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeError("get post", err)
	}
	return post, nil
}

// Upvote reads the counter and writes it back incremented by one.
func (s *ContentService) Upvote(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeError("upvote", err)
	}

	post.Upvotes++
	if err := s.posts.SetUpvotes(ctx, id, post.Upvotes); err != nil {
		return nil, storeError("upvote", err)
	}
	return post, nil
}

// VerifySecretKey checks a key against a post without revealing the stored one.
func (s *ContentService) VerifySecretKey(ctx context.Context, id, secretKey string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return storeError("verify secret key", err)
	}
	if !secretMatches(post.SecretKey, secretKey) {
		return fmt.Errorf("verify secret key: %w", ErrUnauthorized)
	}
	return nil
}

// UpdatePost overwrites the provided fields when secretKey matches.
// id, created_at, user_id, secret_key and upvotes never change here.
func (s *ContentService) UpdatePost(ctx context.Context, id, secretKey string, fields models.PostUpdate) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeError("update post", err)
	}
	if !secretMatches(post.SecretKey, secretKey) {
		s.logger.WarnContext(ctx, "update rejected: secret key mismatch", "post_id", id)
		return nil, fmt.Errorf("update post: %w", ErrUnauthorized)
	}

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, fmt.Errorf("update post: %w: title must not be blank", ErrValidation)
		}
		fields.Title = &title
	}
	if fields.Flags != nil {
		flags := models.NewFlags(*fields.Flags...)
		fields.Flags = &flags
	}
	if fields.Empty() {
		return post, nil
	}

	updated, err := s.posts.UpdatePost(ctx, id, fields)
	if err != nil {
		return nil, storeError("update post", err)
	}
	return updated, nil
}

// DeletePost removes a post and its comments when secretKey matches.
//
// Comments go first. If that step fails the post is deleted anyway and the
// orphaned comments are only logged. If the post delete fails, ErrStore is
// returned and nothing is rolled back.
func (s *ContentService) DeletePost(ctx context.Context, id, secretKey string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return storeError("delete post", err)
	}
	if !secretMatches(post.SecretKey, secretKey) {
		s.logger.WarnContext(ctx, "delete rejected: secret key mismatch", "post_id", id)
		return fmt.Errorf("delete post: %w", ErrUnauthorized)
	}

	removed, err := s.comments.DeleteCommentsByPostID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete comments, continuing with post",
			"post_id", id, "deleted", removed, "error", err)
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return storeError("delete post", err)
	}

	s.logger.InfoContext(ctx, "post deleted", "post_id", id, "comments_deleted", removed)
	return nil
}

// ListComments returns the thread of a post, oldest first. A missing post
// simply has no comments.
func (s *ContentService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, storeError("list comments", err)
	}
	return comments, nil
}

// CommentsForPosts returns the comments of every given post, in no particular order.
func (s *ContentService) CommentsForPosts(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	comments, err := s.comments.GetCommentsByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, storeError("list comments", err)
	}
	return comments, nil
}

// AddComment appends a comment to a post's thread. Blank content is ignored:
// nothing is written and both return values are nil.
func (s *ContentService) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, storeError("add comment", err)
	}

	comment := &models.Comment{
		PostID:    postID,
		Content:   content,
		CreatedAt: s.now().UTC(),
		UserID:    s.newToken(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, storeError("add comment", err)
	}
	return comment, nil
}
