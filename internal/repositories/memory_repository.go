package repositories

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"

	"github.com/anonto42/threadboard/backend/internal/models"
)

type memoryPost struct {
	post models.Post
	seq  int64
}

type memoryComment struct {
	comment models.Comment
	seq     int64
}

// MemoryStore keeps posts and comments in process memory. It implements both
// PostRepository and CommentRepository and is used for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	seq      int64
	posts    map[string]memoryPost
	comments map[string]memoryComment
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:    make(map[string]memoryPost),
		comments: make(map[string]memoryComment),
	}
}

func (s *MemoryStore) nextID() (string, int64) {
	s.seq++
	return strconv.FormatInt(s.seq, 10), s.seq
}

func clonePost(p models.Post) models.Post {
	p.Flags = slices.Clone(p.Flags)
	if p.RepostID != nil {
		id := *p.RepostID
		p.RepostID = &id
	}
	return p
}

func (s *MemoryStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, seq := s.nextID()
	post.ID = id
	s.posts[id] = memoryPost{post: clonePost(*post), seq: seq}
	return nil
}

func (s *MemoryStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post := clonePost(p.post)
	return &post, nil
}

// ListPosts breaks ties by insertion order, newest first.
func (s *MemoryStore) ListPosts(ctx context.Context, field models.SortField) ([]models.Post, error) {
	if _, err := sortKey(field); err != nil {
		return nil, err
	}

	s.mu.RLock()
	rows := make([]memoryPost, 0, len(s.posts))
	for _, p := range s.posts {
		rows = append(rows, p)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch field {
		case models.SortByUpvotes:
			if a.post.Upvotes != b.post.Upvotes {
				return a.post.Upvotes > b.post.Upvotes
			}
		case models.SortByCreatedAt:
			if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
				return a.post.CreatedAt.After(b.post.CreatedAt)
			}
		}
		return a.seq > b.seq
	})

	posts := make([]models.Post, len(rows))
	for i, r := range rows {
		posts[i] = clonePost(r.post)
	}
	return posts, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, id string, fields models.PostUpdate) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if fields.Title != nil {
		p.post.Title = *fields.Title
	}
	if fields.Content != nil {
		p.post.Content = *fields.Content
	}
	if fields.ImageURL != nil {
		p.post.ImageURL = *fields.ImageURL
	}
	if fields.Flags != nil {
		p.post.Flags = slices.Clone(*fields.Flags)
	}
	s.posts[id] = p

	post := clonePost(p.post)
	return &post, nil
}

func (s *MemoryStore) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.post.Upvotes = upvotes
	s.posts[id] = p
	return nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, seq := s.nextID()
	comment.ID = id
	s.comments[id] = memoryComment{comment: *comment, seq: seq}
	return nil
}

func (s *MemoryStore) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.commentsWhere(func(c models.Comment) bool { return c.PostID == postID }), nil
}

func (s *MemoryStore) GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	return s.commentsWhere(func(c models.Comment) bool { return slices.Contains(postIDs, c.PostID) }), nil
}

func (s *MemoryStore) DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, c := range s.comments {
		if c.comment.PostID == postID {
			delete(s.comments, id)
			deleted++
		}
	}
	return deleted, nil
}

// commentsWhere returns matching comments oldest first, insertion order on ties.
func (s *MemoryStore) commentsWhere(match func(models.Comment) bool) []models.Comment {
	s.mu.RLock()
	rows := make([]memoryComment, 0)
	for _, c := range s.comments {
		if match(c.comment) {
			rows = append(rows, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.comment.CreatedAt.Equal(b.comment.CreatedAt) {
			return a.comment.CreatedAt.Before(b.comment.CreatedAt)
		}
		return a.seq < b.seq
	})

	comments := make([]models.Comment, len(rows))
	for i, r := range rows {
		comments[i] = r.comment
	}
	return comments
}
