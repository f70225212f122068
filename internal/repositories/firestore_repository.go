package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/threadboard/backend/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore rejects "in" filters with more than 30 values.
const firestoreInLimit = 30

type firestorePost struct {
	Title     string    `firestore:"title"`
	Content   string    `firestore:"content"`
	ImageURL  string    `firestore:"image_url"`
	Upvotes   int       `firestore:"upvotes"`
	CreatedAt time.Time `firestore:"created_at"`
	UserID    string    `firestore:"user_id"`
	SecretKey string    `firestore:"secret_key"`
	Flags     []string  `firestore:"flags"`
	RepostID  *string   `firestore:"repost_id"`
}

func (d firestorePost) toModel(id string) models.Post {
	return models.Post{
		ID:        id,
		Title:     d.Title,
		Content:   d.Content,
		ImageURL:  d.ImageURL,
		Upvotes:   d.Upvotes,
		CreatedAt: d.CreatedAt,
		UserID:    models.AuthorToken(d.UserID),
		SecretKey: d.SecretKey,
		Flags:     models.FlagsFromStrings(d.Flags),
		RepostID:  d.RepostID,
	}
}

type firestoreComment struct {
	PostID    string    `firestore:"post_id"`
	Content   string    `firestore:"content"`
	CreatedAt time.Time `firestore:"created_at"`
	UserID    string    `firestore:"user_id"`
}

func (d firestoreComment) toModel(id string) models.Comment {
	return models.Comment{
		ID:        id,
		PostID:    d.PostID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UserID:    models.AuthorToken(d.UserID),
	}
}

// validDocID guards Collection.Doc, which cannot address empty or nested ids.
func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func isFirestoreNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// FirestorePostRepository implements PostRepository on Cloud Firestore
type FirestorePostRepository struct {
	client *firestore.Client
}

// NewFirestorePostRepository creates a new FirestorePostRepository
func NewFirestorePostRepository(client *firestore.Client) *FirestorePostRepository {
	return &FirestorePostRepository{client: client}
}

func (r *FirestorePostRepository) posts() *firestore.CollectionRef {
	return r.client.Collection("posts")
}

func (r *FirestorePostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	ref := r.posts().NewDoc()
	doc := firestorePost{
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Upvotes:   post.Upvotes,
		CreatedAt: post.CreatedAt,
		UserID:    string(post.UserID),
		SecretKey: post.SecretKey,
		Flags:     post.Flags.Strings(),
		RepostID:  post.RepostID,
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return err
	}
	post.ID = ref.ID
	return nil
}

func (r *FirestorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if !validDocID(id) {
		return nil, ErrNotFound
	}
	snap, err := r.posts().Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var doc firestorePost
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	post := doc.toModel(snap.Ref.ID)
	return &post, nil
}

// ListPosts relies on Firestore's implicit document-name ordering for ties.
func (r *FirestorePostRepository) ListPosts(ctx context.Context, sort models.SortField) ([]models.Post, error) {
	key, err := sortKey(sort)
	if err != nil {
		return nil, err
	}
	snaps, err := r.posts().OrderBy(key, firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestorePost
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		posts = append(posts, doc.toModel(snap.Ref.ID))
	}
	return posts, nil
}

func (r *FirestorePostRepository) UpdatePost(ctx context.Context, id string, fields models.PostUpdate) (*models.Post, error) {
	if !validDocID(id) {
		return nil, ErrNotFound
	}
	var updates []firestore.Update
	if fields.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *fields.Title})
	}
	if fields.Content != nil {
		updates = append(updates, firestore.Update{Path: "content", Value: *fields.Content})
	}
	if fields.ImageURL != nil {
		updates = append(updates, firestore.Update{Path: "image_url", Value: *fields.ImageURL})
	}
	if fields.Flags != nil {
		updates = append(updates, firestore.Update{Path: "flags", Value: fields.Flags.Strings()})
	}
	if len(updates) > 0 {
		// Update fails with NotFound when the document is missing.
		if _, err := r.posts().Doc(id).Update(ctx, updates); err != nil {
			if isFirestoreNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}
	return r.GetPostByID(ctx, id)
}

func (r *FirestorePostRepository) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	if !validDocID(id) {
		return ErrNotFound
	}
	_, err := r.posts().Doc(id).Update(ctx, []firestore.Update{{Path: "upvotes", Value: upvotes}})
	if err != nil && isFirestoreNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *FirestorePostRepository) DeletePost(ctx context.Context, id string) error {
	if !validDocID(id) {
		return ErrNotFound
	}
	_, err := r.posts().Doc(id).Delete(ctx, firestore.Exists)
	if err != nil && isFirestoreNotFound(err) {
		return ErrNotFound
	}
	return err
}

// FirestoreCommentRepository implements CommentRepository on Cloud Firestore
type FirestoreCommentRepository struct {
	client *firestore.Client
}

// NewFirestoreCommentRepository creates a new FirestoreCommentRepository
func NewFirestoreCommentRepository(client *firestore.Client) *FirestoreCommentRepository {
	return &FirestoreCommentRepository{client: client}
}

func (r *FirestoreCommentRepository) comments() *firestore.CollectionRef {
	return r.client.Collection("comments")
}

func (r *FirestoreCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	ref := r.comments().NewDoc()
	doc := firestoreComment{
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UserID:    string(comment.UserID),
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return err
	}
	comment.ID = ref.ID
	return nil
}

func (r *FirestoreCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	query := r.comments().Where("post_id", "==", postID).OrderBy("created_at", firestore.Asc)
	return collectComments(query.Documents(ctx))
}

func (r *FirestoreCommentRepository) GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	comments := []models.Comment{}
	for start := 0; start < len(postIDs); start += firestoreInLimit {
		end := min(start+firestoreInLimit, len(postIDs))
		batch, err := collectComments(r.comments().Where("post_id", "in", postIDs[start:end]).Documents(ctx))
		if err != nil {
			return nil, err
		}
		comments = append(comments, batch...)
	}
	return comments, nil
}

func (r *FirestoreCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error) {
	snaps, err := r.comments().Where("post_id", "==", postID).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	var deleted int64
	var errs []error
	for _, snap := range snaps {
		if _, err := snap.Ref.Delete(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

func collectComments(iter *firestore.DocumentIterator) ([]models.Comment, error) {
	snaps, err := iter.GetAll()
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreComment
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		comments = append(comments, doc.toModel(snap.Ref.ID))
	}
	return comments, nil
}
