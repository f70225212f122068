package repositories

import (
	"context"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	// CreateComment inserts comment and sets comment.ID to the store-assigned id.
	CreateComment(ctx context.Context, comment *models.Comment) error
	// GetCommentsByPostID returns the thread of a post, oldest first.
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error)
	// DeleteCommentsByPostID removes the thread of a post and reports how many rows went.
	DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error)
}

// commentRow is the comments table
type commentRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	PostID    string    `gorm:"size:36;not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UserID    string    `gorm:"index"`
}

func (commentRow) TableName() string { return "comments" }

// BeforeCreate assigns the row id so the store, not the caller, owns it.
func (r *commentRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r commentRow) toModel() models.Comment {
	return models.Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UserID:    models.AuthorToken(r.UserID),
	}
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	row := commentRow{
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UserID:    string(comment.UserID),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	comment.ID = row.ID
	return nil
}

// GetCommentsByPostID retrieves all comments for a specific post from PostgreSQL
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	var rows []commentRow
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return commentRowsToModels(rows), nil
}

// GetCommentsByPostIDs retrieves the comments of several posts at once
func (r *PostgresCommentRepository) GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}
	var rows []commentRow
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return commentRowsToModels(rows), nil
}

// DeleteCommentsByPostID deletes every comment of a post from PostgreSQL
func (r *PostgresCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&commentRow{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func commentRowsToModels(rows []commentRow) []models.Comment {
	comments := make([]models.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toModel()
	}
	return comments
}
