package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// postRow is the posts table. Flags live in a text[] column.
type postRow struct {
	ID        string         `gorm:"primaryKey;size:36"`
	Title     string         `gorm:"not null"`
	Content   string         `gorm:"type:text"`
	ImageURL  string
	Upvotes   int            `gorm:"not null;default:0;index"`
	CreatedAt time.Time      `gorm:"index"`
	UserID    string         `gorm:"index"`
	SecretKey string
	Flags     pq.StringArray `gorm:"type:text[]"`
	RepostID  *string        `gorm:"size:36"`
}

func (postRow) TableName() string { return "posts" }

func (r *postRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r postRow) toModel() models.Post {
	return models.Post{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		Upvotes:   r.Upvotes,
		CreatedAt: r.CreatedAt,
		UserID:    models.AuthorToken(r.UserID),
		SecretKey: r.SecretKey,
		Flags:     models.FlagsFromStrings(r.Flags),
		RepostID:  r.RepostID,
	}
}

// AutoMigrate creates or updates the posts and comments tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&postRow{}, &commentRow{})
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post in PostgreSQL
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	row := postRow{
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Upvotes:   post.Upvotes,
		CreatedAt: post.CreatedAt,
		UserID:    string(post.UserID),
		SecretKey: post.SecretKey,
		Flags:     pq.StringArray(post.Flags.Strings()),
		RepostID:  post.RepostID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	post.ID = row.ID
	return nil
}

// GetPostByID retrieves a post by ID from PostgreSQL
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var row postRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	post := row.toModel()
	return &post, nil
}

// ListPosts retrieves all posts from PostgreSQL
func (r *PostgresPostRepository) ListPosts(ctx context.Context, sort models.SortField) ([]models.Post, error) {
	column, err := sortKey(sort)
	if err != nil {
		return nil, err
	}
	var rows []postRow
	err = r.db.WithContext(ctx).
		Order(column + " DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toModel()
	}
	return posts, nil
}

// UpdatePost updates the provided fields of an existing post in PostgreSQL
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, id string, fields models.PostUpdate) (*models.Post, error) {
	updates := map[string]interface{}{}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.Content != nil {
		updates["content"] = *fields.Content
	}
	if fields.ImageURL != nil {
		updates["image_url"] = *fields.ImageURL
	}
	if fields.Flags != nil {
		updates["flags"] = pq.StringArray(fields.Flags.Strings())
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&postRow{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetPostByID(ctx, id)
}

// SetUpvotes overwrites the upvote counter of a post
func (r *PostgresPostRepository) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	res := r.db.WithContext(ctx).Model(&postRow{}).Where("id = ?", id).Update("upvotes", upvotes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from PostgreSQL
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&postRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
