package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no row matches the given id.
var ErrNotFound = errors.New("record not found")

// ErrUnsupportedSort is returned by ListPosts for a sort field no store indexes.
var ErrUnsupportedSort = errors.New("unsupported sort field")

// sortKey maps a sort field onto the column or document key it orders by.
func sortKey(sort models.SortField) (string, error) {
	switch sort {
	case models.SortByCreatedAt:
		return "created_at", nil
	case models.SortByUpvotes:
		return "upvotes", nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedSort, sort)
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// CreatePost inserts post and sets post.ID to the store-assigned id.
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns every post, descending by the sort field.
	ListPosts(ctx context.Context, sort models.SortField) ([]models.Post, error)
	// UpdatePost overwrites only the non-nil fields and returns the stored row.
	UpdatePost(ctx context.Context, id string, fields models.PostUpdate) (*models.Post, error)
	SetUpvotes(ctx context.Context, id string, upvotes int) error
	DeletePost(ctx context.Context, id string) error
}

// postDocument is the BSON shape of a post
type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	ImageURL  string             `bson:"image_url,omitempty"`
	Upvotes   int                `bson:"upvotes"`
	CreatedAt time.Time          `bson:"created_at"`
	UserID    string             `bson:"user_id"`
	SecretKey string             `bson:"secret_key"`
	Flags     []string           `bson:"flags"`
	RepostID  *string            `bson:"repost_id,omitempty"`
}

func (d postDocument) toModel() models.Post {
	return models.Post{
		ID:        d.ID.Hex(),
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

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	doc := postDocument{
		ID:        primitive.NewObjectID(),
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
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	post.ID = doc.ID.Hex()
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot match any row.
		return nil, ErrNotFound
	}

	var doc postDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	post := doc.toModel()
	return &post, nil
}

// ListPosts retrieves all posts from MongoDB, newest _id first on ties
func (r *MongoPostRepository) ListPosts(ctx context.Context, sort models.SortField) ([]models.Post, error) {
	key, err := sortKey(sort)
	if err != nil {
		return nil, err
	}
	findOptions := options.Find().SetSort(bson.D{{Key: key, Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	posts := make([]models.Post, len(docs))
	for i, d := range docs {
		posts[i] = d.toModel()
	}
	return posts, nil
}

// UpdatePost updates the provided fields of an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, fields models.PostUpdate) (*models.Post, error) {
	if fields.Empty() {
		return r.GetPostByID(ctx, id)
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Content != nil {
		set["content"] = *fields.Content
	}
	if fields.ImageURL != nil {
		set["image_url"] = *fields.ImageURL
	}
	if fields.Flags != nil {
		set["flags"] = fields.Flags.Strings()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	post := doc.toModel()
	return &post, nil
}

// SetUpvotes overwrites the upvote counter of a post
func (r *MongoPostRepository) SetUpvotes(ctx context.Context, id string, upvotes int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"upvotes": upvotes}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
