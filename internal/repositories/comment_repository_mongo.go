package repositories

import (
	"context"
	"time"

	"github.com/anonto42/threadboard/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PostID    string             `bson:"post_id"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
	UserID    string             `bson:"user_id"`
}

func (d commentDocument) toModel() models.Comment {
	return models.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.PostID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UserID:    models.AuthorToken(d.UserID),
	}
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	doc := commentDocument{
		ID:        primitive.NewObjectID(),
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UserID:    string(comment.UserID),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	comment.ID = doc.ID.Hex()
	return nil
}

func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"post_id": postID}, findOptions)
}

func (r *MongoCommentRepository) GetCommentsByPostIDs(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}
	return r.find(ctx, bson.M{"post_id": bson.M{"$in": postIDs}}, options.Find())
}

func (r *MongoCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoCommentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []commentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	comments := make([]models.Comment, len(docs))
	for i, d := range docs {
		comments[i] = d.toModel()
	}
	return comments, nil
}
