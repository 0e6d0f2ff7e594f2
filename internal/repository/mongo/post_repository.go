package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rev-saas-api/internal/model"
)

// PostRepository handles SocialPost data operations in MongoDB. It
// implements store.PostStore.
type PostRepository struct {
	collection *mongo.Collection
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		collection: db.Collection("posts"),
	}
}

// Create inserts a new post. It does not check for an existing post with
// the same creator+platform+URL; callers look one up with
// FindByCreatorAndURL first so that import re-runs do not duplicate posts.
func (r *PostRepository) Create(ctx context.Context, post *model.SocialPost) error {
	post.CreatedAt = time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

// GetPostByID retrieves a post by ID. Implements store.PostStore.
func (r *PostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.SocialPost, error) {
	var post model.SocialPost
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByCreatorAndURL looks up a post by its natural key, used by the
// import path to avoid creating duplicate posts across re-imports.
func (r *PostRepository) FindByCreatorAndURL(ctx context.Context, creatorID primitive.ObjectID, url string) (*model.SocialPost, error) {
	var post model.SocialPost
	err := r.collection.FindOne(ctx, bson.M{"creator_id": creatorID, "url": url}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// CountByCategorySince counts posts in a category published on or after
// since. Implements store.PostStore.
func (r *PostRepository) CountByCategorySince(ctx context.Context, creatorID primitive.ObjectID, category string, since time.Time) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"creator_id": creatorID,
		"category":   category,
		"posted_at":  bson.M{"$gte": since},
	})
	return int(count), err
}

// ListByCreator returns every post owned by a creator, most recent first.
func (r *PostRepository) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]*model.SocialPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"creator_id": creatorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []*model.SocialPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdateCategory applies a user confirmation/override to a post's label.
func (r *PostRepository) UpdateCategory(ctx context.Context, postID primitive.ObjectID, category, labelSource string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$set": bson.M{"category": category, "label_source": labelSource},
	})
	return err
}

