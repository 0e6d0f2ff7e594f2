package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rev-saas-api/internal/apperr"
	"rev-saas-api/internal/model"
)

// SnapshotRepository persists PostSnapshot documents and answers the
// delta queries SnapshotStore promises (spec.md §4.1). It implements
// store.SnapshotStore.
type SnapshotRepository struct {
	snapshots *mongo.Collection
	posts     *mongo.Collection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: db.Collection("post_snapshots"),
		posts:     db.Collection("posts"),
	}
}

// Record appends a snapshot and refreshes the owning post's latest
// counters. Implements store.SnapshotStore.
func (r *SnapshotRepository) Record(ctx context.Context, postID primitive.ObjectID, metrics model.Metrics, at time.Time, importRef uuid.UUID) error {
	if metrics.Negative() {
		return apperr.InvalidMetrics("snapshot metrics must not be negative")
	}

	var post model.SocialPost
	if err := r.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.InvalidMetrics("post does not exist")
		}
		return apperr.PersistenceUnavailable("loading post for snapshot", err)
	}

	// Idempotent duplicate: identical (post, t, values) already recorded.
	var existing model.PostSnapshot
	err := r.snapshots.FindOne(ctx, bson.M{"post_id": postID, "snapshot_at": at, "values": metrics}).Decode(&existing)
	if err == nil {
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return apperr.PersistenceUnavailable("checking duplicate snapshot", err)
	}

	snap := model.PostSnapshot{
		ID:         primitive.NewObjectID(),
		PostID:     postID,
		CreatorID:  post.CreatorID,
		SnapshotAt: at,
		Values:     metrics,
		ImportRef:  importRef,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.snapshots.InsertOne(ctx, snap); err != nil {
		return apperr.PersistenceUnavailable("inserting snapshot", err)
	}

	if !post.LastSnapshotAt.After(at) {
		_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
			"$set": bson.M{"latest": metrics, "last_snapshot_at": at},
		})
		if err != nil {
			return apperr.PersistenceUnavailable("refreshing post latest counters", err)
		}
	}

	return nil
}

// latestAtOrBefore returns the latest snapshot for post with snapshot_at
// <= t, or (zero Metrics, false) if none exists.
func (r *SnapshotRepository) latestAtOrBefore(ctx context.Context, postID primitive.ObjectID, t time.Time) (model.Metrics, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "snapshot_at", Value: -1}})
	var snap model.PostSnapshot
	err := r.snapshots.FindOne(ctx, bson.M{"post_id": postID, "snapshot_at": bson.M{"$lte": t}}, opts).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return model.Metrics{}, false, nil
	}
	if err != nil {
		return model.Metrics{}, false, err
	}
	return snap.Values, true, nil
}

// DeltaPerPost implements store.SnapshotStore.
func (r *SnapshotRepository) DeltaPerPost(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) ([]model.PostDelta, error) {
	cursor, err := r.posts.Find(ctx, bson.M{"creator_id": creatorID})
	if err != nil {
		return nil, apperr.PersistenceUnavailable("listing posts", err)
	}
	defer cursor.Close(ctx)

	var posts []model.SocialPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, apperr.PersistenceUnavailable("decoding posts", err)
	}

	var out []model.PostDelta
	for _, post := range posts {
		s1, ok1, err := r.latestAtOrBefore(ctx, post.ID, t1)
		if err != nil {
			return nil, apperr.PersistenceUnavailable("querying snapshot at t1", err)
		}
		if !ok1 {
			continue
		}
		s0, ok0, err := r.latestAtOrBefore(ctx, post.ID, t0)
		if err != nil {
			return nil, apperr.PersistenceUnavailable("querying snapshot at t0", err)
		}
		if !ok0 {
			s0 = model.Metrics{}
		}
		out = append(out, model.PostDelta{
			PostID:   post.ID,
			Delta:    s1.Sub(s0),
			PostedAt: post.PostedAt,
			Category: post.Category,
		})
	}
	return out, nil
}

// DeltaPerCategory implements store.SnapshotStore.
func (r *SnapshotRepository) DeltaPerCategory(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (map[string]model.CategoryDelta, error) {
	deltas, err := r.DeltaPerPost(ctx, creatorID, t0, t1)
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.CategoryDelta)
	for _, d := range deltas {
		cat := d.Category
		if cat == "" {
			cat = model.CategoryOther
		}
		cd := out[cat]
		cd.Category = cat
		cd.ViewsDelta += d.Delta.Views
		cd.LikesDelta += d.Delta.Likes
		if d.Delta.Views > 0 {
			cd.PostsWithViews++
		}
		cd.PostIDs = append(cd.PostIDs, d.PostID)
		out[cat] = cd
	}
	return out, nil
}
