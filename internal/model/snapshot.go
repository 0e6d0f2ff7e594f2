package model

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostSnapshot is an observation of a post's cumulative counters at a
// specific wall-clock moment. Snapshots are append-only and, for a given
// post, ordered by SnapshotAt — never mutated once written. Counter values
// are not checked for monotonicity; a regression yields a delta clamped to 0.
type PostSnapshot struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	CreatorID  primitive.ObjectID `bson:"creator_id" json:"creator_id"` // denormalised for index efficiency
	SnapshotAt time.Time          `bson:"snapshot_at" json:"snapshot_at"`
	Values     Metrics            `bson:"values" json:"values"`

	// ImportRef identifies the import batch this snapshot came from. It
	// originates outside the persistence layer (a CSV export run), so it
	// is a UUID rather than an ObjectID.
	ImportRef uuid.UUID `bson:"import_ref,omitempty" json:"import_ref,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// PostDelta is SnapshotStore.delta_per_post's per-post record.
type PostDelta struct {
	PostID   primitive.ObjectID
	Delta    Metrics
	PostedAt time.Time
	Category string
}

// CategoryDelta is one entry of SnapshotStore.delta_per_category's result.
type CategoryDelta struct {
	Category       string
	ViewsDelta     int64
	LikesDelta     int64
	PostsWithViews int
	PostIDs        []primitive.ObjectID
}
