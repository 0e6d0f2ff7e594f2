package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metrics is the set of cumulative counters tracked per post. Every field is
// the latest observed cumulative value (or, inside a PostSnapshot, the
// cumulative value as of that observation) — never a delta.
type Metrics struct {
	Views    int64 `bson:"views" json:"views"`
	Likes    int64 `bson:"likes" json:"likes"`
	Comments int64 `bson:"comments" json:"comments"`
	Shares   int64 `bson:"shares" json:"shares"`
	Saves    int64 `bson:"saves" json:"saves"`
}

// Negative reports whether any counter in m is negative.
func (m Metrics) Negative() bool {
	return m.Views < 0 || m.Likes < 0 || m.Comments < 0 || m.Shares < 0 || m.Saves < 0
}

// Sub returns max(0, m - other) component-wise — the clamped delta rule
// from SnapshotStore.delta_per_post.
func (m Metrics) Sub(other Metrics) Metrics {
	return Metrics{
		Views:    clampNonNegative(m.Views - other.Views),
		Likes:    clampNonNegative(m.Likes - other.Likes),
		Comments: clampNonNegative(m.Comments - other.Comments),
		Shares:   clampNonNegative(m.Shares - other.Shares),
		Saves:    clampNonNegative(m.Saves - other.Saves),
	}
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// SocialPost is a published piece of content.
type SocialPost struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Platform    string             `bson:"platform" json:"platform"`
	PostedAt    time.Time          `bson:"posted_at" json:"posted_at"`
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`

	// Latest observed cumulative counters, refreshed on every
	// SnapshotStore.Record call.
	Latest Metrics `bson:"latest" json:"latest"`
	LastSnapshotAt time.Time `bson:"last_snapshot_at,omitempty" json:"last_snapshot_at,omitempty"`

	Category     string `bson:"category" json:"category"`
	LabelSource  string `bson:"label_source" json:"label_source"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
