// Package store declares the persistence abstraction the analytics core
// consumes (spec.md §6: "The core consumes a persistence abstraction and
// emits structured result objects"). internal/repository/mongo provides the
// production implementation; internal/store/memory provides an in-memory
// one for tests that exercise the core's invariants without a live
// database.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
)

// SnapshotStore persists snapshots and answers delta queries (spec.md §4.1).
type SnapshotStore interface {
	// Record appends a snapshot, refreshing the post's latest cumulative
	// counters and LastSnapshotAt. Idempotent on an exact (post, t, values)
	// duplicate.
	Record(ctx context.Context, postID primitive.ObjectID, metrics model.Metrics, at time.Time, importRef uuid.UUID) error

	// DeltaPerPost returns, for each post owned by creator, the delta over
	// [t0, t1) per the s0/s1 at-or-before rule in spec.md §4.1.
	DeltaPerPost(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) ([]model.PostDelta, error)

	// DeltaPerCategory sums DeltaPerPost into a per-category aggregate.
	DeltaPerCategory(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (map[string]model.CategoryDelta, error)
}

// DailyRollup is one calendar day's aggregated activity for a creator,
// consumed by BaselineBuilder instead of re-aggregating raw snapshots.
type DailyRollup struct {
	Date        time.Time // truncated to UTC midnight
	NewSubs      int
	Revenue      float64 // day's amounts summed as recorded, without currency conversion; for averaging only, reports use decimal.Decimal
	DeltaViews   int64
}

// RollupStore answers BaselineBuilder's daily-aggregate queries.
type RollupStore interface {
	DailyRollups(ctx context.Context, creatorID primitive.ObjectID, from, to time.Time) ([]DailyRollup, error)
}

// FanStore persists and queries Fan acquisition events.
type FanStore interface {
	CountAcquired(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (int, error)
	ListAcquired(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) ([]model.Fan, error)
	ListUnattributed(ctx context.Context, creatorID primitive.ObjectID) ([]model.Fan, error)
	ListByCategory(ctx context.Context, creatorID primitive.ObjectID, category string, t0, t1 time.Time) ([]model.Fan, error)
	Save(ctx context.Context, fan *model.Fan) error
}

// RevenueStore sums monetisation events over a window.
type RevenueStore interface {
	SumAmount(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (amountMinorUnits int64, currency string, err error)
}

// ConfounderStore queries declared confounder events.
type ConfounderStore interface {
	ListOverlapping(ctx context.Context, creatorID primitive.ObjectID, wStart, wEnd time.Time) ([]model.ConfounderEvent, error)
}

// CreatorStore reads Creator configuration.
type CreatorStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Creator, error)
}

// AgencyStore reads Agency-level configuration overrides — the second tier
// of the creator-then-agency-then-default resolution chain.
//
// Named GetAgencyByID rather than GetByID so a single concrete store can
// implement both CreatorStore and AgencyStore without a method-name
// collision, mirroring PostStore.GetPostByID.
type AgencyStore interface {
	GetAgencyByID(ctx context.Context, id primitive.ObjectID) (*model.Agency, error)
}

// PostStore reads post metadata (category, posted_at) needed to label
// deltas and to compute recent posting cadence for the weekly plan.
//
// Named GetPostByID rather than GetByID so that a single concrete store can
// implement both CreatorStore and PostStore without a method-name collision.
type PostStore interface {
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.SocialPost, error)
	CountByCategorySince(ctx context.Context, creatorID primitive.ObjectID, category string, since time.Time) (int, error)
}
