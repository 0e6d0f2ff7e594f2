package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rev-saas-api/internal/store"
)

// RollupRepository answers BaselineBuilder's daily-aggregate queries by
// running two aggregation pipelines (new subs, revenue), computing
// delta-views from the raw snapshots in Go, and merging them by calendar day. It implements store.RollupStore.
type RollupRepository struct {
	fans      *mongo.Collection
	revenue   *mongo.Collection
	snapshots *mongo.Collection
}

// NewRollupRepository creates a new RollupRepository.
func NewRollupRepository(db *mongo.Database) *RollupRepository {
	return &RollupRepository{
		fans:      db.Collection("fans"),
		revenue:   db.Collection("revenue_events"),
		snapshots: db.Collection("post_snapshots"),
	}
}

type dayCount struct {
	Day   time.Time `bson:"_id"`
	Count int       `bson:"count"`
}

type daySum struct {
	Day string  `bson:"_id"`
	Sum float64 `bson:"sum"`
}

type snapshotValueRow struct {
	PostID     primitive.ObjectID `bson:"post_id"`
	SnapshotAt time.Time          `bson:"snapshot_at"`
	Values     struct {
		Views int64 `bson:"views"`
	} `bson:"values"`
}

// DailyRollups implements store.RollupStore. Revenue is summed as a
// float64 average input only — BaselineBuilder uses it to compute
// rev_per_day as a display/confidence signal, never as the authoritative
// monetary total (the revenue repository's SumAmount retains decimal
// precision for that).
func (r *RollupRepository) DailyRollups(ctx context.Context, creatorID primitive.ObjectID, from, to time.Time) ([]store.DailyRollup, error) {
	byDay := make(map[string]*store.DailyRollup)
	ensure := func(key string, day time.Time) *store.DailyRollup {
		rr, ok := byDay[key]
		if !ok {
			rr = &store.DailyRollup{Date: day}
			byDay[key] = rr
		}
		return rr
	}

	subsPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"creator_id":  creatorID,
			"acquired_at": bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateTrunc": bson.M{"date": "$acquired_at", "unit": "day"}},
			"count": bson.M{"$sum": 1},
		}}},
	}
	subsCursor, err := r.fans.Aggregate(ctx, subsPipeline)
	if err != nil {
		return nil, err
	}
	var subsRows []dayCount
	if err := subsCursor.All(ctx, &subsRows); err != nil {
		return nil, err
	}
	for _, row := range subsRows {
		day := row.Day.UTC()
		key := day.Format("2006-01-02")
		ensure(key, day).NewSubs = row.Count
	}

	revenuePipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"creator_id": creatorID,
			"event_at":   bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"amount_float": bson.M{"$toDouble": "$amount"},
			"day":          bson.M{"$dateTrunc": bson.M{"date": "$event_at", "unit": "day"}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$day"}},
			"sum": bson.M{"$sum": "$amount_float"},
		}}},
	}
	revCursor, err := r.revenue.Aggregate(ctx, revenuePipeline)
	if err != nil {
		return nil, err
	}
	var revRows []daySum
	if err := revCursor.All(ctx, &revRows); err != nil {
		return nil, err
	}
	for _, row := range revRows {
		day, err := time.Parse("2006-01-02", row.Day)
		if err != nil {
			continue
		}
		ensure(row.Day, day).Revenue = row.Sum
	}

	// Delta-views per day requires the same at-or-before snapshot logic as
	// SnapshotStore; compute it one day at a time rather than in an
	// aggregation pipeline, since the comparison spans post boundaries.
	snapCursor, err := r.snapshots.Find(ctx, bson.M{
		"creator_id":  creatorID,
		"snapshot_at": bson.M{"$lte": to},
	})
	if err != nil {
		return nil, err
	}
	defer snapCursor.Close(ctx)

	var snaps []snapshotValueRow
	if err := snapCursor.All(ctx, &snaps); err != nil {
		return nil, err
	}

	byPost := make(map[primitive.ObjectID][]snapshotValueRow)
	for _, s := range snaps {
		byPost[s.PostID] = append(byPost[s.PostID], s)
	}

	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		dayKey := day.Format("2006-01-02")
		next := day.AddDate(0, 0, 1)
		var deltaViews int64
		for _, postSnaps := range byPost {
			v0, ok0 := viewsAtOrBefore(postSnaps, day)
			v1, ok1 := viewsAtOrBefore(postSnaps, next)
			if !ok1 {
				continue
			}
			if !ok0 {
				v0 = 0
			}
			if d := v1 - v0; d > 0 {
				deltaViews += d
			}
		}
		if deltaViews > 0 {
			ensure(dayKey, day).DeltaViews = deltaViews
		}
	}

	out := make([]store.DailyRollup, 0, len(byDay))
	for _, rr := range byDay {
		out = append(out, *rr)
	}
	return out, nil
}

func viewsAtOrBefore(snaps []snapshotValueRow, t time.Time) (int64, bool) {
	var best *int64
	var bestAt time.Time
	for i := range snaps {
		if snaps[i].SnapshotAt.After(t) {
			continue
		}
		if best == nil || snaps[i].SnapshotAt.After(bestAt) {
			v := snaps[i].Values.Views
			best = &v
			bestAt = snaps[i].SnapshotAt
		}
	}
	if best == nil {
		return 0, false
	}
	return *best, true
}
