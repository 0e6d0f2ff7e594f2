// Package memory is an in-memory implementation of internal/store's
// interfaces, used by the service-layer tests to exercise BaselineBuilder,
// AttributionEngine, ConfidenceScorer, and RecommendationEngine without a
// live MongoDB instance.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
	"rev-saas-api/internal/store"
)

// Store is a single in-memory backing for every store interface the core
// depends on. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	creators  map[primitive.ObjectID]*model.Creator
	agencies  map[primitive.ObjectID]*model.Agency
	posts     map[primitive.ObjectID]*model.SocialPost
	snapshots map[primitive.ObjectID][]model.PostSnapshot // postID -> ordered by SnapshotAt
	fans      map[primitive.ObjectID]*model.Fan
	revenue   []model.RevenueEvent
	confounders []model.ConfounderEvent
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		creators:  make(map[primitive.ObjectID]*model.Creator),
		agencies:  make(map[primitive.ObjectID]*model.Agency),
		posts:     make(map[primitive.ObjectID]*model.SocialPost),
		snapshots: make(map[primitive.ObjectID][]model.PostSnapshot),
		fans:      make(map[primitive.ObjectID]*model.Fan),
	}
}

// PutCreator seeds a creator.
func (s *Store) PutCreator(c *model.Creator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	s.creators[c.ID] = &cp
}

// PutAgency seeds an agency.
func (s *Store) PutAgency(a *model.Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	cp := *a
	s.agencies[a.ID] = &cp
}

// PutPost seeds a post.
func (s *Store) PutPost(p *model.SocialPost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	s.posts[p.ID] = &cp
}

// PutFan seeds a fan.
func (s *Store) PutFan(f *model.Fan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	cp := *f
	s.fans[f.ID] = &cp
}

// PutRevenueEvent seeds a revenue event.
func (s *Store) PutRevenueEvent(r model.RevenueEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.revenue = append(s.revenue, r)
}

// PutConfounder seeds a confounder event.
func (s *Store) PutConfounder(c model.ConfounderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.confounders = append(s.confounders, c)
}

// Record implements store.SnapshotStore.
func (s *Store) Record(ctx context.Context, postID primitive.ObjectID, metrics model.Metrics, at time.Time, importRef uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.snapshots[postID]
	for _, snap := range existing {
		if snap.SnapshotAt.Equal(at) && snap.Values == metrics {
			return nil // idempotent duplicate
		}
	}

	post := s.posts[postID]
	snap := model.PostSnapshot{
		ID:         primitive.NewObjectID(),
		PostID:     postID,
		SnapshotAt: at,
		Values:     metrics,
		ImportRef:  importRef,
		CreatedAt:  at,
	}
	if post != nil {
		snap.CreatorID = post.CreatorID
	}

	existing = append(existing, snap)
	sort.Slice(existing, func(i, j int) bool { return existing[i].SnapshotAt.Before(existing[j].SnapshotAt) })
	s.snapshots[postID] = existing

	if post != nil && (post.LastSnapshotAt.IsZero() || at.After(post.LastSnapshotAt)) {
		post.Latest = metrics
		post.LastSnapshotAt = at
	}
	return nil
}

// latestAtOrBefore returns the latest snapshot with SnapshotAt <= t, or
// (zero-Metrics, false) if none exists.
func latestAtOrBefore(snaps []model.PostSnapshot, t time.Time) (model.Metrics, bool) {
	var best *model.PostSnapshot
	for i := range snaps {
		if !snaps[i].SnapshotAt.After(t) {
			best = &snaps[i]
		} else {
			break
		}
	}
	if best == nil {
		return model.Metrics{}, false
	}
	return best.Values, true
}

// DeltaPerPost implements store.SnapshotStore.
func (s *Store) DeltaPerPost(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) ([]model.PostDelta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PostDelta
	for postID, post := range s.posts {
		if post.CreatorID != creatorID {
			continue
		}
		snaps := s.snapshots[postID]
		s1, ok1 := latestAtOrBefore(snaps, t1)
		if !ok1 {
			continue // no snapshot at or before t1: omit
		}
		s0, ok0 := latestAtOrBefore(snaps, t0)
		if !ok0 {
			s0 = model.Metrics{} // published after t0 with no s0: implicit zero
		}
		out = append(out, model.PostDelta{
			PostID:   postID,
			Delta:    s1.Sub(s0),
			PostedAt: post.PostedAt,
			Category: post.Category,
		})
	}
	return out, nil
}

// DeltaPerCategory implements store.SnapshotStore.
func (s *Store) DeltaPerCategory(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (map[string]model.CategoryDelta, error) {
	deltas, err := s.DeltaPerPost(ctx, creatorID, t0, t1)
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

// DailyRollups implements store.RollupStore by deriving daily aggregates
// directly from seeded fans/revenue/snapshots rather than precomputing a
// materialised rollup, which is appropriate for an in-memory test double.
func (s *Store) DailyRollups(ctx context.Context, creatorID primitive.ObjectID, from, to time.Time) ([]store.DailyRollup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[time.Time]*store.DailyRollup)
	dayKey := func(t time.Time) time.Time {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	ensure := func(day time.Time) *store.DailyRollup {
		r, ok := byDay[day]
		if !ok {
			r = &store.DailyRollup{Date: day}
			byDay[day] = r
		}
		return r
	}

	for _, f := range s.fans {
		if f.CreatorID != creatorID {
			continue
		}
		if f.AcquiredAt.Before(from) || !f.AcquiredAt.Before(to) {
			continue
		}
		ensure(dayKey(f.AcquiredAt)).NewSubs++
	}

	for _, rv := range s.revenue {
		if rv.CreatorID != creatorID {
			continue
		}
		if rv.EventAt.Before(from) || !rv.EventAt.Before(to) {
			continue
		}
		amt, _ := rv.Amount.Float64()
		ensure(dayKey(rv.EventAt)).Revenue += amt
	}

	// delta views per day: diff consecutive daily cumulative snapshots
	for postID, post := range s.posts {
		if post.CreatorID != creatorID {
			continue
		}
		snaps := s.snapshots[postID]
		cursor := from
		for cursor.Before(to) {
			next := cursor.Add(24 * time.Hour)
			s1, ok1 := latestAtOrBefore(snaps, next)
			if ok1 {
				s0, ok0 := latestAtOrBefore(snaps, cursor)
				if !ok0 {
					s0 = model.Metrics{}
				}
				if d := s1.Sub(s0).Views; d > 0 {
					ensure(dayKey(cursor)).DeltaViews += d
				}
			}
			cursor = next
		}
	}

	out := make([]store.DailyRollup, 0, len(byDay))
	for _, r := range byDay {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// CountAcquired implements store.FanStore.
func (s *Store) CountAcquired(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (int, error) {
	fans, err := s.ListAcquired(ctx, creatorID, t0, t1)
	return len(fans), err
}

// ListAcquired implements store.FanStore.
func (s *Store) ListAcquired(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) ([]model.Fan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Fan
	for _, f := range s.fans {
		if f.CreatorID != creatorID {
			continue
		}
		if !f.AcquiredAt.Before(t0) && f.AcquiredAt.Before(t1) {
			out = append(out, *f)
		}
	}
	return out, nil
}

// ListUnattributed implements store.FanStore.
func (s *Store) ListUnattributed(ctx context.Context, creatorID primitive.ObjectID) ([]model.Fan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Fan
	for _, f := range s.fans {
		if f.CreatorID == creatorID && !f.IsAttributed() {
			out = append(out, *f)
		}
	}
	return out, nil
}

// ListByCategory implements store.FanStore.
func (s *Store) ListByCategory(ctx context.Context, creatorID primitive.ObjectID, category string, t0, t1 time.Time) ([]model.Fan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Fan
	for _, f := range s.fans {
		if f.CreatorID != creatorID || f.AttributedCategory != category {
			continue
		}
		if !f.AcquiredAt.Before(t0) && f.AcquiredAt.Before(t1) {
			out = append(out, *f)
		}
	}
	return out, nil
}

// Save implements store.FanStore.
func (s *Store) Save(ctx context.Context, fan *model.Fan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fan.ID.IsZero() {
		fan.ID = primitive.NewObjectID()
	}
	cp := *fan
	s.fans[fan.ID] = &cp
	return nil
}

// SumAmount implements store.RevenueStore. Amounts are normalised to minor
// units (cents) of the creator's currency; callers reconstitute a
// decimal.Decimal at the service boundary.
func (s *Store) SumAmount(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (int64, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	currency := model.DefaultCurrency
	for _, rv := range s.revenue {
		if rv.CreatorID != creatorID {
			continue
		}
		if rv.EventAt.Before(t0) || !rv.EventAt.Before(t1) {
			continue
		}
		minor := rv.Amount.Shift(2).Round(0).IntPart()
		total += minor
		if rv.Currency != "" {
			currency = rv.Currency
		}
	}
	return total, currency, nil
}

// ListOverlapping implements store.ConfounderStore.
func (s *Store) ListOverlapping(ctx context.Context, creatorID primitive.ObjectID, wStart, wEnd time.Time) ([]model.ConfounderEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ConfounderEvent
	for _, c := range s.confounders {
		if c.CreatorID != creatorID {
			continue
		}
		if c.OverlapsWindow(wStart, wEnd) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetByID implements store.CreatorStore.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creators[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// GetAgencyByID implements store.AgencyStore.
func (s *Store) GetAgencyByID(ctx context.Context, id primitive.ObjectID) (*model.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// GetPostByID implements store.PostStore.
func (s *Store) GetPostByID(ctx context.Context, id primitive.ObjectID) (*model.SocialPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// CountByCategorySince implements store.PostStore.
func (s *Store) CountByCategorySince(ctx context.Context, creatorID primitive.ObjectID, category string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.posts {
		if p.CreatorID == creatorID && p.Category == category && !p.PostedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
