package mongo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rev-saas-api/internal/model"
)

// revenueEventDoc is the BSON wire shape for model.RevenueEvent. The mongo
// driver's default codec has no registered encoder for decimal.Decimal, so
// amounts are shadowed as a decimal string at the persistence boundary and
// parsed back into decimal.Decimal on read — the same precision-preserving
// trick sawpanic-cryptorun uses for its own ledger amounts.
type revenueEventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatorID primitive.ObjectID `bson:"creator_id"`
	FanID     primitive.ObjectID `bson:"fan_id"`
	Type      string             `bson:"type"`
	Amount    string             `bson:"amount"`
	Currency  string             `bson:"currency"`
	EventAt   time.Time          `bson:"event_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func toRevenueDoc(e *model.RevenueEvent) revenueEventDoc {
	return revenueEventDoc{
		ID:        e.ID,
		CreatorID: e.CreatorID,
		FanID:     e.FanID,
		Type:      e.Type,
		Amount:    e.Amount.String(),
		Currency:  e.Currency,
		EventAt:   e.EventAt,
		CreatedAt: e.CreatedAt,
	}
}

func fromRevenueDoc(d revenueEventDoc) model.RevenueEvent {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	return model.RevenueEvent{
		ID:        d.ID,
		CreatorID: d.CreatorID,
		FanID:     d.FanID,
		Type:      d.Type,
		Amount:    amount,
		Currency:  d.Currency,
		EventAt:   d.EventAt,
		CreatedAt: d.CreatedAt,
	}
}

// RevenueRepository handles RevenueEvent data operations in MongoDB. It
// implements store.RevenueStore.
type RevenueRepository struct {
	collection *mongo.Collection
}

// NewRevenueRepository creates a new RevenueRepository.
func NewRevenueRepository(db *mongo.Database) *RevenueRepository {
	return &RevenueRepository{
		collection: db.Collection("revenue_events"),
	}
}

// Create inserts a new revenue event.
func (r *RevenueRepository) Create(ctx context.Context, event *model.RevenueEvent) error {
	event.CreatedAt = time.Now().UTC()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	doc := toRevenueDoc(event)
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// SumAmount implements store.RevenueStore, summing in the minor-unit
// (cents) representation so that floating-point error never enters the
// aggregate; the decimal value is reconstituted at the service boundary.
func (r *RevenueRepository) SumAmount(ctx context.Context, creatorID primitive.ObjectID, t0, t1 time.Time) (int64, string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"creator_id": creatorID,
		"event_at":   bson.M{"$gte": t0, "$lt": t1},
	})
	if err != nil {
		return 0, "", err
	}
	defer cursor.Close(ctx)

	var docs []revenueEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, "", err
	}

	var total int64
	currency := model.DefaultCurrency
	for _, d := range docs {
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil {
			continue
		}
		total += amount.Shift(2).Round(0).IntPart()
		if d.Currency != "" {
			currency = d.Currency
		}
	}
	return total, currency, nil
}

// ListByFan returns every revenue event tied to a fan.
func (r *RevenueRepository) ListByFan(ctx context.Context, fanID primitive.ObjectID) ([]model.RevenueEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"fan_id": fanID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []revenueEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]model.RevenueEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, fromRevenueDoc(d))
	}
	return events, nil
}
