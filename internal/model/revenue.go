package model

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RevenueEvent is a monetisation event tied to a fan. Amount is a
// decimal.Decimal, not a float64, so that summed subscription/tip/ppv
// amounts across a wide window never accumulate binary floating-point
// drift.
type RevenueEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	FanID     primitive.ObjectID `bson:"fan_id" json:"fan_id"`
	Type      string             `bson:"type" json:"type"` // subscription | renewal | tip | ppv | message
	Amount    decimal.Decimal    `bson:"amount" json:"amount"`
	Currency  string             `bson:"currency" json:"currency"`
	EventAt   time.Time          `bson:"event_at" json:"event_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
