package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConfounderEvent is a period or point-in-time external cause that biases
// attribution (a promotion, collab, price change, external press...).
// EndAt absent means a point event.
type ConfounderEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Type        string             `bson:"type" json:"type"`
	StartAt     time.Time          `bson:"start_at" json:"start_at"`
	EndAt       *time.Time         `bson:"end_at,omitempty" json:"end_at,omitempty"`
	Impact      string             `bson:"impact" json:"impact"` // low | medium | high
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// OverlapsWindow implements the confounder overlap rule from spec.md §4.3:
// event_start <= w_end AND (event_end IS NULL OR event_end >= w_start).
func (c *ConfounderEvent) OverlapsWindow(wStart, wEnd time.Time) bool {
	if c.StartAt.After(wEnd) {
		return false
	}
	if c.EndAt == nil {
		return true
	}
	return !c.EndAt.Before(wStart)
}
