package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fan is a subscriber acquisition event. ExternalIDHash is the HMAC-style
// hash of the platform's subscriber identifier (see service.FanIDHasher.Hash) —
// the core never stores or handles the raw identifier.
type Fan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID       primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	ExternalIDHash  string             `bson:"external_id_hash" json:"-"`
	AcquiredAt      time.Time          `bson:"acquired_at" json:"acquired_at"`
	ReferralLinkID  *primitive.ObjectID `bson:"referral_link_id,omitempty" json:"referral_link_id,omitempty"`
	ReferralCategory string             `bson:"referral_category,omitempty" json:"referral_category,omitempty"`

	AttributedCategory string             `bson:"attributed_category,omitempty" json:"attributed_category,omitempty"`
	AttributionMethod  string             `bson:"attribution_method" json:"attribution_method"` // referral_link | weighted_window | campaign | none
	Confidence         float64            `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Weights            map[string]float64 `bson:"weights,omitempty" json:"weights,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsAttributed reports whether the fan has already been assigned a category.
func (f *Fan) IsAttributed() bool {
	return f.AttributedCategory != ""
}

// WeightsSumValid reports whether f.Weights, when present, sums to 1.0
// within the 1e-6 tolerance spec.md requires.
func (f *Fan) WeightsSumValid() bool {
	if len(f.Weights) == 0 {
		return true
	}
	var sum float64
	for _, w := range f.Weights {
		sum += w
	}
	diff := sum - 1.0
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1e-6
}
