// Package service contains the analytics core and its ambient
// dependencies. Services orchestrate operations between handlers and the
// persistence layer:
//   - BaselineBuilder computes day-of-week-adjusted expected performance.
//   - AttributionEngine attributes new subscribers and revenue to content
//     categories and scores confidence via ConfidenceScorer.
//   - RecommendationEngine turns attribution reports into a two-tier
//     content recommendation and weekly posting plan.
//   - FanIDHasher hashes external fan identifiers with a per-agency salt.
//   - JWTService and AuthService cover the minimal agency-staff identity
//     the HTTP layer needs; full authentication is an external concern.
//   - EncryptionService protects at-rest secrets.
package service
