// Package rating tracks a multi-dimensional Elo-style rating of the
// learner's explanations, one record per (topic, dimension) pair. Updates
// are pure; persistence goes through an injected Repo so there is no
// process-wide mutable state.
package rating

import (
	"time"

	"github.com/saurav/teachback/internal/validation"
)

// Dimension is one axis of explanation quality.
type Dimension string

const (
	DimCompleteness        Dimension = "completeness"
	DimDepth               Dimension = "depth"
	DimClarity             Dimension = "clarity"
	DimStructuralCoherence Dimension = "structural_coherence"
	DimPedagogicalInsight  Dimension = "pedagogical_insight"
	// DimOverall is updated from the session's weighted composite, not
	// recomputed independently.
	DimOverall Dimension = "overall"
)

// AllDimensions returns the closed dimension set in display order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimCompleteness, DimDepth, DimClarity,
		DimStructuralCoherence, DimPedagogicalInsight, DimOverall,
	}
}

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range AllDimensions() {
		if s == string(d) {
			return d, nil
		}
	}
	return "", validation.Errorf("dimension", "unknown dimension %q", s)
}

// Rating update parameters.
const (
	InitialRating = 1200
	// FastK applies while a (topic, dimension) pair is young, for quick
	// convergence; StableK applies afterward.
	FastK          = 40
	StableK        = 16
	FastKSessions  = 5
	expectedAnchor = 800 // rating that projects to observed score 1
	expectedSlope  = 200 // rating points per observed-score point
)

// Record is the current rating state for one (topic, dimension) pair.
// It is mutated in place on update; every mutation also appends an
// immutable HistoryEntry.
type Record struct {
	Topic        string    `json:"topic"`
	Dimension    Dimension `json:"dimension"`
	Rating       int       `json:"rating"`
	KFactor      int       `json:"k_factor"`
	SessionCount int       `json:"session_count"`
	PeakRating   int       `json:"peak_rating"`
}

// NewRecord returns the lazy default for a first-touched pair.
func NewRecord(topic string, dim Dimension) *Record {
	return &Record{
		Topic:      topic,
		Dimension:  dim,
		Rating:     InitialRating,
		KFactor:    FastK,
		PeakRating: InitialRating,
	}
}

// HistoryEntry is a write-once trend row. History is never edited or
// compacted.
type HistoryEntry struct {
	Topic        string    `json:"topic"`
	Dimension    Dimension `json:"dimension"`
	RatingBefore int       `json:"rating_before"`
	RatingAfter  int       `json:"rating_after"`
	Delta        int       `json:"delta"`
	Timestamp    time.Time `json:"timestamp"`
}

// Expected projects the current rating onto the 1-5 observed-score scale
// (1200 maps to 3.0). Clamped at the scale edges.
func Expected(rating int) float64 {
	e := 1.0 + float64(rating-expectedAnchor)/expectedSlope
	if e < 1 {
		return 1
	}
	if e > 5 {
		return 5
	}
	return e
}

// KFor returns the K-factor for a record with the given prior session count.
func KFor(sessionCount int) int {
	if sessionCount <= FastKSessions {
		return FastK
	}
	return StableK
}
