package rating

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/saurav/teachback/internal/validation"
)

// Repo is the persistence boundary for rating records and their history.
// Keys are (topic, dimension); the store is a single-learner profile.
type Repo interface {
	// Get returns the record for a pair, or nil if never touched.
	Get(ctx context.Context, topic string, dim Dimension) (*Record, error)

	// Put upserts the current record for a pair.
	Put(ctx context.Context, rec *Record) error

	// AppendHistory stores an immutable trend row.
	AppendHistory(ctx context.Context, entry HistoryEntry) error

	// History returns the most recent entries for a pair, newest first.
	History(ctx context.Context, topic string, dim Dimension, limit int) ([]HistoryEntry, error)
}

// UpdateResult reports one dimension's rating movement.
type UpdateResult struct {
	Dimension Dimension `json:"dimension"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Delta     int       `json:"delta"`
	KFactor   int       `json:"k_factor"`
}

// Apply computes the next record state for an observed 1-5 score. Pure:
// the input record is not modified. Returns the updated record and the
// history entry the caller must persist alongside it.
func Apply(rec Record, observed int, now time.Time) (Record, HistoryEntry, error) {
	if observed < 1 || observed > 5 {
		return Record{}, HistoryEntry{}, validation.Errorf("observed", "must be in 1..5, got %d", observed)
	}

	k := KFor(rec.SessionCount)
	expected := Expected(rec.Rating)
	after := int(math.Round(float64(rec.Rating) + float64(k)*(float64(observed)-expected)))

	next := rec
	next.Rating = after
	next.KFactor = k
	next.SessionCount++
	if after > next.PeakRating {
		next.PeakRating = after
	}

	entry := HistoryEntry{
		Topic:        rec.Topic,
		Dimension:    rec.Dimension,
		RatingBefore: rec.Rating,
		RatingAfter:  after,
		Delta:        after - rec.Rating,
		Timestamp:    now,
	}
	return next, entry, nil
}

// Engine coordinates rating updates against a Repo.
type Engine struct {
	repo Repo
}

// NewEngine creates an Engine over the given repository.
func NewEngine(repo Repo) *Engine {
	return &Engine{repo: repo}
}

// Update applies one observed score to a (topic, dimension) pair, creating
// the record at its defaults on first touch. One history row is appended
// per update.
func (e *Engine) Update(ctx context.Context, topic string, dim Dimension, observed int, now time.Time) (*UpdateResult, error) {
	if topic == "" {
		return nil, validation.Errorf("topic", "topic is required")
	}
	if _, err := ParseDimension(string(dim)); err != nil {
		return nil, err
	}

	rec, err := e.repo.Get(ctx, topic, dim)
	if err != nil {
		return nil, fmt.Errorf("load rating %s/%s: %w", topic, dim, err)
	}
	if rec == nil {
		rec = NewRecord(topic, dim)
	}

	next, entry, err := Apply(*rec, observed, now)
	if err != nil {
		return nil, err
	}

	if err := e.repo.Put(ctx, &next); err != nil {
		return nil, fmt.Errorf("save rating %s/%s: %w", topic, dim, err)
	}
	if err := e.repo.AppendHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("append rating history: %w", err)
	}

	return &UpdateResult{
		Dimension: dim,
		Before:    entry.RatingBefore,
		After:     entry.RatingAfter,
		Delta:     entry.Delta,
		KFactor:   next.KFactor,
	}, nil
}

// UpdateAll applies a full set of per-dimension observations for one topic,
// in the stable AllDimensions order. Dimensions missing from observed are
// skipped.
func (e *Engine) UpdateAll(ctx context.Context, topic string, observed map[Dimension]int, now time.Time) ([]UpdateResult, error) {
	for d := range observed {
		if _, err := ParseDimension(string(d)); err != nil {
			return nil, err
		}
	}

	var results []UpdateResult
	for _, dim := range AllDimensions() {
		score, ok := observed[dim]
		if !ok {
			continue
		}
		res, err := e.Update(ctx, topic, dim, score, now)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}
