package spacedrep

import (
	"math"
	"time"

	"github.com/saurav/teachback/internal/validation"
)

// SM-2 parameters.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	// PassingQuality is the SM-2 success threshold: quality >= 3 advances
	// the schedule, below it the repetition streak resets.
	PassingQuality = 3
	MaxQuality     = 5
)

// ReviewItem holds the spaced repetition state for a single concept.
// This schedule is independent of the knowledge graph's forgetting curve:
// the graph estimates current knowledge, the item decides the next review
// date.
type ReviewItem struct {
	Concept      string    `json:"concept"`
	LastReview   time.Time `json:"last_review"`
	NextReview   time.Time `json:"next_review"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	Repetitions  int       `json:"repetitions"`
}

// NewItem starts tracking a concept. The first review is due immediately.
func NewItem(concept string, now time.Time) *ReviewItem {
	return &ReviewItem{
		Concept:    concept,
		LastReview: now,
		NextReview: now,
		EaseFactor: DefaultEaseFactor,
	}
}

// Apply records a review with recall quality q in 0..5 and reschedules.
// A single failure resets the repetition streak and interval no matter how
// long the success streak was; the ease factor never drops below 1.3.
func (it *ReviewItem) Apply(quality int, now time.Time) error {
	if quality < 0 || quality > MaxQuality {
		return validation.Errorf("quality", "must be in 0..5, got %d", quality)
	}

	if quality >= PassingQuality {
		switch it.Repetitions {
		case 0:
			it.IntervalDays = 1
		case 1:
			it.IntervalDays = 6
		default:
			it.IntervalDays = int(math.Round(float64(it.IntervalDays) * it.EaseFactor))
		}
		it.Repetitions++
	} else {
		it.Repetitions = 0
		it.IntervalDays = 1
	}

	q := float64(quality)
	it.EaseFactor = math.Max(MinEaseFactor, it.EaseFactor+(0.1-(5-q)*(0.08+(5-q)*0.02)))

	it.LastReview = now
	it.NextReview = now.AddDate(0, 0, it.IntervalDays)
	return nil
}

// IsDue reports whether the item is at or past its review date.
func (it *ReviewItem) IsDue(now time.Time) bool {
	return !now.Before(it.NextReview)
}

// OverdueDays returns how many days past due the item is, 0 if not yet due.
func (it *ReviewItem) OverdueDays(now time.Time) float64 {
	if now.Before(it.NextReview) {
		return 0
	}
	return now.Sub(it.NextReview).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review,
// 0 if already due.
func (it *ReviewItem) DaysUntilReview(now time.Time) int {
	if it.IsDue(now) {
		return 0
	}
	return int(it.NextReview.Sub(now).Hours()/24.0) + 1
}
