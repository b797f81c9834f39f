package spacedrep

import (
	"sort"
	"time"
)

// Scheduler manages the review items for all tracked concepts.
type Scheduler struct {
	items map[string]*ReviewItem
}

// NewScheduler creates a scheduler, loading items from the snapshot data
// if present.
func NewScheduler(data *SnapshotData) *Scheduler {
	s := &Scheduler{items: make(map[string]*ReviewItem)}
	if data == nil {
		return s
	}
	for concept, it := range data.Items {
		cp := *it
		if cp.EaseFactor < MinEaseFactor {
			cp.EaseFactor = DefaultEaseFactor
		}
		s.items[concept] = &cp
	}
	return s
}

// Track starts scheduling a concept if it isn't already tracked.
func (s *Scheduler) Track(concept string, now time.Time) *ReviewItem {
	if it, ok := s.items[concept]; ok {
		return it
	}
	it := NewItem(concept, now)
	s.items[concept] = it
	return it
}

// Record applies a review quality signal to a concept, creating the item
// at its defaults on first touch (missing prior state is not an error).
func (s *Scheduler) Record(concept string, quality int, now time.Time) (*ReviewItem, error) {
	it := s.Track(concept, now)
	if err := it.Apply(quality, now); err != nil {
		return nil, err
	}
	return it, nil
}

// Item returns the review item for a concept, or nil if not tracked.
func (s *Scheduler) Item(concept string) *ReviewItem {
	return s.items[concept]
}

// Len returns the number of tracked concepts.
func (s *Scheduler) Len() int {
	return len(s.items)
}

// DueReviews returns all items due at the given time, most overdue first
// (ascending next_review; concept id breaks ties for determinism).
func (s *Scheduler) DueReviews(now time.Time) []*ReviewItem {
	var due []*ReviewItem
	for _, it := range s.items {
		if it.IsDue(now) {
			due = append(due, it)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].Concept < due[j].Concept
	})
	return due
}

// SnapshotData is the persistence form of the review schedule.
type SnapshotData struct {
	Items map[string]*ReviewItem `json:"items"`
}

// Snapshot exports the current state for persistence.
func (s *Scheduler) Snapshot() *SnapshotData {
	data := &SnapshotData{Items: make(map[string]*ReviewItem, len(s.items))}
	for concept, it := range s.items {
		cp := *it
		data.Items[concept] = &cp
	}
	return data
}
