package knowledge

import (
	"time"

	"github.com/saurav/teachback/internal/validation"
)

// Outcome is a completed teaching session's result, as produced by the
// extraction layer: an overall score plus the concept labels the learner
// demonstrated (mastered) and the ones exposed as missing (gaps).
type Outcome struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Domain   string    `json:"domain,omitempty"`
	Score    int       `json:"score"` // 0-100
	Mastered []string  `json:"mastered"`
	Gaps     []string  `json:"gaps"`
}

// Validate rejects malformed outcomes with a field-naming error.
func (o *Outcome) Validate() error {
	if o.ID == "" {
		return validation.Errorf("id", "session id is required")
	}
	if o.Title == "" {
		return validation.Errorf("title", "session title is required")
	}
	if o.Score < 0 || o.Score > 100 {
		return validation.Errorf("score", "must be in 0..100, got %d", o.Score)
	}
	for i, label := range o.Mastered {
		if Slugify(label) == "" {
			return validation.Errorf("mastered", "label %d is empty", i)
		}
	}
	for i, label := range o.Gaps {
		if Slugify(label) == "" {
			return validation.Errorf("gaps", "label %d is empty", i)
		}
	}
	return nil
}

// ApplyOutcome folds a completed session into the graph and recomputes
// stats. Mastered concepts gain up to MasteryGainFactor of mastery per
// session; gap concepts are recorded as known unknowns without claiming
// any learning occurred. Arithmetic results are clamped to their valid
// ranges; malformed input is rejected instead.
func (g *Graph) ApplyOutcome(o *Outcome, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	domain := InferDomain(o.Title, o.Domain)
	gain := float64(o.Score) / 100.0 * MasteryGainFactor

	for _, label := range o.Mastered {
		id := Slugify(label)
		n := g.Nodes[id]
		if n == nil {
			seen := now
			n = &ConceptNode{
				ID:         id,
				Label:      label,
				Domain:     domain,
				Mastery:    gain,
				Sessions:   1,
				LastSeen:   &seen,
				DecayRate:  NewDecayRate,
				Confidence: NewConfidence,
			}
			g.Nodes[id] = n
		} else {
			n.Mastery = clamp01(n.Mastery + gain)
			n.Sessions++
			seen := now
			n.LastSeen = &seen
			n.DecayRate = max(MinDecayRate, n.DecayRate-DecayStep)
			n.Confidence = clamp01(n.Confidence + ConfidenceStep)
		}
		n.recordProvenance(o.ID)
	}

	for _, label := range o.Gaps {
		id := Slugify(label)
		if _, exists := g.Nodes[id]; exists {
			continue
		}
		n := &ConceptNode{
			ID:         id,
			Label:      label,
			Domain:     domain,
			Mastery:    GapMastery,
			DecayRate:  GapDecayRate,
			Confidence: GapConfidence,
		}
		n.recordProvenance(o.ID)
		g.Nodes[id] = n
	}

	g.RecomputeStats(now)
	return nil
}
