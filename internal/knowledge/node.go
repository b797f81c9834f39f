package knowledge

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// Defaults and step sizes for node updates. A concept first seen as
// mastered starts less stable than one reinforced over many sessions;
// a concept first seen as a gap decays faster still.
const (
	MasteryGainFactor = 0.4  // session cap on mastery growth
	DecayStep         = 0.02 // exposure stabilizes memory
	MinDecayRate      = 0.1
	ConfidenceStep    = 0.15

	NewDecayRate  = 0.3
	NewConfidence = 0.4

	GapMastery    = 0.1
	GapDecayRate  = 0.4
	GapConfidence = 0.2

	// MaxProvenance bounds the per-node source session history.
	MaxProvenance = 10
)

// ConceptNode is a single concept in the learner's knowledge graph.
// Nodes are created on first mention (as mastered or as a gap) and never
// deleted; all mutation goes through Graph.ApplyOutcome.
type ConceptNode struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	Domain         string     `json:"domain"`
	Mastery        float64    `json:"mastery"`
	Sessions       int        `json:"sessions"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`
	DecayRate      float64    `json:"decay_rate"`
	Confidence     float64    `json:"confidence"`
	SourceSessions []string   `json:"source_sessions,omitempty"`
}

// EffectiveMastery returns the mastery score adjusted for forgetting since
// the node was last actively seen (Ebbinghaus curve). A node never seen in
// a session (LastSeen nil) has not started decaying.
func (n *ConceptNode) EffectiveMastery(now time.Time) float64 {
	if n.LastSeen == nil {
		return n.Mastery
	}
	days := now.Sub(*n.LastSeen).Hours() / 24.0
	if days <= 0 {
		return n.Mastery
	}
	return n.Mastery * math.Exp(-days/n.Stability())
}

// Stability is the decay time constant in days. Lower decay rate, slower
// forgetting.
func (n *ConceptNode) Stability() float64 {
	return 10.0 / n.DecayRate
}

// DecayMagnitude returns how much mastery has faded: mastery minus
// effective mastery at the given time.
func (n *ConceptNode) DecayMagnitude(now time.Time) float64 {
	return n.Mastery - n.EffectiveMastery(now)
}

// recordProvenance appends a session id to the bounded history.
func (n *ConceptNode) recordProvenance(sessionID string) {
	n.SourceSessions = append(n.SourceSessions, sessionID)
	if len(n.SourceSessions) > MaxProvenance {
		n.SourceSessions = n.SourceSessions[len(n.SourceSessions)-MaxProvenance:]
	}
}

// Slugify converts a concept label to its stable node id.
func Slugify(label string) string {
	var b strings.Builder
	lastDash := true // trim leading dashes
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
