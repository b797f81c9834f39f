// Package recommend proposes the next concepts to teach, reading the
// knowledge graph without mutating it. Suggestions come from three ordered
// tiers concatenated in urgency order; there is no blended score and no
// cross-tier re-sorting.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/saurav/teachback/internal/knowledge"
)

// DefaultLimit is the suggestion cap used when the caller passes limit <= 0.
const DefaultLimit = 3

// Per-tier selection thresholds.
const (
	decayMasteryFloor  = 0.5 // only previously-understood concepts can "fade"
	decayEffectiveFrac = 0.7 // effective below this fraction of mastery counts as fading
	gapMasteryCeil     = 0.3
	prereqSourceFloor  = 0.7
	prereqTargetCeil   = 0.3
	perTierCap         = 2
)

// Priority labels a recommendation's urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Recommendation is a single ranked suggestion.
type Recommendation struct {
	ConceptID string   `json:"concept_id"`
	Label     string   `json:"label"`
	Priority  Priority `json:"priority"`
	Reason    string   `json:"reason"`
}

// Next returns up to limit suggestions: fading concepts first, then
// untouched gaps, then concepts newly unlocked by a mastered prerequisite.
// A concept appears at most once, in the earliest tier that selects it.
func Next(g *knowledge.Graph, now time.Time, limit int) []Recommendation {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var out []Recommendation
	seen := make(map[string]bool)
	add := func(r Recommendation) {
		if !seen[r.ConceptID] {
			seen[r.ConceptID] = true
			out = append(out, r)
		}
	}

	for _, r := range decayTier(g, now) {
		add(r)
	}
	for _, r := range gapTier(g) {
		add(r)
	}
	for _, r := range prerequisiteTier(g, now) {
		add(r)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// decayTier selects previously understood concepts whose effective mastery
// has faded, most decayed first.
func decayTier(g *knowledge.Graph, now time.Time) []Recommendation {
	var fading []*knowledge.ConceptNode
	for _, n := range g.SortedNodes() {
		if n.Mastery > decayMasteryFloor && n.EffectiveMastery(now) < decayEffectiveFrac*n.Mastery {
			fading = append(fading, n)
		}
	}
	sort.SliceStable(fading, func(i, j int) bool {
		return fading[i].DecayMagnitude(now) > fading[j].DecayMagnitude(now)
	})
	if len(fading) > perTierCap {
		fading = fading[:perTierCap]
	}

	out := make([]Recommendation, 0, len(fading))
	for _, n := range fading {
		out = append(out, Recommendation{
			ConceptID: n.ID,
			Label:     n.Label,
			Priority:  PriorityHigh,
			Reason:    "previously understood but fading",
		})
	}
	return out
}

// gapTier selects known unknowns the learner has never taught, highest
// confidence first (the ones they are closest to ready for).
func gapTier(g *knowledge.Graph) []Recommendation {
	var gaps []*knowledge.ConceptNode
	for _, n := range g.SortedNodes() {
		if n.Mastery < gapMasteryCeil && n.Sessions == 0 {
			gaps = append(gaps, n)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Confidence > gaps[j].Confidence
	})
	if len(gaps) > perTierCap {
		gaps = gaps[:perTierCap]
	}

	out := make([]Recommendation, 0, len(gaps))
	for _, n := range gaps {
		out = append(out, Recommendation{
			ConceptID: n.ID,
			Label:     n.Label,
			Priority:  PriorityMedium,
			Reason:    "not yet understood",
		})
	}
	return out
}

// prerequisiteTier recommends weak targets of prerequisite edges whose
// source is now effectively mastered.
func prerequisiteTier(g *knowledge.Graph, now time.Time) []Recommendation {
	var out []Recommendation
	for _, e := range g.PrerequisiteEdges() {
		src := g.Node(e.Source)
		tgt := g.Node(e.Target)
		if src == nil || tgt == nil {
			continue
		}
		if src.EffectiveMastery(now) > prereqSourceFloor && tgt.EffectiveMastery(now) < prereqTargetCeil {
			out = append(out, Recommendation{
				ConceptID: tgt.ID,
				Label:     tgt.Label,
				Priority:  PriorityMedium,
				Reason:    fmt.Sprintf("unlocked: you now know %s", src.Label),
			})
		}
	}
	return out
}
