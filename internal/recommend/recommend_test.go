package recommend

import (
	"testing"
	"time"

	"github.com/saurav/teachback/internal/knowledge"
)

func node(id string, mastery float64, sessions int, confidence float64, lastSeenDaysAgo int, now time.Time) *knowledge.ConceptNode {
	n := &knowledge.ConceptNode{
		ID:         id,
		Label:      id,
		Domain:     knowledge.DomainOther,
		Mastery:    mastery,
		Sessions:   sessions,
		Confidence: confidence,
		DecayRate:  0.5,
	}
	if lastSeenDaysAgo >= 0 {
		seen := now.AddDate(0, 0, -lastSeenDaysAgo)
		n.LastSeen = &seen
	}
	return n
}

func TestNext_DecayTierFirst(t *testing.T) {
	now := time.Now()
	g := knowledge.NewGraph()
	// Faded badly: mastery 0.9, unseen 60 days.
	g.Nodes["faded"] = node("faded", 0.9, 3, 0.8, 60, now)
	// Fresh: seen today, no decay.
	g.Nodes["fresh"] = node("fresh", 0.9, 3, 0.8, 0, now)
	// Gap concept.
	g.Nodes["gap"] = node("gap", 0.1, 0, 0.2, -1, now)

	recs := Next(g, now, 3)
	if len(recs) == 0 {
		t.Fatal("no recommendations")
	}
	if recs[0].ConceptID != "faded" || recs[0].Priority != PriorityHigh {
		t.Errorf("first rec = %+v, want faded/high", recs[0])
	}
	for _, r := range recs {
		if r.ConceptID == "fresh" {
			t.Error("fresh concept recommended via decay tier")
		}
	}
}

func TestNext_GapTierOrderedByConfidence(t *testing.T) {
	now := time.Now()
	g := knowledge.NewGraph()
	g.Nodes["low"] = node("low", 0.1, 0, 0.1, -1, now)
	g.Nodes["high"] = node("high", 0.1, 0, 0.4, -1, now)
	g.Nodes["mid"] = node("mid", 0.1, 0, 0.2, -1, now)

	recs := Next(g, now, 3)
	if len(recs) != 2 {
		t.Fatalf("got %d recs, want 2 (per-tier cap)", len(recs))
	}
	if recs[0].ConceptID != "high" || recs[1].ConceptID != "mid" {
		t.Errorf("gap order = [%s %s], want [high mid]", recs[0].ConceptID, recs[1].ConceptID)
	}
}

func TestNext_PrerequisiteUnlock(t *testing.T) {
	now := time.Now()
	g := knowledge.NewGraph()
	g.Nodes["base"] = node("base", 0.9, 5, 0.9, 0, now)
	g.Nodes["next"] = node("next", 0.15, 1, 0.3, 0, now)
	if err := g.AddEdge(knowledge.Edge{Source: "base", Target: "next", Relation: knowledge.RelationPrerequisite, Strength: 1}); err != nil {
		t.Fatal(err)
	}

	recs := Next(g, now, 3)
	found := false
	for _, r := range recs {
		if r.ConceptID == "next" {
			found = true
			if r.Priority != PriorityMedium {
				t.Errorf("priority = %s, want medium", r.Priority)
			}
		}
	}
	if !found {
		t.Error("unlocked target not recommended")
	}
}

func TestNext_LimitAndDedup(t *testing.T) {
	now := time.Now()
	g := knowledge.NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.Nodes[id] = node(id, 0.1, 0, 0.2, -1, now)
	}
	g.Nodes["f1"] = node("f1", 0.9, 2, 0.5, 90, now)
	g.Nodes["f2"] = node("f2", 0.8, 2, 0.5, 90, now)

	recs := Next(g, now, 3)
	if len(recs) > 3 {
		t.Errorf("got %d recs, want <= 3", len(recs))
	}
	seen := make(map[string]bool)
	for _, r := range recs {
		if seen[r.ConceptID] {
			t.Errorf("concept %s recommended twice", r.ConceptID)
		}
		seen[r.ConceptID] = true
	}
}

func TestNext_EmptyGraph(t *testing.T) {
	if recs := Next(knowledge.NewGraph(), time.Now(), 0); len(recs) != 0 {
		t.Errorf("empty graph produced %d recs", len(recs))
	}
}
