package knowledge

import (
	"sort"
	"time"

	"github.com/saurav/teachback/internal/validation"
)

// Relation classifies how two concepts connect.
type Relation string

const (
	RelationPrerequisite Relation = "prerequisite"
	RelationRelated      Relation = "related"
	RelationExtends      Relation = "extends"
	RelationContrasts    Relation = "contrasts"
)

// AllRelations returns the closed relation set.
func AllRelations() []Relation {
	return []Relation{RelationPrerequisite, RelationRelated, RelationExtends, RelationContrasts}
}

func (r Relation) valid() bool {
	switch r {
	case RelationPrerequisite, RelationRelated, RelationExtends, RelationContrasts:
		return true
	}
	return false
}

// Edge links two concept nodes. Both endpoints must exist in the graph.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relation"`
	Strength float64  `json:"strength"`
}

// Graph is the learner's concept graph: nodes, edges, and stats derived
// from them. Stats are always recomputed from nodes plus the previous
// snapshot's stats, never stored as an independent source of truth.
type Graph struct {
	Nodes map[string]*ConceptNode `json:"nodes"`
	Edges []Edge                  `json:"edges"`
	Stats Stats                   `json:"stats"`
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*ConceptNode)}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *ConceptNode {
	return g.Nodes[id]
}

// NodeByLabel returns the node whose slug matches the label, or nil.
func (g *Graph) NodeByLabel(label string) *ConceptNode {
	return g.Nodes[Slugify(label)]
}

// SortedNodes returns all nodes ordered by id, for deterministic iteration.
func (g *Graph) SortedNodes() []*ConceptNode {
	out := make([]*ConceptNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddEdge validates and appends an edge. Edges with dangling endpoints,
// an unknown relation, or strength outside [0,1] are rejected.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.Nodes[e.Source]; !ok {
		return validation.Errorf("source", "edge references nonexistent node %q", e.Source)
	}
	if _, ok := g.Nodes[e.Target]; !ok {
		return validation.Errorf("target", "edge references nonexistent node %q", e.Target)
	}
	if !e.Relation.valid() {
		return validation.Errorf("relation", "unknown relation %q", e.Relation)
	}
	if e.Strength < 0 || e.Strength > 1 {
		return validation.Errorf("strength", "must be in [0,1], got %g", e.Strength)
	}
	g.Edges = append(g.Edges, e)
	return nil
}

// PrerequisiteEdges returns all edges with the prerequisite relation.
func (g *Graph) PrerequisiteEdges() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Relation == RelationPrerequisite {
			out = append(out, e)
		}
	}
	return out
}

// Stats is the derived aggregate view of the graph.
type Stats struct {
	TotalConcepts  int                    `json:"total_concepts"`
	AverageMastery float64                `json:"average_mastery"` // effective, decay-adjusted
	Domains        map[string]DomainStats `json:"domains,omitempty"`
	Velocity       float64                `json:"velocity"`  // Δ average mastery since previous snapshot
	Retention      float64                `json:"retention"` // mean(effective/actual), ≤ 1
}

// DomainStats is the per-domain rollup.
type DomainStats struct {
	Concepts       int     `json:"concepts"`
	AverageMastery float64 `json:"average_mastery"`
}

// RecomputeStats rebuilds g.Stats from the nodes at the given time, using
// the previous stats snapshot only for the velocity delta. Call it once per
// outcome; a second call within the same session would treat the fresh
// average as the baseline and zero the velocity.
func (g *Graph) RecomputeStats(now time.Time) {
	g.Stats = g.statsAt(now, g.Stats.AverageMastery)
}

// StatsAt returns the decay-adjusted aggregate view at the given time
// without touching g.Stats. Velocity keeps its stored value, so read paths
// cannot collapse the delta before it is persisted.
func (g *Graph) StatsAt(now time.Time) Stats {
	s := g.statsAt(now, g.Stats.AverageMastery)
	s.Velocity = g.Stats.Velocity
	return s
}

func (g *Graph) statsAt(now time.Time, prevAvg float64) Stats {
	stats := Stats{
		TotalConcepts: len(g.Nodes),
		Domains:       make(map[string]DomainStats),
		Retention:     1.0,
	}

	if len(g.Nodes) == 0 {
		stats.Domains = nil
		return stats
	}

	var effSum float64
	var retSum float64
	retCount := 0
	domEff := make(map[string]float64)
	domCount := make(map[string]int)

	for _, n := range g.Nodes {
		eff := n.EffectiveMastery(now)
		effSum += eff
		domEff[n.Domain] += eff
		domCount[n.Domain]++
		if n.Mastery > 0 {
			retSum += eff / n.Mastery
			retCount++
		}
	}

	stats.AverageMastery = effSum / float64(len(g.Nodes))
	stats.Velocity = stats.AverageMastery - prevAvg
	if retCount > 0 {
		ret := retSum / float64(retCount)
		if ret > 1.0 {
			ret = 1.0
		}
		stats.Retention = ret
	}
	for dom, count := range domCount {
		stats.Domains[dom] = DomainStats{
			Concepts:       count,
			AverageMastery: domEff[dom] / float64(count),
		}
	}

	return stats
}
