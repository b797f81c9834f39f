// Package grading implements the SOLO-referenced criterion scorer: five
// 1-5 raw scores are combined into a per-mode weighted aggregate, a letter
// grade, and a conjunctive pass flag. The conjunctive rule encodes the
// SOLO philosophy that one catastrophic weakness vetoes an otherwise
// acceptable average.
package grading

import (
	"math"

	"github.com/saurav/teachback/internal/validation"
)

// Input carries the raw criterion scores for one scored session.
type Input struct {
	Completeness        int `json:"completeness"`
	Depth               int `json:"depth"`
	Clarity             int `json:"clarity"`
	StructuralCoherence int `json:"structural_coherence"`
	PedagogicalInsight  int `json:"pedagogical_insight"`

	// Mode selects the weighting preset (e.g. "explain", "drill").
	Mode string `json:"mode"`
	// KBMode indicates the session ran against a knowledge base.
	KBMode bool `json:"kb_mode"`
	// RQSAvg is the session's average real-time quality signal (0-1),
	// carried through for reporting.
	RQSAvg float64 `json:"rqs_avg"`
}

// Validate rejects raw scores outside 1..5, naming the offending field.
func (in *Input) Validate() error {
	for _, c := range []struct {
		field string
		value int
	}{
		{"completeness", in.Completeness},
		{"depth", in.Depth},
		{"clarity", in.Clarity},
		{"structural_coherence", in.StructuralCoherence},
		{"pedagogical_insight", in.PedagogicalInsight},
	} {
		if c.value < 1 || c.value > 5 {
			return validation.Errorf(c.field, "must be in 1..5, got %d", c.value)
		}
	}
	return nil
}

// Weights is one mode's criterion weighting. Weights need not sum to 1;
// they are normalized when applied.
type Weights struct {
	Completeness        float64 `json:"completeness"`
	Depth               float64 `json:"depth"`
	Clarity             float64 `json:"clarity"`
	StructuralCoherence float64 `json:"structural_coherence"`
	PedagogicalInsight  float64 `json:"pedagogical_insight"`
}

// EqualWeights is the default weighting.
func EqualWeights() Weights {
	return Weights{1, 1, 1, 1, 1}
}

func (w Weights) sum() float64 {
	return w.Completeness + w.Depth + w.Clarity + w.StructuralCoherence + w.PedagogicalInsight
}

// Config holds the scorer's tunables. The production per-mode weights were
// never pinned down upstream; the presets here are defaults awaiting
// confirmation, which is why they are configuration rather than constants.
type Config struct {
	// ModeWeights overrides the default weighting per session mode.
	ModeWeights map[string]Weights
	// ConjunctiveFloor is the minimum every raw criterion must clear for
	// a pass, regardless of the aggregate.
	ConjunctiveFloor int
}

// DefaultConfig returns equal weights with an explain-mode preset that
// biases clarity and structure, and the assumed floor of 2.
func DefaultConfig() Config {
	return Config{
		ModeWeights: map[string]Weights{
			"explain": {Completeness: 1, Depth: 1, Clarity: 1.5, StructuralCoherence: 1.5, PedagogicalInsight: 1},
		},
		ConjunctiveFloor: 2,
	}
}

func (c Config) weightsFor(mode string) Weights {
	if w, ok := c.ModeWeights[mode]; ok && w.sum() > 0 {
		return w
	}
	return EqualWeights()
}

// Grade letters.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"
)

// Result is the criterion-referenced outcome for one session.
type Result struct {
	Completeness        int `json:"completeness"`
	Depth               int `json:"depth"`
	Clarity             int `json:"clarity"`
	StructuralCoherence int `json:"structural_coherence"`
	PedagogicalInsight  int `json:"pedagogical_insight"`

	WeightedAggregate float64 `json:"weighted_aggregate"` // 1.0-5.0
	Grade             string  `json:"grade"`
	ConjunctivePass   bool    `json:"conjunctive_pass"`
	// LegacyScore is the 0-100 rescale for consumers of the older
	// additive scheme.
	LegacyScore int     `json:"legacy_score"`
	RQSAvg      float64 `json:"rqs_avg"`
}

// Score grades one session. Raw scores outside 1..5 are rejected; the
// aggregate itself is bounded by construction.
func Score(in Input, cfg Config) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	w := cfg.weightsFor(in.Mode)
	agg := (float64(in.Completeness)*w.Completeness +
		float64(in.Depth)*w.Depth +
		float64(in.Clarity)*w.Clarity +
		float64(in.StructuralCoherence)*w.StructuralCoherence +
		float64(in.PedagogicalInsight)*w.PedagogicalInsight) / w.sum()

	floor := cfg.ConjunctiveFloor
	pass := in.Completeness >= floor &&
		in.Depth >= floor &&
		in.Clarity >= floor &&
		in.StructuralCoherence >= floor &&
		in.PedagogicalInsight >= floor

	return &Result{
		Completeness:        in.Completeness,
		Depth:               in.Depth,
		Clarity:             in.Clarity,
		StructuralCoherence: in.StructuralCoherence,
		PedagogicalInsight:  in.PedagogicalInsight,
		WeightedAggregate:   agg,
		Grade:               letterFor(agg),
		ConjunctivePass:     pass,
		LegacyScore:         LegacyScore(agg),
		RQSAvg:              in.RQSAvg,
	}, nil
}

// letterFor maps a 1-5 aggregate to a letter grade.
func letterFor(agg float64) string {
	switch {
	case agg >= 4.5:
		return GradeA
	case agg >= 3.5:
		return GradeB
	case agg >= 2.5:
		return GradeC
	case agg >= 1.5:
		return GradeD
	default:
		return GradeF
	}
}

// LegacyScore rescales a 1-5 aggregate onto 0-100 monotonically.
func LegacyScore(agg float64) int {
	return int(math.Round((agg - 1.0) / 4.0 * 100.0))
}
