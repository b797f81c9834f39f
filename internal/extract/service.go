// Package extract turns a raw teach-back transcript into structured
// assessment data via an LLM: a session outcome for the knowledge graph
// and criterion scores for the grader. Everything the LLM returns is
// validated before it leaves this package.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/saurav/teachback/internal/grading"
	"github.com/saurav/teachback/internal/knowledge"
	"github.com/saurav/teachback/internal/llm"
)

// maxConceptLabels caps how many labels one session may contribute per
// list. Anything past the cap is noise, not signal.
const maxConceptLabels = 12

// Config holds generation parameters for the extractor.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.2,
	}
}

// Service performs LLM-backed transcript extraction.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an extractor over the given provider.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// outcomeOutput is the raw LLM response for outcome extraction.
type outcomeOutput struct {
	Summary  string   `json:"summary"`
	Score    int      `json:"score"`
	Mastered []string `json:"mastered"`
	Gaps     []string `json:"gaps"`
}

// OutcomeResult pairs the validated outcome with the LLM's summary.
type OutcomeResult struct {
	Outcome *knowledge.Outcome
	Summary string
}

// Outcome extracts a session outcome from a transcript. The returned
// outcome has passed knowledge.Outcome validation and can be applied to
// the graph directly.
func (s *Service) Outcome(ctx context.Context, t *Transcript, now time.Time) (*OutcomeResult, error) {
	ctx = llm.WithPurpose(ctx, "outcome-extract")

	userMsg, err := buildTranscriptMessage(t)
	if err != nil {
		return nil, fmt.Errorf("build outcome prompt: %w", err)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: outcomeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      OutcomeSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("outcome extraction failed: %w", err)
	}

	var raw outcomeOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse outcome response: %w", err)
	}

	outcome := &knowledge.Outcome{
		ID:       t.SessionID,
		Date:     now,
		Title:    t.Topic,
		Domain:   knowledge.InferDomain(t.Topic, t.Domain),
		Score:    raw.Score,
		Mastered: cleanLabels(raw.Mastered),
		Gaps:     cleanLabels(raw.Gaps),
	}
	if err := outcome.Validate(); err != nil {
		return nil, fmt.Errorf("extracted outcome is invalid: %w", err)
	}

	return &OutcomeResult{Outcome: outcome, Summary: strings.TrimSpace(raw.Summary)}, nil
}

// criteriaOutput is the raw LLM response for criterion scoring.
type criteriaOutput struct {
	Completeness        int    `json:"completeness"`
	Depth               int    `json:"depth"`
	Clarity             int    `json:"clarity"`
	StructuralCoherence int    `json:"structural_coherence"`
	PedagogicalInsight  int    `json:"pedagogical_insight"`
	Rationale           string `json:"rationale"`
}

// CriteriaResult pairs validated criterion scores with their rationale.
type CriteriaResult struct {
	Input     grading.Input
	Rationale string
}

// Criteria scores a transcript against the five-criterion rubric. Mode,
// KB flag, and the session's average quality signal are stamped onto the
// returned grading input.
func (s *Service) Criteria(ctx context.Context, t *Transcript, mode string, kbMode bool, rqsAvg float64) (*CriteriaResult, error) {
	ctx = llm.WithPurpose(ctx, "criterion-score")

	userMsg, err := buildTranscriptMessage(t)
	if err != nil {
		return nil, fmt.Errorf("build criteria prompt: %w", err)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: criteriaSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      CriteriaSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("criterion scoring failed: %w", err)
	}

	var raw criteriaOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse criteria response: %w", err)
	}

	in := grading.Input{
		Completeness:        raw.Completeness,
		Depth:               raw.Depth,
		Clarity:             raw.Clarity,
		StructuralCoherence: raw.StructuralCoherence,
		PedagogicalInsight:  raw.PedagogicalInsight,
		Mode:                mode,
		KBMode:              kbMode,
		RQSAvg:              rqsAvg,
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("extracted criteria are invalid: %w", err)
	}

	return &CriteriaResult{Input: in, Rationale: strings.TrimSpace(raw.Rationale)}, nil
}

// cleanLabels trims, dedupes (case-insensitively), and caps a label list.
func cleanLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		key := strings.ToLower(l)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
		if len(out) == maxConceptLabels {
			break
		}
	}
	return out
}
