package extract

import "github.com/saurav/teachback/internal/llm"

// OutcomeSchema defines the JSON schema for session outcome extraction.
var OutcomeSchema = &llm.Schema{
	Name:        "session-outcome",
	Description: "Structured summary of a teach-back session: what the learner demonstrably understands and where the gaps are",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One or two sentences summarizing the session",
			},
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "Overall explanation quality, 0-100",
			},
			"mastered": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Concept labels the learner explained correctly and confidently",
			},
			"gaps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Concept labels the learner struggled with, skipped, or got wrong",
			},
		},
		"required":             []any{"summary", "score", "mastered", "gaps"},
		"additionalProperties": false,
	},
}

// CriteriaSchema defines the JSON schema for criterion scoring responses.
// Each criterion is scored on a 1-5 scale patterned on the SOLO taxonomy.
var CriteriaSchema = &llm.Schema{
	Name:        "explanation-criteria",
	Description: "Rubric scores for a learner's explanation across five criteria, each 1 (prestructural) to 5 (extended abstract)",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"completeness": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Coverage of the topic's essential parts",
			},
			"depth": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Mechanism and causal reasoning beyond surface facts",
			},
			"clarity": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "How easy the explanation is to follow",
			},
			"structural_coherence": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Logical ordering and connection between ideas",
			},
			"pedagogical_insight": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Use of examples, analogies, and anticipation of confusion",
			},
			"rationale": map[string]any{
				"type":        "string",
				"description": "Brief justification for the scores, two sentences at most",
			},
		},
		"required": []any{
			"completeness", "depth", "clarity",
			"structural_coherence", "pedagogical_insight", "rationale",
		},
		"additionalProperties": false,
	},
}
