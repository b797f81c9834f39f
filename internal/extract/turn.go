package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saurav/teachback/internal/llm"
)

// TurnSchema defines the JSON schema for one AI-student turn: the reply
// shown to the learner plus the tutor-side assessment of the turn.
var TurnSchema = &llm.Schema{
	Name:        "student-turn",
	Description: "The AI student's next reply in a teach-back conversation, with a hidden assessment of the learner's last explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "What the student says next: a reaction plus one question",
			},
			"quality": map[string]any{
				"type":        "number",
				"minimum":     0.0,
				"maximum":     1.0,
				"description": "How good the learner's last explanation was, 0 (confused or wrong) to 1 (clear and correct)",
			},
			"leading_question": map[string]any{
				"type":        "boolean",
				"description": "True if the reply had to feed the learner the answer to keep the conversation moving",
			},
		},
		"required":             []any{"reply", "quality", "leading_question"},
		"additionalProperties": false,
	},
}

const studentSystemPrompt = `You are a curious student being taught a topic by a learner who is practicing the Feynman technique: they learn by teaching you. Stay in character as the student. Never lecture; ask.

Your stance for this turn: %s

After composing your reply, privately assess the learner's LAST message:
- quality: 0.0-1.0. Below 0.4 means confused or factually wrong, 0.8+ means you could now explain it to someone else.
- leading_question: true only if your reply effectively hands the learner the answer because their explanation stalled.
The learner never sees the assessment. Keep replies to a few sentences and end with exactly one question.`

// stanceInstructions maps the coordinator's strategy name to the
// student persona for the turn.
var stanceInstructions = map[string]string{
	"orient":    "You know almost nothing about the topic. Ask broad what-is-this questions and let the learner set the frame.",
	"probe":     "You follow the basics. Pick one thing the learner said and ask how or why it works.",
	"challenge": "You are getting it. Pose an edge case or a counterexample and ask the learner to resolve it.",
	"remediate": "You are lost. Say what confused you and ask the learner to restart from the most basic idea.",
}

// TurnResult is one validated AI-student turn.
type TurnResult struct {
	Reply           string
	Quality         float64
	LeadingQuestion bool
}

// StudentTurn generates the AI student's next reply for the given
// teaching stance, plus the hidden per-turn assessment.
func (s *Service) StudentTurn(ctx context.Context, t *Transcript, strategy string) (*TurnResult, error) {
	ctx = llm.WithPurpose(ctx, "student-turn")

	stance, ok := stanceInstructions[strategy]
	if !ok {
		stance = stanceInstructions["probe"]
	}

	userMsg, err := buildTranscriptMessage(t)
	if err != nil {
		return nil, fmt.Errorf("build turn prompt: %w", err)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: fmt.Sprintf(studentSystemPrompt, stance),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      TurnSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: 0.7, // the student should feel alive, not scripted
	})
	if err != nil {
		return nil, fmt.Errorf("student turn failed: %w", err)
	}

	var raw struct {
		Reply           string  `json:"reply"`
		Quality         float64 `json:"quality"`
		LeadingQuestion bool    `json:"leading_question"`
	}
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse turn response: %w", err)
	}

	raw.Reply = strings.TrimSpace(raw.Reply)
	if raw.Reply == "" {
		return nil, fmt.Errorf("student turn returned an empty reply")
	}
	if raw.Quality < 0 || raw.Quality > 1 {
		return nil, fmt.Errorf("student turn quality %g out of range", raw.Quality)
	}

	return &TurnResult{
		Reply:           raw.Reply,
		Quality:         raw.Quality,
		LeadingQuestion: raw.LeadingQuestion,
	}, nil
}
