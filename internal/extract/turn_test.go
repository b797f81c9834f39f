package extract

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/saurav/teachback/internal/llm"
)

func TestStudentTurn(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"reply": "Okay, but why does halving always find the target?",
			"quality": 0.7,
			"leading_question": false
		}`),
	})
	svc := NewService(mock, DefaultConfig())

	res, err := svc.StudentTurn(context.Background(), testTranscript, "probe")
	if err != nil {
		t.Fatalf("StudentTurn: %v", err)
	}
	if res.Quality != 0.7 || res.LeadingQuestion {
		t.Errorf("assessment = %+v", res)
	}
	if res.Reply == "" {
		t.Error("empty reply")
	}

	req := mock.Calls[0]
	if req.Schema != TurnSchema {
		t.Error("request missing turn schema")
	}
	if !strings.Contains(req.System, stanceInstructions["probe"]) {
		t.Error("system prompt missing probe stance")
	}
}

func TestStudentTurnUnknownStrategyFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"reply":"Hm, say more?","quality":0.5,"leading_question":false}`),
	})
	svc := NewService(mock, DefaultConfig())

	if _, err := svc.StudentTurn(context.Background(), testTranscript, "no-such-stance"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.Calls[0].System, stanceInstructions["probe"]) {
		t.Error("unknown strategy should fall back to the probe stance")
	}
}

func TestStudentTurnRejectsBadAssessment(t *testing.T) {
	cases := []string{
		`{"reply":"","quality":0.5,"leading_question":false}`,
		`{"reply":"ok","quality":1.4,"leading_question":false}`,
	}
	for _, body := range cases {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(body)})
		svc := NewService(mock, DefaultConfig())
		if _, err := svc.StudentTurn(context.Background(), testTranscript, "orient"); err == nil {
			t.Errorf("response %s accepted", body)
		}
	}
}
