package session

import (
	"errors"
	"math"
	"testing"

	"github.com/saurav/teachback/internal/validation"
)

const epsilon = 0.0001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// startActive walks a fresh coordinator to StatusActive.
func startActive(t *testing.T, cfg Config) *Coordinator {
	t.Helper()
	c := New(cfg)
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.Ready(); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c
}

func TestLifecycleHappyPath(t *testing.T) {
	c := New(Config{Topic: "pointers", Mode: "explain"})
	if c.Status() != StatusIdle {
		t.Fatalf("new coordinator status = %v, want idle", c.Status())
	}
	if c.ID() == "" {
		t.Error("expected a generated session id")
	}
	if c.Strategy() != StrategyOrient {
		t.Errorf("initial strategy = %v, want orient", c.Strategy())
	}

	steps := []struct {
		name string
		do   func() error
		want Status
	}{
		{"Begin", c.Begin, StatusLoading},
		{"Ready", c.Ready, StatusReady},
		{"Start", c.Start, StatusActive},
		{"ForceFinish", c.ForceFinish, StatusScoring},
		{"CompleteScoring", c.CompleteScoring, StatusCompleted},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if c.Status() != s.want {
			t.Errorf("after %s status = %v, want %v", s.name, c.Status(), s.want)
		}
	}
}

func TestIllegalTransitionRejected(t *testing.T) {
	c := New(Config{})
	err := c.Start()
	if err == nil {
		t.Fatal("expected error starting from idle")
	}
	var bad *ErrBadTransition
	if !errors.As(err, &bad) {
		t.Fatalf("expected ErrBadTransition, got %T", err)
	}
	if bad.From != StatusIdle || bad.To != StatusActive {
		t.Errorf("bad transition = %v -> %v, want idle -> active", bad.From, bad.To)
	}
	if c.Status() != StatusIdle {
		t.Errorf("status changed on rejected transition: %v", c.Status())
	}
}

func TestRecordTurnRequiresActive(t *testing.T) {
	c := New(Config{})
	if _, err := c.RecordTurn(TurnSignal{Quality: 0.5}); err == nil {
		t.Error("expected error recording a turn while idle")
	}
}

func TestRecordTurnValidatesQuality(t *testing.T) {
	c := startActive(t, Config{})
	for _, q := range []float64{-0.1, 1.5} {
		_, err := c.RecordTurn(TurnSignal{Quality: q})
		if !validation.Is(err) {
			t.Errorf("quality %g: expected validation error, got %v", q, err)
		}
	}
	if c.Turn() != 0 {
		t.Errorf("rejected turns were counted: turn = %d", c.Turn())
	}
}

func TestOrientThenProbeThenChallenge(t *testing.T) {
	c := startActive(t, Config{})

	out, err := c.RecordTurn(TurnSignal{Quality: 0.5})
	if err != nil {
		t.Fatalf("turn 0: %v", err)
	}
	if out.Strategy != StrategyOrient {
		t.Errorf("after turn 0 strategy = %v, want orient", out.Strategy)
	}

	out, err = c.RecordTurn(TurnSignal{Quality: 0.5})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if out.Strategy != StrategyProbe {
		t.Errorf("after turn 1 strategy = %v, want probe", out.Strategy)
	}

	out, err = c.RecordTurn(TurnSignal{Quality: 0.85})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if out.Strategy != StrategyChallenge {
		t.Errorf("strong turn strategy = %v, want challenge", out.Strategy)
	}
}

func TestConsecutiveFailuresTriggerRemediation(t *testing.T) {
	c := startActive(t, Config{})
	c.RecordTurn(TurnSignal{Quality: 0.5})
	c.RecordTurn(TurnSignal{Quality: 0.5}) // now probing

	if _, err := c.RecordTurn(TurnSignal{Quality: 0.2}); err != nil {
		t.Fatal(err)
	}
	if c.Strategy() != StrategyProbe {
		t.Fatalf("one weak turn moved strategy to %v", c.Strategy())
	}
	out, err := c.RecordTurn(TurnSignal{Quality: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != StrategyRemediate {
		t.Fatalf("second weak turn strategy = %v, want remediate", out.Strategy)
	}

	log := c.AuditLog()
	last := log[len(log)-1]
	if last.Reason != "repeated weak explanations" {
		t.Errorf("audit reason = %q", last.Reason)
	}
	if last.From != StrategyProbe || last.To != StrategyRemediate {
		t.Errorf("audit transition = %v -> %v", last.From, last.To)
	}
}

func TestLeadingQuestionsTriggerRemediation(t *testing.T) {
	c := startActive(t, Config{})
	for i := 0; i < 2; i++ {
		if _, err := c.RecordTurn(TurnSignal{Quality: 0.5, LeadingQuestion: true}); err != nil {
			t.Fatal(err)
		}
	}
	if c.Strategy() == StrategyRemediate {
		t.Fatal("remediation triggered before penalty threshold")
	}
	out, err := c.RecordTurn(TurnSignal{Quality: 0.5, LeadingQuestion: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != StrategyRemediate {
		t.Fatalf("strategy = %v, want remediate after three leading questions", out.Strategy)
	}
	log := c.AuditLog()
	if got := log[len(log)-1].Reason; got != "leaning on leading questions" {
		t.Errorf("audit reason = %q", got)
	}
}

func TestRemediationRecovers(t *testing.T) {
	c := startActive(t, Config{})
	c.RecordTurn(TurnSignal{Quality: 0.2})
	c.RecordTurn(TurnSignal{Quality: 0.2}) // remediate
	if c.Strategy() != StrategyRemediate {
		t.Fatalf("setup: strategy = %v", c.Strategy())
	}

	c.RecordTurn(TurnSignal{Quality: 0.5})
	if c.Strategy() != StrategyRemediate {
		t.Errorf("recovered below threshold: %v", c.Strategy())
	}
	out, err := c.RecordTurn(TurnSignal{Quality: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if out.Strategy != StrategyProbe {
		t.Errorf("after recovery strategy = %v, want probe", out.Strategy)
	}
}

func TestScoringTriggeredAtTurnBound(t *testing.T) {
	c := startActive(t, Config{MaxTurns: 3})

	out, err := c.RecordTurn(TurnSignal{Quality: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if out.ScoringDue {
		t.Error("scoring due after first turn")
	}
	if c.Status() != StatusActive {
		t.Errorf("status = %v, want active", c.Status())
	}

	out, err = c.RecordTurn(TurnSignal{Quality: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if !out.ScoringDue {
		t.Error("scoring not due at turn bound")
	}
	if c.Status() != StatusScoring {
		t.Errorf("status = %v, want scoring", c.Status())
	}

	if _, err := c.RecordTurn(TurnSignal{Quality: 0.5}); err == nil {
		t.Error("turn accepted after scoring began")
	}
}

func TestFailIsAbsorbing(t *testing.T) {
	c := startActive(t, Config{})
	cause := errors.New("provider unavailable")
	c.Fail(cause)
	if c.Status() != StatusError {
		t.Fatalf("status = %v, want error", c.Status())
	}
	if !errors.Is(c.Err(), cause) {
		t.Errorf("Err() = %v, want %v", c.Err(), cause)
	}

	if err := c.Begin(); err == nil {
		t.Error("transition allowed out of error state")
	}
	c.Fail(errors.New("second"))
	if !errors.Is(c.Err(), cause) {
		t.Error("second Fail overwrote the original error")
	}
}

func TestFailIgnoredWhenCompleted(t *testing.T) {
	c := startActive(t, Config{})
	if err := c.ForceFinish(); err != nil {
		t.Fatal(err)
	}
	if err := c.CompleteScoring(); err != nil {
		t.Fatal(err)
	}
	c.Fail(errors.New("late failure"))
	if c.Status() != StatusCompleted {
		t.Errorf("completed session moved to %v", c.Status())
	}
}

func TestResetDiscardsTurnData(t *testing.T) {
	c := startActive(t, Config{})
	c.RecordTurn(TurnSignal{Quality: 0.9})
	c.RecordTurn(TurnSignal{Quality: 0.2})
	c.RecordTurn(TurnSignal{Quality: 0.2})
	c.Fail(errors.New("boom"))

	c.Reset()
	if c.Status() != StatusIdle {
		t.Errorf("status = %v, want idle", c.Status())
	}
	if c.Strategy() != StrategyOrient {
		t.Errorf("strategy = %v, want orient", c.Strategy())
	}
	if c.Turn() != 0 {
		t.Errorf("turn = %d, want 0", c.Turn())
	}
	if len(c.AuditLog()) != 0 {
		t.Errorf("audit log survived reset: %d entries", len(c.AuditLog()))
	}
	if c.AverageQuality() != 0 {
		t.Errorf("average quality = %g after reset", c.AverageQuality())
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v after reset", c.Err())
	}

	if err := c.Begin(); err != nil {
		t.Errorf("Begin after reset: %v", err)
	}
}

func TestAverageQuality(t *testing.T) {
	c := startActive(t, Config{})
	if c.AverageQuality() != 0 {
		t.Errorf("empty average = %g, want 0", c.AverageQuality())
	}
	for _, q := range []float64{0.5, 0.7, 0.9} {
		if _, err := c.RecordTurn(TurnSignal{Quality: q}); err != nil {
			t.Fatal(err)
		}
	}
	if got := c.AverageQuality(); !almostEqual(got, 0.7) {
		t.Errorf("average quality = %g, want 0.7", got)
	}
}

func TestAuditEntriesCarryTurnAndSignal(t *testing.T) {
	c := startActive(t, Config{})
	c.RecordTurn(TurnSignal{Quality: 0.5})
	c.RecordTurn(TurnSignal{Quality: 0.6}) // orient -> probe on turn index 1

	log := c.AuditLog()
	if len(log) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(log))
	}
	e := log[0]
	if e.Turn != 1 {
		t.Errorf("entry turn = %d, want 1", e.Turn)
	}
	if !almostEqual(e.Signal, 0.6) {
		t.Errorf("entry signal = %g, want 0.6", e.Signal)
	}
	if e.From != StrategyOrient || e.To != StrategyProbe {
		t.Errorf("entry transition = %v -> %v", e.From, e.To)
	}
	if e.Reason == "" {
		t.Error("entry missing reason")
	}
}
