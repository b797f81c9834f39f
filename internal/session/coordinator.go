// Package session sequences one turn-bounded teaching session. The
// coordinator owns none of the business math — it tracks lifecycle status,
// the per-turn teaching strategy, and penalty counters, and decides when
// scoring may run. All heavy lifting (extraction, grading, rating, graph
// updates) belongs to the packages it sequences.
package session

import (
	"github.com/google/uuid"

	"github.com/saurav/teachback/internal/validation"
)

// DefaultMaxTurns bounds a session when the caller doesn't say otherwise.
const DefaultMaxTurns = 10

// Config configures one session.
type Config struct {
	Topic    string
	Mode     string
	MaxTurns int
}

// TurnSignal is the externally supplied per-turn observation: a normalized
// real-time quality score plus whether the tutor had to resort to a
// leading question to keep the learner going.
type TurnSignal struct {
	Quality         float64
	LeadingQuestion bool
}

// TurnOutcome reports what a recorded turn changed.
type TurnOutcome struct {
	Turn       int
	Strategy   Strategy
	ScoringDue bool
}

// AuditEntry records one strategy transition. The log is write-only
// within a session; Reset discards it with the rest of the turn data.
type AuditEntry struct {
	Turn   int      `json:"turn"`
	From   Strategy `json:"from"`
	To     Strategy `json:"to"`
	Signal float64  `json:"signal"`
	Reason string   `json:"reason"`
}

// Coordinator is the session state machine.
type Coordinator struct {
	id       string
	topic    string
	mode     string
	maxTurns int

	status   Status
	strategy Strategy
	turn     int

	signals             []float64
	consecutiveFailures int
	leadingPenalty      int

	audit   []AuditEntry
	lastErr error
}

// New creates an idle coordinator.
func New(cfg Config) *Coordinator {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	return &Coordinator{
		id:       uuid.NewString(),
		topic:    cfg.Topic,
		mode:     cfg.Mode,
		maxTurns: cfg.MaxTurns,
		status:   StatusIdle,
		strategy: StrategyOrient,
	}
}

func (c *Coordinator) ID() string    { return c.id }
func (c *Coordinator) Topic() string { return c.topic }
func (c *Coordinator) Mode() string  { return c.mode }

// Status returns the current lifecycle status.
func (c *Coordinator) Status() Status { return c.status }

// Strategy returns the current teaching strategy.
func (c *Coordinator) Strategy() Strategy { return c.strategy }

// Turn returns the number of turns recorded so far.
func (c *Coordinator) Turn() int { return c.turn }

// Err returns the error that moved the session to StatusError, if any.
func (c *Coordinator) Err() error { return c.lastErr }

// AuditLog returns a copy of the strategy transition log.
func (c *Coordinator) AuditLog() []AuditEntry {
	out := make([]AuditEntry, len(c.audit))
	copy(out, c.audit)
	return out
}

// AverageQuality returns the mean turn quality signal, 0 with no turns.
// This is the rqs_avg handed to the criterion scorer.
func (c *Coordinator) AverageQuality() float64 {
	if len(c.signals) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.signals {
		sum += s
	}
	return sum / float64(len(c.signals))
}

func (c *Coordinator) transition(to Status) error {
	if !canTransition(c.status, to) {
		return &ErrBadTransition{From: c.status, To: to}
	}
	c.status = to
	return nil
}

// Begin starts loading session context (idle → loading).
func (c *Coordinator) Begin() error { return c.transition(StatusLoading) }

// Ready marks context loaded (loading → ready).
func (c *Coordinator) Ready() error { return c.transition(StatusReady) }

// Start activates the session (ready → active).
func (c *Coordinator) Start() error { return c.transition(StatusActive) }

// RecordTurn folds one turn's quality signal into the session. Only legal
// while active. When the turn counter reaches maxTurns-1 the session moves
// to scoring; scoring is never triggered mid-turn.
func (c *Coordinator) RecordTurn(sig TurnSignal) (*TurnOutcome, error) {
	if c.status != StatusActive {
		return nil, &ErrBadTransition{From: c.status, To: StatusScoring}
	}
	if sig.Quality < 0 || sig.Quality > 1 {
		return nil, validation.Errorf("quality", "must be in 0..1, got %g", sig.Quality)
	}

	c.signals = append(c.signals, sig.Quality)
	if sig.Quality < failureQuality {
		c.consecutiveFailures++
	} else {
		c.consecutiveFailures = 0
	}
	if sig.LeadingQuestion {
		c.leadingPenalty++
	}

	next, reason := nextStrategy(c.strategy, c.turn, sig.Quality, c.consecutiveFailures, c.leadingPenalty)
	if next != c.strategy {
		c.audit = append(c.audit, AuditEntry{
			Turn:   c.turn,
			From:   c.strategy,
			To:     next,
			Signal: sig.Quality,
			Reason: reason,
		})
		c.strategy = next
		if next == StrategyRemediate {
			// Penalty consumed; remediation starts from a clean slate.
			c.leadingPenalty = 0
			c.consecutiveFailures = 0
		}
	}

	c.turn++
	out := &TurnOutcome{Turn: c.turn, Strategy: c.strategy}

	if c.turn >= c.maxTurns-1 {
		if err := c.transition(StatusScoring); err != nil {
			return nil, err
		}
		out.ScoringDue = true
	}
	return out, nil
}

// ForceFinish ends the turn loop early (active → scoring).
func (c *Coordinator) ForceFinish() error { return c.transition(StatusScoring) }

// CompleteScoring records that scoring finished (scoring → completed).
func (c *Coordinator) CompleteScoring() error { return c.transition(StatusCompleted) }

// Fail moves any non-terminal session to the absorbing error state.
func (c *Coordinator) Fail(err error) {
	if c.status == StatusCompleted || c.status == StatusError {
		return
	}
	c.status = StatusError
	c.lastErr = err
}

// Reset returns the coordinator to idle, discarding all turn data. It is
// the only way out of StatusError and is never invoked automatically.
func (c *Coordinator) Reset() {
	c.status = StatusIdle
	c.strategy = StrategyOrient
	c.turn = 0
	c.signals = nil
	c.consecutiveFailures = 0
	c.leadingPenalty = 0
	c.audit = nil
	c.lastErr = nil
}
