package knowledge

import (
	"math"
	"testing"
	"time"
)

const epsilon = 0.0001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestEffectiveMastery_NeverSeen(t *testing.T) {
	n := &ConceptNode{Mastery: 0.6, DecayRate: 0.3}
	if got := n.EffectiveMastery(time.Now()); !almostEqual(got, 0.6) {
		t.Errorf("EffectiveMastery = %f, want 0.6 (no decay before first exposure)", got)
	}
}

func TestEffectiveMastery_ZeroElapsed(t *testing.T) {
	now := time.Now()
	n := &ConceptNode{Mastery: 0.8, DecayRate: 0.3, LastSeen: &now}
	if got := n.EffectiveMastery(now); !almostEqual(got, 0.8) {
		t.Errorf("EffectiveMastery = %f, want 0.8 at days=0", got)
	}
}

func TestEffectiveMastery_Ebbinghaus(t *testing.T) {
	now := time.Now()
	seen := now.AddDate(0, 0, -10)
	n := &ConceptNode{Mastery: 1.0, DecayRate: 0.5, LastSeen: &seen}

	// stability = 10/0.5 = 20 days; effective = exp(-10/20)
	want := math.Exp(-0.5)
	if got := n.EffectiveMastery(now); !almostEqual(got, want) {
		t.Errorf("EffectiveMastery = %f, want %f", got, want)
	}
}

func TestEffectiveMastery_MonotoneInTime(t *testing.T) {
	now := time.Now()
	seen := now.AddDate(0, 0, -1)
	n := &ConceptNode{Mastery: 0.9, DecayRate: 0.4, LastSeen: &seen}

	prev := n.EffectiveMastery(now)
	for days := 2; days <= 60; days++ {
		eff := n.EffectiveMastery(now.AddDate(0, 0, days))
		if eff > prev+epsilon {
			t.Fatalf("effective mastery increased with elapsed time: %f -> %f at day %d", prev, eff, days)
		}
		prev = eff
	}
}

func TestEffectiveMastery_FasterDecayRateFadesFaster(t *testing.T) {
	now := time.Now()
	seen := now.AddDate(0, 0, -7)
	slow := &ConceptNode{Mastery: 0.8, DecayRate: 0.1, LastSeen: &seen}
	fast := &ConceptNode{Mastery: 0.8, DecayRate: 0.5, LastSeen: &seen}

	if slow.EffectiveMastery(now) <= fast.EffectiveMastery(now) {
		t.Errorf("higher decay rate should forget faster: slow=%f fast=%f",
			slow.EffectiveMastery(now), fast.EffectiveMastery(now))
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Loop Invariants", "loop-invariants"},
		{"  Big-O  Notation ", "big-o-notation"},
		{"TCP/IP", "tcp-ip"},
		{"what's a monad?", "what-s-a-monad"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRecordProvenance_Bounded(t *testing.T) {
	n := &ConceptNode{}
	for i := 0; i < 15; i++ {
		n.recordProvenance("s")
	}
	if len(n.SourceSessions) != MaxProvenance {
		t.Errorf("provenance length = %d, want %d", len(n.SourceSessions), MaxProvenance)
	}
}
