package rating

import (
	"context"
	"testing"
	"time"

	"github.com/saurav/teachback/internal/validation"
)

// memRepo is an in-memory Repo for tests.
type memRepo struct {
	records map[string]*Record
	history []HistoryEntry
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]*Record)}
}

func key(topic string, dim Dimension) string { return topic + "/" + string(dim) }

func (m *memRepo) Get(_ context.Context, topic string, dim Dimension) (*Record, error) {
	rec, ok := m.records[key(topic, dim)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memRepo) Put(_ context.Context, rec *Record) error {
	cp := *rec
	m.records[key(rec.Topic, rec.Dimension)] = &cp
	return nil
}

func (m *memRepo) AppendHistory(_ context.Context, entry HistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

func (m *memRepo) History(_ context.Context, topic string, dim Dimension, limit int) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for i := len(m.history) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		e := m.history[i]
		if e.Topic == topic && e.Dimension == dim {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestExpected(t *testing.T) {
	cases := []struct {
		rating int
		want   float64
	}{
		{1200, 3.0},
		{800, 1.0},
		{1600, 5.0},
		{400, 1.0},  // clamped at the bottom edge
		{2400, 5.0}, // clamped at the top edge
		{1000, 2.0},
	}
	for _, c := range cases {
		if got := Expected(c.rating); got != c.want {
			t.Errorf("Expected(%d) = %f, want %f", c.rating, got, c.want)
		}
	}
}

func TestApply_SpecExample(t *testing.T) {
	rec := Record{Topic: "sorting", Dimension: DimDepth, Rating: 1200, SessionCount: 1, PeakRating: 1200}
	next, entry, err := Apply(rec, 4, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	// expected=3.0, K=40, delta = 40*(4-3) = 40
	if next.Rating != 1240 {
		t.Errorf("rating = %d, want 1240", next.Rating)
	}
	if next.KFactor != 40 {
		t.Errorf("k_factor = %d, want 40", next.KFactor)
	}
	if entry.Delta != entry.RatingAfter-entry.RatingBefore {
		t.Errorf("delta = %d, want after-before = %d", entry.Delta, entry.RatingAfter-entry.RatingBefore)
	}
}

func TestApply_KFactorSchedule(t *testing.T) {
	for _, c := range []struct {
		sessions int
		wantK    int
	}{{0, 40}, {5, 40}, {6, 16}, {50, 16}} {
		rec := Record{Topic: "t", Dimension: DimClarity, Rating: 1200, SessionCount: c.sessions}
		next, _, err := Apply(rec, 5, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if next.KFactor != c.wantK {
			t.Errorf("sessions=%d: k = %d, want %d", c.sessions, next.KFactor, c.wantK)
		}
	}
}

func TestApply_PeakNonDecreasing(t *testing.T) {
	rec := Record{Topic: "t", Dimension: DimDepth, Rating: 1200, PeakRating: 1200}
	scores := []int{5, 5, 1, 1, 1, 3, 5, 1}
	peak := rec.PeakRating
	for _, s := range scores {
		next, _, err := Apply(rec, s, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		if next.PeakRating < peak {
			t.Fatalf("peak decreased: %d -> %d", peak, next.PeakRating)
		}
		peak = next.PeakRating
		rec = next
	}
}

func TestApply_ObservedOutOfRange(t *testing.T) {
	rec := Record{Topic: "t", Dimension: DimDepth, Rating: 1200}
	if _, _, err := Apply(rec, 0, time.Now()); !validation.Is(err) {
		t.Errorf("observed=0: want validation error, got %v", err)
	}
	if _, _, err := Apply(rec, 6, time.Now()); !validation.Is(err) {
		t.Errorf("observed=6: want validation error, got %v", err)
	}
}

func TestEngine_LazyCreationAndHistory(t *testing.T) {
	repo := newMemRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	res, err := engine.Update(ctx, "recursion", DimClarity, 4, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res.Before != InitialRating {
		t.Errorf("before = %d, want lazy default %d", res.Before, InitialRating)
	}
	if len(repo.history) != 1 {
		t.Fatalf("history rows = %d, want exactly 1 per update", len(repo.history))
	}

	// Second update continues from the stored record.
	if _, err := engine.Update(ctx, "recursion", DimClarity, 4, time.Now()); err != nil {
		t.Fatal(err)
	}
	rec, _ := repo.Get(ctx, "recursion", DimClarity)
	if rec.SessionCount != 2 {
		t.Errorf("session_count = %d, want 2", rec.SessionCount)
	}
	if len(repo.history) != 2 {
		t.Errorf("history rows = %d, want 2", len(repo.history))
	}
}

func TestEngine_UnknownDimension(t *testing.T) {
	engine := NewEngine(newMemRepo())
	if _, err := engine.Update(context.Background(), "t", Dimension("vibes"), 3, time.Now()); !validation.Is(err) {
		t.Errorf("want validation error for unknown dimension, got %v", err)
	}
}

func TestEngine_UpdateAllStableOrder(t *testing.T) {
	engine := NewEngine(newMemRepo())
	observed := map[Dimension]int{
		DimOverall:      4,
		DimCompleteness: 3,
		DimDepth:        5,
	}
	results, err := engine.UpdateAll(context.Background(), "t", observed, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	want := []Dimension{DimCompleteness, DimDepth, DimOverall}
	if len(results) != len(want) {
		t.Fatalf("results = %d, want %d", len(results), len(want))
	}
	for i, dim := range want {
		if results[i].Dimension != dim {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Dimension, dim)
		}
	}
}
