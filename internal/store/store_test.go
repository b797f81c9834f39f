package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/saurav/teachback/internal/knowledge"
	"github.com/saurav/teachback/internal/rating"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceIsGlobalAcrossEventTypes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.EventRepo()

	if err := events.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Topic: "t", Action: "start"}); err != nil {
		t.Fatal(err)
	}
	if err := events.AppendReviewEvent(ctx, ReviewEventData{Concept: "c", Quality: 4, IntervalDays: 1, EaseFactor: 2.5}); err != nil {
		t.Fatal(err)
	}
	if err := events.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Topic: "t", Action: "end"}); err != nil {
		t.Fatal(err)
	}

	recs, err := events.QuerySessionEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("session events = %d, want 2", len(recs))
	}
	// Newest first; the review event consumed sequence 2.
	if recs[0].Sequence != 3 || recs[1].Sequence != 1 {
		t.Errorf("sequences = %d, %d; want 3, 1", recs[0].Sequence, recs[1].Sequence)
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	g := knowledge.NewGraph()
	out := &knowledge.Outcome{
		ID: "s1", Date: time.Now(), Title: "Recursion", Score: 80,
		Mastered: []string{"recursion"},
	}
	if err := g.ApplyOutcome(out, time.Now()); err != nil {
		t.Fatal(err)
	}

	err = repo.Save(ctx, &Snapshot{
		Data: SnapshotData{Version: 1, Graph: g, Badges: []string{"first-lesson"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot")
	}
	if snap.Sequence == 0 {
		t.Error("sequence not assigned on save")
	}
	if snap.Data.Graph == nil || len(snap.Data.Graph.Nodes) != 1 {
		t.Errorf("graph did not round-trip: %+v", snap.Data.Graph)
	}
	if len(snap.Data.Badges) != 1 || snap.Data.Badges[0] != "first-lesson" {
		t.Errorf("badges did not round-trip: %v", snap.Data.Badges)
	}
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := repo.Save(ctx, &Snapshot{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Data:      SnapshotData{Version: i},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := repo.Prune(ctx, 2); err != nil {
		t.Fatalf("prune: %v", err)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("snapshots after prune = %d, want 2", count)
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Data.Version != 4 {
		t.Errorf("latest after prune has version %d, want 4", snap.Data.Version)
	}
}

func TestSessionTally(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.EventRepo()

	records := []SessionEventData{
		{SessionID: "s1", Topic: "t", Action: "start"},
		{SessionID: "s1", Topic: "t", Action: "end", Grade: "A", LegacyScore: 100},
		{SessionID: "s2", Topic: "t", Action: "end", Grade: "C", LegacyScore: 55},
		{SessionID: "s3", Topic: "t", Action: "abort"},
	}
	for _, rec := range records {
		if err := events.AppendSessionEvent(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	tally, err := events.SessionTally(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tally.Completed != 2 {
		t.Errorf("completed = %d, want 2", tally.Completed)
	}
	if tally.Perfect != 1 {
		t.Errorf("perfect = %d, want 1", tally.Perfect)
	}
	if tally.AGrades != 1 {
		t.Errorf("a grades = %d, want 1", tally.AGrades)
	}
}

func TestBadgeEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.EventRepo()

	for _, id := range []string{"first-lesson", "reviewer"} {
		err := events.AppendBadgeEvent(ctx, BadgeEventData{BadgeID: id, Tier: "common"})
		if err != nil {
			t.Fatal(err)
		}
	}

	ids, err := events.BadgeIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "first-lesson" || ids[1] != "reviewer" {
		t.Errorf("badge ids = %v", ids)
	}
}

func TestRatingRepoRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.RatingRepo()

	rec, err := repo.Get(ctx, "recursion", rating.DimClarity)
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatal("expected nil record for untouched pair")
	}

	put := rating.NewRecord("recursion", rating.DimClarity)
	put.Rating = 1240
	put.SessionCount = 2
	put.PeakRating = 1240
	if err := repo.Put(ctx, put); err != nil {
		t.Fatal(err)
	}

	rec, err = repo.Get(ctx, "recursion", rating.DimClarity)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Rating != 1240 || rec.SessionCount != 2 {
		t.Errorf("record = %+v", rec)
	}

	// Upsert overwrites.
	put.Rating = 1260
	if err := repo.Put(ctx, put); err != nil {
		t.Fatal(err)
	}
	rec, _ = repo.Get(ctx, "recursion", rating.DimClarity)
	if rec.Rating != 1260 {
		t.Errorf("rating after upsert = %d, want 1260", rec.Rating)
	}
}

func TestRatingHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.RatingRepo()

	now := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.AppendHistory(ctx, rating.HistoryEntry{
			Topic:        "recursion",
			Dimension:    rating.DimDepth,
			RatingBefore: 1200 + i*10,
			RatingAfter:  1210 + i*10,
			Delta:        10,
			Timestamp:    now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := repo.History(ctx, "recursion", rating.DimDepth, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].RatingAfter != 1230 {
		t.Errorf("newest entry after = %d, want 1230", entries[0].RatingAfter)
	}
}

func TestLLMEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.EventRepo()

	err := events.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "anthropic",
		Model:        "claude-haiku",
		Purpose:      "outcome-extract",
		InputTokens:  500,
		OutputTokens: 120,
		LatencyMs:    800,
		Success:      true,
		RequestBody:  "[user]\nTeach me.",
		ResponseBody: `{"score":80}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = events.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-haiku", Purpose: "outcome-extract",
		Success: false, ErrorMessage: "rate limited", LatencyMs: 200,
	})
	if err != nil {
		t.Fatal(err)
	}

	recs, err := events.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("llm events = %d, want 2", len(recs))
	}
	if recs[0].Success {
		t.Error("newest event should be the failure")
	}

	got, err := events.GetLLMEvent(ctx, recs[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ResponseBody != `{"score":80}` {
		t.Errorf("event by id = %+v", got)
	}

	missing, err := events.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil for unknown id")
	}

	usage, err := events.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(usage) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(usage))
	}
	u := usage[0]
	if u.Purpose != "outcome-extract" || u.Requests != 2 || u.Failures != 1 {
		t.Errorf("usage = %+v", u)
	}
	if u.InputTokens != 500 || u.OutputTokens != 120 {
		t.Errorf("usage tokens = %+v", u)
	}
}
