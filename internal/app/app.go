// Package app wires the domain packages together: it loads learner state
// from the store, runs the post-session scoring pipeline, and persists the
// results. The TUI screens and the CLI commands both sit on top of it.
package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/saurav/teachback/internal/achievements"
	"github.com/saurav/teachback/internal/extract"
	"github.com/saurav/teachback/internal/grading"
	"github.com/saurav/teachback/internal/knowledge"
	"github.com/saurav/teachback/internal/rating"
	"github.com/saurav/teachback/internal/recommend"
	"github.com/saurav/teachback/internal/spacedrep"
	"github.com/saurav/teachback/internal/store"
)

// snapshotKeep is how many snapshots survive pruning.
const snapshotKeep = 10

// App holds the loaded learner state and the services operating on it.
type App struct {
	Store      *store.Store
	Graph      *knowledge.Graph
	Scheduler  *spacedrep.Scheduler
	Ratings    *rating.Engine
	GradingCfg grading.Config

	// Extractor is nil when no LLM provider is configured; commands that
	// need it must check.
	Extractor *extract.Service
}

// Load restores learner state from the latest snapshot, or starts fresh
// when none exists.
func Load(ctx context.Context, s *store.Store) (*App, error) {
	snap, err := s.SnapshotRepo().Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	graph := knowledge.NewGraph()
	var reviews *spacedrep.SnapshotData
	if snap != nil {
		if snap.Data.Graph != nil {
			graph = snap.Data.Graph
		}
		reviews = snap.Data.Reviews
	}

	return &App{
		Store:      s,
		Graph:      graph,
		Scheduler:  spacedrep.NewScheduler(reviews),
		Ratings:    rating.NewEngine(s.RatingRepo()),
		GradingCfg: grading.DefaultConfig(),
	}, nil
}

// SaveSnapshot persists the current graph and review state and prunes old
// snapshots.
func (a *App) SaveSnapshot(ctx context.Context) error {
	badges, err := a.Store.EventRepo().BadgeIDs(ctx)
	if err != nil {
		return fmt.Errorf("load badges for snapshot: %w", err)
	}

	err = a.Store.SnapshotRepo().Save(ctx, &store.Snapshot{
		Data: store.SnapshotData{
			Version: 1,
			Graph:   a.Graph,
			Reviews: a.Scheduler.Snapshot(),
			Badges:  badges,
		},
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return a.Store.SnapshotRepo().Prune(ctx, snapshotKeep)
}

// UserStats assembles the achievement inputs from the graph and the event
// log.
func (a *App) UserStats(ctx context.Context, now time.Time) (achievements.UserStats, error) {
	// Read-only aggregation. ApplyOutcome already recomputed g.Stats;
	// recomputing here again would zero the velocity before it is saved.
	gstats := a.Graph.StatsAt(now)

	tally, err := a.Store.EventRepo().SessionTally(ctx)
	if err != nil {
		return achievements.UserStats{}, err
	}
	reviews, err := a.Store.EventRepo().ReviewCount(ctx)
	if err != nil {
		return achievements.UserStats{}, err
	}
	peak, err := a.Store.PeakRating(ctx)
	if err != nil {
		return achievements.UserStats{}, err
	}

	mastered := 0
	for _, n := range a.Graph.Nodes {
		if n.Mastery >= 0.8 {
			mastered++
		}
	}

	return achievements.UserStats{
		SessionsCompleted: tally.Completed,
		ConceptsTracked:   gstats.TotalConcepts,
		ConceptsMastered:  mastered,
		DomainsTouched:    len(gstats.Domains),
		ReviewsCompleted:  reviews,
		PerfectSessions:   tally.Perfect,
		AGrades:           tally.AGrades,
		PeakRating:        peak,
		AverageMastery:    gstats.AverageMastery,
		Retention:         gstats.Retention,
	}, nil
}

// Report is everything one scored session produced.
type Report struct {
	Grade           *grading.Result
	GradeRationale  string
	Outcome         *knowledge.Outcome
	Summary         string
	RatingResults   []rating.UpdateResult
	NewBadges       []achievements.Unlocked
	Recommendations []recommend.Recommendation
}

// FinishSession runs the full scoring pipeline for a completed transcript:
// criterion scoring, outcome extraction, graph update, review scheduling,
// rating updates, badge evaluation, and persistence. Requires an Extractor.
func (a *App) FinishSession(ctx context.Context, t *extract.Transcript, mode string, kbMode bool, turns int, rqsAvg float64, now time.Time) (*Report, error) {
	if a.Extractor == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	crit, err := a.Extractor.Criteria(ctx, t, mode, kbMode, rqsAvg)
	if err != nil {
		return nil, fmt.Errorf("score criteria: %w", err)
	}
	grade, err := grading.Score(crit.Input, a.GradingCfg)
	if err != nil {
		return nil, fmt.Errorf("grade session: %w", err)
	}

	outRes, err := a.Extractor.Outcome(ctx, t, now)
	if err != nil {
		return nil, fmt.Errorf("extract outcome: %w", err)
	}
	outcome := outRes.Outcome
	// The grader is authoritative for the 0-100 score; the extractor's
	// own estimate only breaks ties it shouldn't own.
	outcome.Score = grade.LegacyScore

	return a.finish(ctx, t, outcome, outRes.Summary, grade, crit.Rationale, turns, now)
}

// FinishManual runs the same persistence pipeline for manually supplied
// criterion scores and concept lists. No LLM involved.
func (a *App) FinishManual(ctx context.Context, t *extract.Transcript, in grading.Input, mastered, gaps []string, now time.Time) (*Report, error) {
	grade, err := grading.Score(in, a.GradingCfg)
	if err != nil {
		return nil, fmt.Errorf("grade session: %w", err)
	}

	outcome := &knowledge.Outcome{
		ID:       t.SessionID,
		Date:     now,
		Title:    t.Topic,
		Domain:   knowledge.InferDomain(t.Topic, t.Domain),
		Score:    grade.LegacyScore,
		Mastered: mastered,
		Gaps:     gaps,
	}

	return a.finish(ctx, t, outcome, "", grade, "", 0, now)
}

func (a *App) finish(ctx context.Context, t *extract.Transcript, outcome *knowledge.Outcome, summary string, grade *grading.Result, rationale string, turns int, now time.Time) (*Report, error) {
	if err := a.Graph.ApplyOutcome(outcome, now); err != nil {
		return nil, fmt.Errorf("apply outcome: %w", err)
	}

	// Everything the session touched enters the review rotation.
	for _, label := range outcome.Mastered {
		a.Scheduler.Track(knowledge.Slugify(label), now)
	}
	for _, label := range outcome.Gaps {
		a.Scheduler.Track(knowledge.Slugify(label), now)
	}

	observed := map[rating.Dimension]int{
		rating.DimCompleteness:        grade.Completeness,
		rating.DimDepth:               grade.Depth,
		rating.DimClarity:             grade.Clarity,
		rating.DimStructuralCoherence: grade.StructuralCoherence,
		rating.DimPedagogicalInsight:  grade.PedagogicalInsight,
		rating.DimOverall:             int(math.Round(grade.WeightedAggregate)),
	}
	ratingResults, err := a.Ratings.UpdateAll(ctx, knowledge.Slugify(t.Topic), observed, now)
	if err != nil {
		return nil, fmt.Errorf("update ratings: %w", err)
	}

	events := a.Store.EventRepo()
	err = events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:   t.SessionID,
		Topic:       t.Topic,
		Action:      "end",
		Turns:       turns,
		AvgQuality:  grade.RQSAvg,
		Grade:       grade.Grade,
		LegacyScore: grade.LegacyScore,
	})
	if err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	newBadges, err := a.evaluateBadges(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := a.SaveSnapshot(ctx); err != nil {
		return nil, err
	}

	return &Report{
		Grade:           grade,
		GradeRationale:  rationale,
		Outcome:         outcome,
		Summary:         summary,
		RatingResults:   ratingResults,
		NewBadges:       newBadges,
		Recommendations: recommend.Next(a.Graph, now, recommend.DefaultLimit),
	}, nil
}

// RecordReview applies one self-graded review, persists it, and re-checks
// badges.
func (a *App) RecordReview(ctx context.Context, concept string, quality int, now time.Time) (*spacedrep.ReviewItem, error) {
	item, err := a.Scheduler.Record(concept, quality, now)
	if err != nil {
		return nil, err
	}

	err = a.Store.EventRepo().AppendReviewEvent(ctx, store.ReviewEventData{
		Concept:      concept,
		Quality:      quality,
		IntervalDays: item.IntervalDays,
		EaseFactor:   item.EaseFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("record review: %w", err)
	}

	if _, err := a.evaluateBadges(ctx, now); err != nil {
		return nil, err
	}
	return item, nil
}

// evaluateBadges diffs current stats against unlocked badges and records
// any new unlocks.
func (a *App) evaluateBadges(ctx context.Context, now time.Time) ([]achievements.Unlocked, error) {
	stats, err := a.UserStats(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("assemble stats: %w", err)
	}

	ids, err := a.Store.EventRepo().BadgeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	previous := make(map[string]bool, len(ids))
	for _, id := range ids {
		previous[id] = true
	}

	newly := achievements.NewlyUnlocked(stats, previous)
	for _, u := range newly {
		err := a.Store.EventRepo().AppendBadgeEvent(ctx, store.BadgeEventData{
			BadgeID: u.ID,
			Tier:    string(u.Tier),
			Reason:  u.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("record badge %s: %w", u.ID, err)
		}
	}
	return newly, nil
}
