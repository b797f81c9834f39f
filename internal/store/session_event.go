package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo over the event tables and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO session_events
			(sequence, timestamp, session_id, topic, action, turns, avg_quality, grade, legacy_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.SessionID, data.Topic, data.Action,
		data.Turns, data.AvgQuality, data.Grade, data.LegacyScore,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	query := `SELECT id, sequence, timestamp, session_id, topic, action, turns, avg_quality, grade, legacy_score
		FROM session_events`
	where, args := buildFilter(opts)
	query += where + ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var records []SessionEventRecord
	for rows.Next() {
		var rec SessionEventRecord
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.SessionID,
			&rec.Topic, &rec.Action, &rec.Turns, &rec.AvgQuality, &rec.Grade, &rec.LegacyScore); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) SessionTally(ctx context.Context) (SessionTally, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN legacy_score = 100 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN grade = 'A' THEN 1 ELSE 0 END), 0)
		 FROM session_events WHERE action = 'end'`,
	)

	var tally SessionTally
	if err := row.Scan(&tally.Completed, &tally.Perfect, &tally.AGrades); err != nil {
		return SessionTally{}, fmt.Errorf("tally sessions: %w", err)
	}
	return tally, nil
}

func (r *eventRepo) AppendReviewEvent(ctx context.Context, data ReviewEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO review_events (sequence, timestamp, concept, quality, interval_days, ease_factor)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.Concept, data.Quality, data.IntervalDays, data.EaseFactor,
	)
	if err != nil {
		return fmt.Errorf("save review event: %w", err)
	}
	return nil
}

func (r *eventRepo) ReviewCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

func (r *eventRepo) AppendBadgeEvent(ctx context.Context, data BadgeEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO badge_events (sequence, timestamp, badge_id, tier, reason)
		 VALUES (?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.BadgeID, data.Tier, data.Reason,
	)
	if err != nil {
		return fmt.Errorf("save badge event: %w", err)
	}
	return nil
}

func (r *eventRepo) BadgeIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT badge_id FROM badge_events ORDER BY sequence ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// buildFilter translates QueryOpts into a WHERE clause shared by the
// event queries. Limit is handled by the caller.
func buildFilter(opts QueryOpts) (string, []any) {
	var conds []string
	var args []any

	if opts.After > 0 {
		conds = append(conds, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		conds = append(conds, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, opts.From)
	}
	if !opts.To.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, opts.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
