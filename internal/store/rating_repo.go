package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saurav/teachback/internal/rating"
)

// PeakRating returns the highest peak rating across all (topic, dimension)
// pairs, 0 when none exist.
func (s *Store) PeakRating(ctx context.Context) (int, error) {
	var peak int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(peak_rating), 0) FROM ratings`,
	).Scan(&peak)
	if err != nil {
		return 0, fmt.Errorf("query peak rating: %w", err)
	}
	return peak, nil
}

// ratingRepo implements rating.Repo over the ratings and rating_history
// tables.
type ratingRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *ratingRepo) Get(ctx context.Context, topic string, dim rating.Dimension) (*rating.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT topic, dimension, rating, k_factor, session_count, peak_rating
		 FROM ratings WHERE topic = ? AND dimension = ?`,
		topic, string(dim),
	)

	var rec rating.Record
	err := row.Scan(&rec.Topic, &rec.Dimension, &rec.Rating, &rec.KFactor,
		&rec.SessionCount, &rec.PeakRating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rating %s/%s: %w", topic, dim, err)
	}
	return &rec, nil
}

func (r *ratingRepo) Put(ctx context.Context, rec *rating.Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ratings (topic, dimension, rating, k_factor, session_count, peak_rating)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (topic, dimension) DO UPDATE SET
			rating = excluded.rating,
			k_factor = excluded.k_factor,
			session_count = excluded.session_count,
			peak_rating = excluded.peak_rating`,
		rec.Topic, string(rec.Dimension), rec.Rating, rec.KFactor,
		rec.SessionCount, rec.PeakRating,
	)
	if err != nil {
		return fmt.Errorf("put rating %s/%s: %w", rec.Topic, rec.Dimension, err)
	}
	return nil
}

func (r *ratingRepo) AppendHistory(ctx context.Context, entry rating.HistoryEntry) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rating_history
			(sequence, topic, dimension, rating_before, rating_after, delta, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, entry.Topic, string(entry.Dimension), entry.RatingBefore,
		entry.RatingAfter, entry.Delta, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append rating history: %w", err)
	}
	return nil
}

func (r *ratingRepo) History(ctx context.Context, topic string, dim rating.Dimension, limit int) ([]rating.HistoryEntry, error) {
	query := `SELECT topic, dimension, rating_before, rating_after, delta, timestamp
		FROM rating_history WHERE topic = ? AND dimension = ? ORDER BY sequence DESC`
	args := []any{topic, string(dim)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rating history: %w", err)
	}
	defer rows.Close()

	var entries []rating.HistoryEntry
	for rows.Next() {
		var e rating.HistoryEntry
		if err := rows.Scan(&e.Topic, &e.Dimension, &e.RatingBefore,
			&e.RatingAfter, &e.Delta, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan rating history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
