// Package matchstore records which matches were shown to which adopter.
package matchstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/matching"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS shown_matches (
	id            UUID PRIMARY KEY,
	request_id    TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	candidate_id  TEXT NOT NULL,
	rank          INTEGER NOT NULL,
	overall       NUMERIC(4,3) NOT NULL,
	lifestyle     NUMERIC(4,3) NOT NULL,
	personality   NUMERIC(4,3) NOT NULL,
	practical     NUMERIC(4,3) NOT NULL,
	urgency_boost NUMERIC(4,3) NOT NULL,
	model_version TEXT NOT NULL,
	shown_at      TIMESTAMPTZ NOT NULL,
	UNIQUE (request_id, candidate_id)
);
CREATE INDEX IF NOT EXISTS shown_matches_user_idx ON shown_matches (user_id, shown_at DESC);
`

const insertShown = `
INSERT INTO shown_matches
	(id, request_id, user_id, candidate_id, rank, overall, lifestyle, personality, practical, urgency_boost, model_version, shown_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (request_id, candidate_id) DO NOTHING`

const selectHistory = `
SELECT id, request_id, candidate_id, rank, overall, model_version, shown_at
FROM shown_matches
WHERE user_id = $1
ORDER BY shown_at DESC, rank ASC
LIMIT $2`

const selectShownCounts = `
SELECT candidate_id, COUNT(*)
FROM shown_matches
WHERE user_id = $1 AND candidate_id = ANY($2)
GROUP BY candidate_id`

// ShownMatch is one persisted row of the match log.
type ShownMatch struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId"`
	CandidateID  string    `json:"candidateId"`
	Rank         int       `json:"rank"`
	Overall      float64   `json:"overall"`
	ModelVersion string    `json:"modelVersion"`
	ShownAt      time.Time `json:"shownAt"`
}

type Store struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.WithFields(map[string]interface{}{"component": "matchstore"}),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the match log table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return classify("", fmt.Errorf("create schema: %w", err))
	}
	return nil
}

// RecordShown writes one row per match in a single transaction and returns the
// number of rows inserted. Replaying the same request is a no-op.
func (s *Store) RecordShown(ctx context.Context, requestID, userID string, matches []matching.Match) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(requestID, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertShown)
	if err != nil {
		return 0, classify(requestID, err)
	}
	defer stmt.Close()

	shownAt := s.now()
	inserted := 0
	for _, m := range matches {
		res, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			requestID,
			userID,
			m.Candidate.ID,
			m.Rank,
			m.Scores.Overall,
			m.Scores.Lifestyle,
			m.Scores.Personality,
			m.Scores.Practical,
			m.Scores.UrgencyBoost,
			m.ModelVersion,
			shownAt,
		)
		if err != nil {
			return 0, classify(requestID, fmt.Errorf("insert %s: %w", m.Candidate.ID, err))
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, classify(requestID, err)
	}

	s.log.Debug("recorded shown matches", map[string]interface{}{
		"requestId": requestID,
		"userId":    userID,
		"inserted":  inserted,
	})
	return inserted, nil
}

// History returns the most recent matches shown to userID.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]ShownMatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, selectHistory, userID, limit)
	if err != nil {
		return nil, classify("", err)
	}
	defer rows.Close()

	out := []ShownMatch{}
	for rows.Next() {
		var m ShownMatch
		if err := rows.Scan(&m.ID, &m.RequestID, &m.CandidateID, &m.Rank, &m.Overall, &m.ModelVersion, &m.ShownAt); err != nil {
			return nil, classify("", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("", err)
	}
	return out, nil
}

// ShownCounts reports how often each of candidateIDs has been shown to userID.
// Candidates never shown are absent from the map.
func (s *Store) ShownCounts(ctx context.Context, userID string, candidateIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(candidateIDs) == 0 {
		return counts, nil
	}

	rows, err := s.db.QueryContext(ctx, selectShownCounts, userID, pq.Array(candidateIDs))
	if err != nil {
		return nil, classify("", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, classify("", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// classify maps driver errors onto application error codes. Connection
// exceptions (SQLSTATE class 08) are reported separately from write failures.
func classify(requestID string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return apperrors.NewMatchPersistFailedError(requestID, err)
}
