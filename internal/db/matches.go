package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// UpsertMatch writes a match record keyed on (subject, candidate, tier).
// Regeneration overwrites the existing record and resets its status to
// draft rather than creating a duplicate.
func (db *DB) UpsertMatch(ctx context.Context, m *types.MatchRecord) error {
	breakdownJSON, err := json.Marshal(m.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO match_records
		 (subject_id, candidate_id, tier, score, breakdown, strategic, angle, opener, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'draft')
		 ON CONFLICT (subject_id, candidate_id, tier) DO UPDATE SET
		   score = $4, breakdown = $5, strategic = $6, angle = $7, opener = $8,
		   status = 'draft', updated_at = NOW()
		 RETURNING id`,
		m.SubjectID, m.CandidateID, m.Tier, m.Score, breakdownJSON,
		m.Rationale.Strategic, m.Rationale.CollaborationAngle, m.Rationale.ConversationOpener,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

// ListMatchesForSubject returns a subject's match records ordered by score
// descending.
func (db *DB) ListMatchesForSubject(ctx context.Context, subjectID uuid.UUID) ([]*types.MatchRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, subject_id, candidate_id, tier, score, breakdown,
		        strategic, angle, opener, status, created_at, updated_at
		 FROM match_records WHERE subject_id = $1
		 ORDER BY score DESC, created_at`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*types.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch retrieves one match record by ID; nil when not found.
func (db *DB) GetMatch(ctx context.Context, id uuid.UUID) (*types.MatchRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, subject_id, candidate_id, tier, score, breakdown,
		        strategic, angle, opener, status, created_at, updated_at
		 FROM match_records WHERE id = $1`, id)

	m, err := scanMatch(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// AcknowledgeMatch flips a match record's status to acknowledged.
func (db *DB) AcknowledgeMatch(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE match_records SET status = 'acknowledged', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ResetMatches deletes all match records. Bulk administrative action.
func (db *DB) ResetMatches(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM match_records`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset matches: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MatchCounts holds the derived per-attendee counts for the admin listing.
type MatchCounts struct {
	Top          int
	Broader      int
	Acknowledged int
}

// CountMatchesBySubject returns per-subject tier and acknowledgment counts.
func (db *DB) CountMatchesBySubject(ctx context.Context) (map[uuid.UUID]MatchCounts, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT subject_id,
		        COUNT(*) FILTER (WHERE tier = 'top'),
		        COUNT(*) FILTER (WHERE tier = 'broader'),
		        COUNT(*) FILTER (WHERE status = 'acknowledged')
		 FROM match_records GROUP BY subject_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]MatchCounts)
	for rows.Next() {
		var id uuid.UUID
		var c MatchCounts
		if err := rows.Scan(&id, &c.Top, &c.Broader, &c.Acknowledged); err != nil {
			return nil, fmt.Errorf("failed to scan match counts: %w", err)
		}
		counts[id] = c
	}
	return counts, rows.Err()
}

func scanMatch(row pgx.Row) (*types.MatchRecord, error) {
	var m types.MatchRecord
	var breakdownJSON []byte
	err := row.Scan(&m.ID, &m.SubjectID, &m.CandidateID, &m.Tier, &m.Score, &breakdownJSON,
		&m.Rationale.Strategic, &m.Rationale.CollaborationAngle, &m.Rationale.ConversationOpener,
		&m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(breakdownJSON) > 0 {
		var breakdown types.ScoreBreakdown
		if err := json.Unmarshal(breakdownJSON, &breakdown); err == nil {
			m.Breakdown = &breakdown
		}
	}
	return &m, nil
}
