package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// UpsertVector writes an attendee's embedding vector, overwriting any
// existing one. Regeneration is always an idempotent full-row overwrite,
// never an append.
func (db *DB) UpsertVector(ctx context.Context, v *types.EmbeddingVector) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO embedding_vectors (attendee_id, vec, model, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (attendee_id) DO UPDATE SET vec = $2, model = $3, updated_at = NOW()`,
		v.AttendeeID, v.Values, v.Model,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	return nil
}

// GetVector retrieves an attendee's embedding vector; nil when absent.
func (db *DB) GetVector(ctx context.Context, attendeeID uuid.UUID) (*types.EmbeddingVector, error) {
	var v types.EmbeddingVector
	err := db.pool.QueryRow(ctx,
		`SELECT attendee_id, vec, model, updated_at
		 FROM embedding_vectors WHERE attendee_id = $1`,
		attendeeID,
	).Scan(&v.AttendeeID, &v.Values, &v.Model, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vector: %w", err)
	}
	return &v, nil
}

// ListVectorIDs returns the IDs of all attendees that have a vector.
func (db *DB) ListVectorIDs(ctx context.Context) (map[uuid.UUID]bool, error) {
	rows, err := db.pool.Query(ctx, `SELECT attendee_id FROM embedding_vectors`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vector ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan vector id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
