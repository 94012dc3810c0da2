package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

const attendeeColumns = `id, name, organization, role, industry, city,
	revenue_driver, constraint_txt, assets, needs, fun_fact, consent, created_at`

// CreateAttendee inserts a new attendee profile.
func (db *DB) CreateAttendee(ctx context.Context, a *types.Attendee) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO attendees (id, name, organization, role, industry, city,
		 revenue_driver, constraint_txt, assets, needs, fun_fact, consent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.Name, a.Organization, a.Role, a.Industry, a.City,
		a.RevenueDriver, a.Constraint, a.Assets, a.Needs, a.FunFact, a.Consent, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attendee: %w", err)
	}
	return nil
}

// GetAttendee retrieves one attendee by ID; nil when not found.
func (db *DB) GetAttendee(ctx context.Context, id uuid.UUID) (*types.Attendee, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id)

	a, err := scanAttendee(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}
	return a, nil
}

// ListConsentingAttendees returns all attendees who consented to matching,
// excluding the given subject, in registration order.
func (db *DB) ListConsentingAttendees(ctx context.Context, excludeID uuid.UUID) ([]*types.Attendee, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+attendeeColumns+` FROM attendees
		 WHERE consent = TRUE AND id != $1
		 ORDER BY created_at, id`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []*types.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// ListAttendees returns all attendees in registration order.
func (db *DB) ListAttendees(ctx context.Context) ([]*types.Attendee, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+attendeeColumns+` FROM attendees ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []*types.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// DeleteAttendee removes an attendee. The vector and all match records
// referencing the attendee cascade via foreign keys.
func (db *DB) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendee: %w", err)
	}
	return nil
}

func scanAttendee(row pgx.Row) (*types.Attendee, error) {
	var a types.Attendee
	err := row.Scan(&a.ID, &a.Name, &a.Organization, &a.Role, &a.Industry, &a.City,
		&a.RevenueDriver, &a.Constraint, &a.Assets, &a.Needs, &a.FunFact, &a.Consent, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
