package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// uniqueViolation is raised by idx_designation_no_double_booking
const uniqueViolation = "23505"

// GetDesignations retrieves the designations of every match dated within [from, to]
func (d *DB) GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT match_id, role, referee_id, status, updated_at
		FROM designation
		WHERE match_date BETWEEN $1 AND $2
		ORDER BY match_id, role
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query designations: %w", err)
	}
	return collectDesignations(rows)
}

// GetDesignationsByStatus retrieves every designation currently in the given status
func (d *DB) GetDesignationsByStatus(ctx context.Context, status string) ([]db.Designation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT match_id, role, referee_id, status, updated_at
		FROM designation
		WHERE status = $1
		ORDER BY updated_at, match_id, role
	`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query designations: %w", err)
	}
	return collectDesignations(rows)
}

// CommitAssignment writes the holder and status of a role, replacing any previous row
func (d *DB) CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error {
	return commitAssignment(ctx, d.pool, matchID, role, refereeID, status)
}

// ReleaseAssignment clears a role so it can be filled again
func (d *DB) ReleaseAssignment(ctx context.Context, matchID, role string) error {
	return releaseAssignment(ctx, d.pool, matchID, role)
}

// execer is satisfied by both the pool and a transaction
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func commitAssignment(ctx context.Context, conn execer, matchID, role, refereeID, status string) error {
	tag, err := conn.Exec(ctx, `
		INSERT INTO designation (match_id, role, referee_id, status, match_date, slot, updated_at)
		SELECT m.id, $2, $3, $4, m.match_date, m.slot, NOW()
		FROM match m
		WHERE m.id = $1
		ON CONFLICT (match_id, role) DO UPDATE
		SET referee_id = EXCLUDED.referee_id,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
	`, matchID, role, refereeID, status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("failed to commit designation %s/%s: %w", matchID, role, designation.ErrDoubleBooking)
		}
		return fmt.Errorf("failed to commit designation %s/%s: %w", matchID, role, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to commit designation %s/%s: match not found", matchID, role)
	}
	return nil
}

func releaseAssignment(ctx context.Context, conn execer, matchID, role string) error {
	_, err := conn.Exec(ctx, `DELETE FROM designation WHERE match_id = $1 AND role = $2`, matchID, role)
	if err != nil {
		return fmt.Errorf("failed to release designation %s/%s: %w", matchID, role, err)
	}
	return nil
}

func collectDesignations(rows pgx.Rows) ([]db.Designation, error) {
	defer rows.Close()

	var designations []db.Designation
	for rows.Next() {
		var des db.Designation
		if err := rows.Scan(&des.MatchID, &des.Role, &des.RefereeID, &des.Status, &des.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan designation: %w", err)
		}
		designations = append(designations, des)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating designations: %w", err)
	}

	return designations, nil
}
