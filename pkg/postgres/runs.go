package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/referee-designation/pkg/db"
)

// CommitRun records a run together with its designations and shortfalls in one
// transaction. Either everything is written or nothing is.
func (d *DB) CommitRun(ctx context.Context, run *db.Run, designations []db.Designation, shortfalls []db.Shortfall) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO designation_run (id, window_start, window_end, started_at, assigned, shortfalls, violations, forced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, run.ID, run.WindowStart, run.WindowEnd, run.StartedAt.UTC(), run.Assigned, run.Shortfalls, run.Violations, run.Forced)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, des := range designations {
		if err := commitAssignment(ctx, tx, des.MatchID, des.Role, des.RefereeID, des.Status); err != nil {
			return err
		}
	}

	if err := insertShortfalls(ctx, tx, shortfalls); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRuns retrieves all runs, most recent first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, window_start, window_end, started_at, assigned, shortfalls, violations, forced
		FROM designation_run
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		var r db.Run
		var windowStart, windowEnd time.Time
		if err := rows.Scan(&r.ID, &windowStart, &windowEnd, &r.StartedAt, &r.Assigned, &r.Shortfalls, &r.Violations, &r.Forced); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.WindowStart = windowStart.Format("2006-01-02")
		r.WindowEnd = windowEnd.Format("2006-01-02")
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetShortfalls retrieves the shortfalls of a run.
// An empty runID selects shortfalls raised outside any run.
func (d *DB) GetShortfalls(ctx context.Context, runID string) ([]db.Shortfall, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, COALESCE(run_id, ''), match_id, category_id, match_date, slot, role, reason, created_at
		FROM designation_shortfall
		WHERE COALESCE(run_id, '') = $1
		ORDER BY match_date, slot, match_id, role
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortfalls: %w", err)
	}
	defer rows.Close()

	var shortfalls []db.Shortfall
	for rows.Next() {
		var s db.Shortfall
		var matchDate time.Time
		if err := rows.Scan(&s.ID, &s.RunID, &s.MatchID, &s.CategoryID, &matchDate, &s.Slot, &s.Role, &s.Reason, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shortfall: %w", err)
		}
		s.MatchDate = matchDate.Format("2006-01-02")
		shortfalls = append(shortfalls, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shortfalls: %w", err)
	}

	return shortfalls, nil
}

func insertShortfalls(ctx context.Context, tx pgx.Tx, shortfalls []db.Shortfall) error {
	for _, s := range shortfalls {
		var runID *string
		if s.RunID != "" {
			runID = &s.RunID
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO designation_shortfall (id, run_id, match_id, category_id, match_date, slot, role, reason, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, s.ID, runID, s.MatchID, s.CategoryID, s.MatchDate, s.Slot, s.Role, s.Reason, s.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert shortfall: %w", err)
		}
	}
	return nil
}
