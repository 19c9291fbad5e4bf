package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/referee-designation/pkg/db"
)

// GetRejections retrieves every rejection recorded for a role on a match
func (d *DB) GetRejections(ctx context.Context, matchID, role string) ([]db.Rejection, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, match_id, role, referee_id, rejected_at, implicit
		FROM designation_rejection
		WHERE match_id = $1 AND role = $2
		ORDER BY rejected_at
	`, matchID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections: %w", err)
	}
	return collectRejections(rows)
}

// GetRejectionsBetween retrieves the rejections of every match dated within [from, to]
func (d *DB) GetRejectionsBetween(ctx context.Context, from, to time.Time) ([]db.Rejection, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT r.id, r.match_id, r.role, r.referee_id, r.rejected_at, r.implicit
		FROM designation_rejection r
		JOIN match m ON m.id = r.match_id
		WHERE m.match_date BETWEEN $1 AND $2
		ORDER BY r.match_id, r.role, r.rejected_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections: %w", err)
	}
	return collectRejections(rows)
}

// CommitRejection records a rejection and its outcome in one transaction.
// With a replacement the role is handed to the new referee; without one the role
// is released and the shortfall, if given, is recorded.
func (d *DB) CommitRejection(ctx context.Context, rejection *db.Rejection, replacement *db.Designation, shortfall *db.Shortfall) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO designation_rejection (id, match_id, role, referee_id, rejected_at, implicit)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rejection.ID, rejection.MatchID, rejection.Role, rejection.RefereeID, rejection.RejectedAt.UTC(), rejection.Implicit)
	if err != nil {
		return fmt.Errorf("failed to insert rejection: %w", err)
	}

	if replacement != nil {
		if err := commitAssignment(ctx, tx, replacement.MatchID, replacement.Role, replacement.RefereeID, replacement.Status); err != nil {
			return err
		}
	} else {
		if err := releaseAssignment(ctx, tx, rejection.MatchID, rejection.Role); err != nil {
			return err
		}
		if shortfall != nil {
			if err := insertShortfalls(ctx, tx, []db.Shortfall{*shortfall}); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func collectRejections(rows pgx.Rows) ([]db.Rejection, error) {
	defer rows.Close()

	var rejections []db.Rejection
	for rows.Next() {
		var r db.Rejection
		if err := rows.Scan(&r.ID, &r.MatchID, &r.Role, &r.RefereeID, &r.RejectedAt, &r.Implicit); err != nil {
			return nil, fmt.Errorf("failed to scan rejection: %w", err)
		}
		rejections = append(rejections, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rejections: %w", err)
	}

	return rejections, nil
}
