package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/referee-designation/pkg/db"
)

const matchColumns = `
	m.id, m.match_date, m.slot, m.venue_id, v.name, v.lat, v.lng,
	m.category_id, m.home_team, m.away_team, m.cancelled
`

// GetMatches retrieves matches dated within [from, to], joined with their venue
func (d *DB) GetMatches(ctx context.Context, from, to time.Time) ([]db.Match, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM match m
		JOIN venue v ON v.id = m.venue_id
		WHERE m.match_date BETWEEN $1 AND $2
		ORDER BY m.match_date, m.slot, m.id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []db.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// GetMatch retrieves a single match, or nil if it does not exist
func (d *DB) GetMatch(ctx context.Context, matchID string) (*db.Match, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+matchColumns+`
		FROM match m
		JOIN venue v ON v.id = m.venue_id
		WHERE m.id = $1
	`, matchID)

	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetMatchCancelled marks a match as called off
func (d *DB) SetMatchCancelled(ctx context.Context, matchID string) error {
	tag, err := d.pool.Exec(ctx, `UPDATE match SET cancelled = TRUE WHERE id = $1`, matchID)
	if err != nil {
		return fmt.Errorf("failed to cancel match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s not found", matchID)
	}
	return nil
}

func scanMatch(row pgx.Row) (*db.Match, error) {
	var m db.Match
	var matchDate time.Time
	err := row.Scan(&m.ID, &matchDate, &m.Slot, &m.VenueID, &m.VenueName, &m.VenueLat, &m.VenueLng,
		&m.CategoryID, &m.HomeTeam, &m.AwayTeam, &m.Cancelled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	m.MatchDate = matchDate.Format("2006-01-02")
	return &m, nil
}
