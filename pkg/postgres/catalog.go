package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/referee-designation/pkg/db"
)

// GetCategories retrieves all competition categories
func (d *DB) GetCategories(ctx context.Context) ([]db.Category, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, min_referees, requires_scorer, priority, min_level,
		       label_referee_a, label_referee_b, label_scorer
		FROM category
		ORDER BY priority, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []db.Category
	for rows.Next() {
		var c db.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.MinReferees, &c.RequiresScorer, &c.Priority, &c.MinLevel,
			&c.LabelRefereeA, &c.LabelRefereeB, &c.LabelScorer); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetReferees retrieves every referee, active or not
func (d *DB) GetReferees(ctx context.Context) ([]db.Referee, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, email, level, lat, lng, has_transport, active
		FROM referee
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query referees: %w", err)
	}
	defer rows.Close()

	var referees []db.Referee
	for rows.Next() {
		var r db.Referee
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Level, &r.Lat, &r.Lng, &r.HasTransport, &r.Active); err != nil {
			return nil, fmt.Errorf("failed to scan referee: %w", err)
		}
		referees = append(referees, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referees: %w", err)
	}

	return referees, nil
}
