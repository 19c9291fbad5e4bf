package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/referee-designation/pkg/db"
)

// GetAvailability retrieves every availability declaration dated within [from, to]
func (d *DB) GetAvailability(ctx context.Context, from, to time.Time) ([]db.Availability, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT referee_id, available_date, slot1, slot2, slot3, slot4, note
		FROM availability
		WHERE available_date BETWEEN $1 AND $2
		ORDER BY available_date, referee_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var records []db.Availability
	for rows.Next() {
		var a db.Availability
		var date time.Time
		if err := rows.Scan(&a.RefereeID, &date, &a.Slot1, &a.Slot2, &a.Slot3, &a.Slot4, &a.Note); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		a.Date = date.Format("2006-01-02")
		records = append(records, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}

	return records, nil
}
