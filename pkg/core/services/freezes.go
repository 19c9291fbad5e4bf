package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
)

// frozenDates expands the configured freezes over [from, to] and returns the frozen
// dates (YYYY-MM-DD) with the reason of the first freeze that matched each.
// Rules without a DTSTART are anchored at the window start.
func frozenDates(freezes []config.DesignationFreeze, from, to time.Time) (map[string]string, error) {
	frozen := make(map[string]string)
	from = designation.DateOnly(from)
	until := designation.DateOnly(to).AddDate(0, 0, 1).Add(-time.Nanosecond)

	for i, freeze := range freezes {
		option, err := freeze.Option()
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for freeze %d: %w", i, err)
		}
		if option.Dtstart.IsZero() {
			option.Dtstart = from
		}
		rule, err := rrule.NewRRule(*option)
		if err != nil {
			return nil, fmt.Errorf("failed to build rrule for freeze %d: %w", i, err)
		}

		reason := freeze.Reason
		if reason == "" {
			reason = freeze.RRule
		}
		for _, occurrence := range rule.Between(from, until, true) {
			key := occurrence.Format(designation.DateLayout)
			if _, ok := frozen[key]; !ok {
				frozen[key] = reason
			}
		}
	}

	return frozen, nil
}
