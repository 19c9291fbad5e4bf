package designation

import (
	"cmp"
	"slices"
	"time"
)

// SelectPending restricts matches to the run's window.
// Matches dated in [from, to] that are not cancelled are split into pending ones and
// locked ones, the latter being closer to today than minLeadDays.
func SelectPending(matches []*Match, from, to, today time.Time, minLeadDays int) (pending []*Match, locked []*Match) {
	from = DateOnly(from)
	to = DateOnly(to)
	earliest := DateOnly(today).AddDate(0, 0, minLeadDays)

	for _, m := range matches {
		if m.Cancelled {
			continue
		}
		date := DateOnly(m.Date)
		if date.Before(from) || date.After(to) {
			continue
		}
		if date.Before(earliest) {
			locked = append(locked, m)
			continue
		}
		pending = append(pending, m)
	}
	return pending, locked
}

// Designate runs one priority-ordered pass over the matches, filling every open
// required role with the best ranked candidate.
//
// The pass is strictly sequential: each rank → pick → book completes before the next
// role is considered, so later rankings observe every earlier booking in the run.
// Roles already held (Tentative, Notified, Accepted, Confirmed) are left untouched,
// which makes re-running over the same window idempotent. Referees recorded with
// ExcludeRejector are never offered the role they turned down.
//
// The only error is an input invariant violation, detected before anything is booked.
func Designate(rc *RunContext, matches []*Match) (*RunResult, error) {
	for _, m := range matches {
		if err := rc.validateMatch(m); err != nil {
			return nil, err
		}
	}

	ordered := slices.Clone(matches)
	slices.SortStableFunc(ordered, func(a, b *Match) int {
		return rc.compareMatches(a, b)
	})

	filter := NewCandidateFilter(rc)
	result := &RunResult{
		Assignments: []Assignment{},
		Shortfalls:  []Shortfall{},
	}

	for _, match := range ordered {
		if match.Cancelled {
			continue
		}

		category, _ := rc.Category(match.CategoryID)
		for _, role := range category.RequiredRoles() {
			if !match.RoleSlot(role).IsOpen() {
				continue
			}

			assignment, ok := fillRole(rc, filter, match, role, rc.Rejectors(match.ID, role))
			if !ok {
				result.Shortfalls = append(result.Shortfalls, shortfallFor(match, role, ReasonNoCandidate))
				continue
			}
			result.Assignments = append(result.Assignments, assignment)
		}
	}

	return result, nil
}

// compareMatches orders by category priority, date, slot and ID
func (rc *RunContext) compareMatches(a, b *Match) int {
	if c := cmp.Compare(rc.priorityOf(a), rc.priorityOf(b)); c != 0 {
		return c
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Slot, b.Slot); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (rc *RunContext) priorityOf(m *Match) int {
	if cat, ok := rc.Category(m.CategoryID); ok {
		return cat.Priority
	}
	return 0
}

// fillRole ranks candidates for a role and commits the first one that books cleanly
func fillRole(rc *RunContext, filter *CandidateFilter, match *Match, role Role, excluding []string) (Assignment, bool) {
	for _, candidate := range filter.Rank(match, role, excluding) {
		// Rank already skips booked referees, so this only fails if the guard
		// was changed underneath the run.
		if err := rc.Guard.Book(candidate.Referee.ID, match.Date, match.Slot, match.ID); err != nil {
			continue
		}

		candidate.Referee.Workload++
		match.SetRole(role, RoleSlot{RefereeID: candidate.Referee.ID, Status: StatusTentative})

		return Assignment{
			MatchID:    match.ID,
			Role:       role,
			RefereeID:  candidate.Referee.ID,
			Status:     StatusTentative,
			Date:       DateOnly(match.Date),
			Slot:       match.Slot,
			DistanceKm: candidate.DistanceKm,
		}, true
	}
	return Assignment{}, false
}

func shortfallFor(match *Match, role Role, reason ShortfallReason) Shortfall {
	return Shortfall{
		MatchID:    match.ID,
		CategoryID: match.CategoryID,
		Date:       DateOnly(match.Date),
		Slot:       match.Slot,
		Role:       role,
		Reason:     reason,
	}
}
