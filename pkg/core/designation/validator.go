package designation

import (
	"fmt"
	"slices"
)

const (
	CheckDoubleBooking = "NoDoubleBooking"
	CheckAvailability  = "Availability"
	CheckSameMatch     = "OneRolePerMatch"
	CheckUnknown       = "KnownReferee"
)

// ValidateRun re-checks every held role on the matches against the run's invariants:
// no (referee, date, slot) is held by two matches, and every designation created by
// the run still satisfies availability and every criterion.
// Returns an empty slice when the run is sound.
func ValidateRun(rc *RunContext, matches []*Match, result *RunResult) []Violation {
	violations := []Violation{}

	type slotKey struct {
		refereeID string
		date      string
		slot      int
	}
	held := make(map[slotKey]string)

	ordered := slices.Clone(matches)
	slices.SortFunc(ordered, func(a, b *Match) int { return rc.compareMatches(a, b) })

	for _, m := range ordered {
		if m.Cancelled {
			continue
		}
		perMatch := make(map[string]Role)
		for _, role := range Roles {
			rs := m.RoleSlot(role)
			if !rs.Status.Holds() {
				continue
			}

			if other, ok := perMatch[rs.RefereeID]; ok {
				violations = append(violations, Violation{
					MatchID:     m.ID,
					Role:        role,
					RefereeID:   rs.RefereeID,
					Check:       CheckSameMatch,
					Description: fmt.Sprintf("referee also holds %s on the same match", other),
				})
			}
			perMatch[rs.RefereeID] = role

			key := slotKey{refereeID: rs.RefereeID, date: m.DateKey(), slot: m.Slot}
			if otherMatch, ok := held[key]; ok && otherMatch != m.ID {
				violations = append(violations, Violation{
					MatchID:     m.ID,
					Role:        role,
					RefereeID:   rs.RefereeID,
					Check:       CheckDoubleBooking,
					Description: fmt.Sprintf("referee already holds match %s on %s slot %d", otherMatch, key.date, key.slot),
				})
				continue
			}
			held[key] = m.ID
		}
	}

	if result == nil {
		return violations
	}

	byID := make(map[string]*Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	for _, a := range result.Assignments {
		match, ok := byID[a.MatchID]
		if !ok {
			continue
		}
		violations = append(violations, validateAssignment(rc, match, a)...)
	}

	return violations
}

func validateAssignment(rc *RunContext, match *Match, a Assignment) []Violation {
	ref, ok := rc.Referee(a.RefereeID)
	if !ok {
		return []Violation{{
			MatchID:     a.MatchID,
			Role:        a.Role,
			RefereeID:   a.RefereeID,
			Check:       CheckUnknown,
			Description: "referee is not in the candidate pool",
		}}
	}

	state := rc.Availability.SlotState(ref.ID, match.Date, match.Slot)
	if state == Unavailable {
		return []Violation{{
			MatchID:     a.MatchID,
			Role:        a.Role,
			RefereeID:   a.RefereeID,
			Check:       CheckAvailability,
			Description: fmt.Sprintf("referee is unavailable on %s slot %d", match.DateKey(), match.Slot),
		}}
	}

	category, _ := rc.Category(match.CategoryID)
	candidate := &ScoredCandidate{
		Referee:    ref,
		Match:      match,
		Category:   category,
		Role:       a.Role,
		SlotState:  state,
		DistanceKm: DistanceKm(ref.Home, match.Venue),
		Workload:   ref.Workload,
	}

	var violations []Violation
	for _, criterion := range rc.Criteria {
		if !criterion.IsCandidateValid(rc, candidate) {
			violations = append(violations, Violation{
				MatchID:     a.MatchID,
				Role:        a.Role,
				RefereeID:   a.RefereeID,
				Check:       criterion.Name(),
				Description: fmt.Sprintf("designation fails %s", criterion.Name()),
			})
		}
	}
	return violations
}
