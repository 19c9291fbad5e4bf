package designation

import (
	"cmp"
	"slices"
)

// ScoredCandidate is a referee that qualifies for a role, with the values it is ranked by
type ScoredCandidate struct {
	Referee    *Referee
	Match      *Match
	Category   *Category
	Role       Role
	SlotState  SlotState
	DistanceKm float64
	// Workload is the referee's counter at ranking time
	Workload int
}

// TravelsWithTransport reports whether the referee would drive to the venue.
// Only a slot declared with transport, by a referee who has transport, counts.
func (c *ScoredCandidate) TravelsWithTransport() bool {
	return c.SlotState == AvailableWithTransport && c.Referee.HasTransport
}

// CandidateFilter ranks eligible referees for an open role
type CandidateFilter struct {
	rc *RunContext
}

// NewCandidateFilter creates a filter over the run context's referee pool
func NewCandidateFilter(rc *RunContext) *CandidateFilter {
	return &CandidateFilter{rc: rc}
}

// Rank returns the referees qualifying for the role, best first:
// lowest workload, then shortest distance, then referee ID.
// An empty result is a normal outcome, not an error.
func (f *CandidateFilter) Rank(match *Match, role Role, excluding []string) []ScoredCandidate {
	category, ok := f.rc.Category(match.CategoryID)
	if !ok {
		return nil
	}

	var ranked []ScoredCandidate
	for _, ref := range f.rc.refereeOrder {
		candidate, ok := f.evaluate(match, category, role, ref, excluding)
		if !ok {
			continue
		}
		ranked = append(ranked, candidate)
	}

	slices.SortStableFunc(ranked, compareCandidates)
	return ranked
}

// evaluate applies the built-in checks and then every criterion veto
func (f *CandidateFilter) evaluate(match *Match, category *Category, role Role, ref *Referee, excluding []string) (ScoredCandidate, bool) {
	if !ref.Active {
		return ScoredCandidate{}, false
	}

	if slices.Contains(excluding, ref.ID) {
		return ScoredCandidate{}, false
	}

	state := f.rc.Availability.SlotState(ref.ID, match.Date, match.Slot)
	if state == Unavailable {
		return ScoredCandidate{}, false
	}

	if match.HoldsOtherRole(ref.ID, role) {
		return ScoredCandidate{}, false
	}

	if f.rc.Guard.IsBooked(ref.ID, match.Date, match.Slot) {
		return ScoredCandidate{}, false
	}

	candidate := ScoredCandidate{
		Referee:    ref,
		Match:      match,
		Category:   category,
		Role:       role,
		SlotState:  state,
		DistanceKm: DistanceKm(ref.Home, match.Venue),
		Workload:   ref.Workload,
	}

	for _, criterion := range f.rc.Criteria {
		if !criterion.IsCandidateValid(f.rc, &candidate) {
			return ScoredCandidate{}, false
		}
	}

	return candidate, true
}

func compareCandidates(a, b ScoredCandidate) int {
	if c := cmp.Compare(a.Workload, b.Workload); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
		return c
	}
	return cmp.Compare(a.Referee.ID, b.Referee.ID)
}
