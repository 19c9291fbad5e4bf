package designation

import (
	"cmp"
	"fmt"
	"slices"
)

// Config holds the tunable thresholds of a designation run
type Config struct {
	Travel TravelPolicy
	// MinLeadDays excludes matches closer than this many days from the run
	MinLeadDays int
}

// RunContext is everything a single designation run reads and mutates.
// Runs never share a RunContext, so runs over disjoint partitions may execute
// concurrently.
type RunContext struct {
	Config       Config
	Availability *AvailabilityIndex
	Guard        *ConflictGuard
	Criteria     []Criterion

	referees   map[string]*Referee
	categories map[string]*Category
	// rejectors holds, per (match, role), every referee who turned the role down
	rejectors map[roleKey][]string

	// refereeOrder is the candidate pool sorted by ID for deterministic ranking
	refereeOrder []*Referee
}

// NewRunContext validates the inputs and assembles a run context.
// Referees and categories are copied; workload changes are visible through Referee().
func NewRunContext(
	cfg Config,
	availability *AvailabilityIndex,
	guard *ConflictGuard,
	referees []Referee,
	categories []Category,
	criteria []Criterion,
) (*RunContext, error) {
	if availability == nil {
		return nil, fmt.Errorf("%w: availability index is required", ErrInvalidInput)
	}
	if guard == nil {
		guard = NewConflictGuard()
	}

	rc := &RunContext{
		Config:       cfg,
		Availability: availability,
		Guard:        guard,
		Criteria:     criteria,
		referees:     make(map[string]*Referee, len(referees)),
		categories:   make(map[string]*Category, len(categories)),
		rejectors:    make(map[roleKey][]string),
		refereeOrder: make([]*Referee, 0, len(referees)),
	}

	for i := range referees {
		ref := referees[i]
		if ref.ID == "" {
			return nil, fmt.Errorf("%w: referee without ID", ErrInvalidInput)
		}
		if _, dup := rc.referees[ref.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate referee %s", ErrInvalidInput, ref.ID)
		}
		if err := ref.Home.Validate(); err != nil {
			return nil, fmt.Errorf("referee %s: %w", ref.ID, err)
		}
		rc.referees[ref.ID] = &ref
		rc.refereeOrder = append(rc.refereeOrder, &ref)
	}
	slices.SortFunc(rc.refereeOrder, func(a, b *Referee) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for i := range categories {
		cat := categories[i]
		if cat.MinReferees < 1 || cat.MinReferees > 2 {
			return nil, fmt.Errorf("%w: category %s requires %d referees (must be 1 or 2)",
				ErrInvalidInput, cat.ID, cat.MinReferees)
		}
		if _, dup := rc.categories[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category %s", ErrInvalidInput, cat.ID)
		}
		rc.categories[cat.ID] = &cat
	}

	return rc, nil
}

// Referee returns the run's copy of a referee
func (rc *RunContext) Referee(id string) (*Referee, bool) {
	ref, ok := rc.referees[id]
	return ref, ok
}

// Category returns a category by ID
func (rc *RunContext) Category(id string) (*Category, bool) {
	cat, ok := rc.categories[id]
	return cat, ok
}

type roleKey struct {
	matchID string
	role    Role
}

// ExcludeRejector bars a referee who rejected a role from being designated to it
// again, by this run or any refill it makes
func (rc *RunContext) ExcludeRejector(matchID string, role Role, refereeID string) {
	key := roleKey{matchID: matchID, role: role}
	if !slices.Contains(rc.rejectors[key], refereeID) {
		rc.rejectors[key] = append(rc.rejectors[key], refereeID)
	}
}

// Rejectors returns the referees barred from a role on a match
func (rc *RunContext) Rejectors(matchID string, role Role) []string {
	return rc.rejectors[roleKey{matchID: matchID, role: role}]
}

// Workloads returns a snapshot of every referee's workload counter
func (rc *RunContext) Workloads() map[string]int {
	out := make(map[string]int, len(rc.referees))
	for id, ref := range rc.referees {
		out[id] = ref.Workload
	}
	return out
}

// Preload books every role already held on the given matches so the run observes
// existing designations. Two matches holding the same referee in the same slot is
// an input invariant violation.
func (rc *RunContext) Preload(matches []*Match) error {
	for _, m := range matches {
		if m.Cancelled {
			continue
		}
		for _, role := range Roles {
			rs := m.RoleSlot(role)
			if !rs.Status.Holds() {
				continue
			}
			if err := rc.Guard.Book(rs.RefereeID, m.Date, m.Slot, m.ID); err != nil {
				return fmt.Errorf("%w: match %s role %s: %v", ErrInvalidInput, m.ID, role, err)
			}
		}
	}
	return nil
}

func (rc *RunContext) validateMatch(m *Match) error {
	if m.ID == "" {
		return fmt.Errorf("%w: match without ID", ErrInvalidInput)
	}
	if m.Slot < 1 || m.Slot > SlotsPerDay {
		return fmt.Errorf("%w: match %s has slot %d (must be 1..%d)", ErrInvalidInput, m.ID, m.Slot, SlotsPerDay)
	}
	if _, ok := rc.categories[m.CategoryID]; !ok {
		return fmt.Errorf("%w: match %s references unknown category %q", ErrInvalidInput, m.ID, m.CategoryID)
	}
	if err := m.Venue.Validate(); err != nil {
		return fmt.Errorf("match %s venue: %w", m.ID, err)
	}
	return nil
}
