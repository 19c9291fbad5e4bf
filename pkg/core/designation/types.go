package designation

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput marks input invariant violations (duplicate availability,
	// malformed coordinates, unknown categories). A run that hits one commits nothing.
	ErrInvalidInput = errors.New("invalid designation input")

	// ErrLifecycleConflict marks an event that does not apply to the assignment's
	// current state, e.g. an acceptance arriving after the match was cancelled.
	ErrLifecycleConflict = errors.New("designation lifecycle conflict")

	// ErrDoubleBooking is returned by the ConflictGuard when a referee is already
	// booked on another match for the same date and slot.
	ErrDoubleBooking = errors.New("referee already booked for slot")
)

// DateLayout is the layout used for every date key in the engine and the store
const DateLayout = "2006-01-02"

// SlotsPerDay is the number of half-day slots ("franjas") a day is split into
const SlotsPerDay = 4

// Role identifies one of the three positions on a match
type Role int

const (
	RoleRefereeA Role = iota
	RoleRefereeB
	RoleScorer
)

// Roles lists every role in fill order
var Roles = []Role{RoleRefereeA, RoleRefereeB, RoleScorer}

func (r Role) String() string {
	switch r {
	case RoleRefereeA:
		return "referee_a"
	case RoleRefereeB:
		return "referee_b"
	case RoleScorer:
		return "scorer"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts the stored/CLI form of a role back to a Role
func ParseRole(s string) (Role, error) {
	switch s {
	case "referee_a", "a":
		return RoleRefereeA, nil
	case "referee_b", "b":
		return RoleRefereeB, nil
	case "scorer":
		return RoleScorer, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// AssignmentStatus is the lifecycle state of a (match, role) assignment
type AssignmentStatus int

const (
	StatusVacant AssignmentStatus = iota
	StatusTentative
	StatusNotified
	StatusAccepted
	StatusRejected
	StatusConfirmed
	StatusCancelled
)

func (s AssignmentStatus) String() string {
	switch s {
	case StatusVacant:
		return "vacant"
	case StatusTentative:
		return "tentative"
	case StatusNotified:
		return "notified"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusConfirmed:
		return "confirmed"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseAssignmentStatus converts the stored form of a status back to an AssignmentStatus
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	for st := StatusVacant; st <= StatusCancelled; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown assignment status %q", s)
}

// Holds reports whether a role in this status keeps its referee and booking
func (s AssignmentStatus) Holds() bool {
	switch s {
	case StatusTentative, StatusNotified, StatusAccepted, StatusConfirmed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s AssignmentStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// SlotState is a referee's declared availability for one slot of one day
type SlotState int

const (
	Unavailable SlotState = iota
	AvailableWithTransport
	AvailableWithoutTransport
)

func (s SlotState) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case AvailableWithTransport:
		return "with_transport"
	case AvailableWithoutTransport:
		return "without_transport"
	}
	return fmt.Sprintf("slotstate(%d)", int(s))
}

// ParseSlotState converts the stored form of a slot state back to a SlotState
func ParseSlotState(s string) (SlotState, error) {
	switch s {
	case "unavailable", "":
		return Unavailable, nil
	case "with_transport":
		return AvailableWithTransport, nil
	case "without_transport":
		return AvailableWithoutTransport, nil
	}
	return 0, fmt.Errorf("unknown slot state %q", s)
}

// Category holds the staffing rules for matches of one competition category
type Category struct {
	ID             string
	Name           string
	MinReferees    int
	RequiresScorer bool
	// Priority orders categories within a run; lower values are scheduled first
	Priority int
	MinLevel int
	// RoleLabels are the federation's display names for each role
	RoleLabels map[Role]string
}

// RequiredRoles returns the roles a match of this category must staff, in fill order
func (c *Category) RequiredRoles() []Role {
	roles := []Role{RoleRefereeA}
	if c.MinReferees >= 2 {
		roles = append(roles, RoleRefereeB)
	}
	if c.RequiresScorer {
		roles = append(roles, RoleScorer)
	}
	return roles
}

// Label returns the display label for a role, falling back to the role name
func (c *Category) Label(role Role) string {
	if label, ok := c.RoleLabels[role]; ok && label != "" {
		return label
	}
	return role.String()
}

// Referee is a candidate for designation
type Referee struct {
	ID           string
	Name         string
	Email        string
	Level        int
	Home         Coordinates
	HasTransport bool
	Active       bool

	// Workload is the number of matches held in the active period.
	// It is the only referee field the engine mutates.
	Workload int
}

// RoleSlot is the current holder and status of one role on a match
type RoleSlot struct {
	RefereeID string
	Status    AssignmentStatus
	UpdatedAt time.Time
}

// IsOpen reports whether the role needs filling
func (rs RoleSlot) IsOpen() bool {
	return !rs.Status.Holds() && rs.Status != StatusCancelled
}

// Match is a scheduled game needing officials
type Match struct {
	ID         string
	Date       time.Time
	Slot       int
	VenueID    string
	VenueName  string
	Venue      Coordinates
	CategoryID string
	Cancelled  bool
	Roles      map[Role]RoleSlot
}

// DateKey returns the match date formatted with DateLayout
func (m *Match) DateKey() string {
	return m.Date.Format(DateLayout)
}

// RoleSlot returns the current state of a role, vacant if never assigned
func (m *Match) RoleSlot(role Role) RoleSlot {
	if m.Roles == nil {
		return RoleSlot{}
	}
	return m.Roles[role]
}

// SetRole replaces the state of a role
func (m *Match) SetRole(role Role, slot RoleSlot) {
	if m.Roles == nil {
		m.Roles = make(map[Role]RoleSlot)
	}
	m.Roles[role] = slot
}

// HoldsOtherRole reports whether the referee holds a role other than the given one
func (m *Match) HoldsOtherRole(refereeID string, role Role) bool {
	for r, rs := range m.Roles {
		if r != role && rs.RefereeID == refereeID && rs.Status.Holds() {
			return true
		}
	}
	return false
}

// Assignment is a (match, role) → referee designation produced by the engine
type Assignment struct {
	MatchID   string
	Role      Role
	RefereeID string
	Status    AssignmentStatus
	Date      time.Time
	Slot      int
	// DistanceKm is the referee's home-to-venue distance at the time of the pick
	DistanceKm float64
}

// ShortfallReason explains why a role was left unfilled
type ShortfallReason string

const (
	ReasonNoCandidate     ShortfallReason = "no_qualifying_candidate"
	ReasonRefillExhausted ShortfallReason = "refill_no_candidate"
)

// Shortfall is a required role that could not be filled
type Shortfall struct {
	MatchID    string
	CategoryID string
	Date       time.Time
	Slot       int
	Role       Role
	Reason     ShortfallReason
}

// RunResult is the outcome of a designation pass
type RunResult struct {
	Assignments []Assignment
	Shortfalls  []Shortfall
}

// DateOnly truncates a time to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
