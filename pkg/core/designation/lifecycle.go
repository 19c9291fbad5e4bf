package designation

import "fmt"

// Event drives a transition of an assignment's lifecycle
type Event int

const (
	// EventPublish is the operator publishing a tentative designation to the referee
	EventPublish Event = iota
	EventAccept
	EventReject
	// EventConfirm closes an accepted designation
	EventConfirm
	// EventRelease clears a rejected role so it can be refilled
	EventRelease
	// EventCancel records that the match was called off
	EventCancel
)

func (e Event) String() string {
	switch e {
	case EventPublish:
		return "publish"
	case EventAccept:
		return "accept"
	case EventReject:
		return "reject"
	case EventConfirm:
		return "confirm"
	case EventRelease:
		return "release"
	case EventCancel:
		return "cancel"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type transitionKey struct {
	from AssignmentStatus
	ev   Event
}

var transitions = map[transitionKey]AssignmentStatus{
	{StatusTentative, EventPublish}: StatusNotified,
	{StatusNotified, EventAccept}:   StatusAccepted,
	{StatusNotified, EventReject}:   StatusRejected,
	{StatusAccepted, EventConfirm}:  StatusConfirmed,
	{StatusRejected, EventRelease}:  StatusVacant,

	{StatusVacant, EventCancel}:    StatusCancelled,
	{StatusTentative, EventCancel}: StatusCancelled,
	{StatusNotified, EventCancel}:  StatusCancelled,
	{StatusAccepted, EventCancel}:  StatusCancelled,
	{StatusRejected, EventCancel}:  StatusCancelled,
}

// repeats are events that leave the state unchanged when delivered twice
var repeats = map[transitionKey]bool{
	{StatusNotified, EventPublish}:  true,
	{StatusAccepted, EventAccept}:   true,
	{StatusConfirmed, EventAccept}:  true,
	{StatusRejected, EventReject}:   true,
	{StatusConfirmed, EventConfirm}: true,
	{StatusVacant, EventRelease}:    true,
	{StatusCancelled, EventCancel}:  true,
}

// Transition returns the state reached by applying ev to from.
// Duplicate deliveries return (from, false, nil); transitions that do not apply
// return ErrLifecycleConflict.
func Transition(from AssignmentStatus, ev Event) (AssignmentStatus, bool, error) {
	if to, ok := transitions[transitionKey{from, ev}]; ok {
		return to, true, nil
	}
	if repeats[transitionKey{from, ev}] {
		return from, false, nil
	}
	return from, false, fmt.Errorf("%w: cannot %s a %s designation", ErrLifecycleConflict, ev, from)
}

// Apply transitions the status of one role on a match
func Apply(match *Match, role Role, ev Event) (bool, error) {
	if match.Cancelled && ev != EventCancel {
		return false, fmt.Errorf("%w: match %s is cancelled", ErrLifecycleConflict, match.ID)
	}

	current := match.RoleSlot(role)
	to, changed, err := Transition(current.Status, ev)
	if err != nil {
		return false, fmt.Errorf("match %s role %s: %w", match.ID, role, err)
	}
	if changed {
		current.Status = to
		match.SetRole(role, current)
	}
	return changed, nil
}

// RefillOutcome is the result of handling a rejection
type RefillOutcome struct {
	MatchID string
	Role    Role
	// ReleasedRefereeID is the referee who rejected and was released
	ReleasedRefereeID string
	// Assignment is the replacement designation, nil if none qualified
	Assignment *Assignment
	// Shortfall is set when no replacement qualified
	Shortfall *Shortfall
}

// Refill handles a referee rejecting a role: the role is released, the referee's
// booking and workload are rolled back, and exactly one ranking pass is made for the
// vacated role with the rejecting referee and every earlier rejector excluded, both
// those passed in and those recorded on the run context.
func Refill(rc *RunContext, match *Match, role Role, rejectingRefereeID string, excluding []string) (*RefillOutcome, error) {
	if match.Cancelled {
		return nil, fmt.Errorf("%w: match %s is cancelled", ErrLifecycleConflict, match.ID)
	}

	current := match.RoleSlot(role)
	if current.RefereeID != rejectingRefereeID {
		return nil, fmt.Errorf("%w: referee %s does not hold %s on match %s",
			ErrLifecycleConflict, rejectingRefereeID, role, match.ID)
	}

	if _, err := Apply(match, role, EventReject); err != nil {
		return nil, err
	}
	if _, err := Apply(match, role, EventRelease); err != nil {
		return nil, err
	}

	rc.Guard.Release(rejectingRefereeID, match.Date, match.Slot, match.ID)
	if ref, ok := rc.Referee(rejectingRefereeID); ok && ref.Workload > 0 {
		ref.Workload--
	}
	match.SetRole(role, RoleSlot{Status: StatusVacant})

	outcome := &RefillOutcome{
		MatchID:           match.ID,
		Role:              role,
		ReleasedRefereeID: rejectingRefereeID,
	}

	for _, id := range excluding {
		rc.ExcludeRejector(match.ID, role, id)
	}
	rc.ExcludeRejector(match.ID, role, rejectingRefereeID)
	exclude := rc.Rejectors(match.ID, role)

	assignment, ok := fillRole(rc, NewCandidateFilter(rc), match, role, exclude)
	if !ok {
		shortfall := shortfallFor(match, role, ReasonRefillExhausted)
		outcome.Shortfall = &shortfall
		return outcome, nil
	}
	outcome.Assignment = &assignment
	return outcome, nil
}

// CancelMatch calls a match off: every role that can still change is cancelled and
// its booking released. Confirmed roles are absorbing and are reported as conflicts.
func CancelMatch(guard *ConflictGuard, match *Match) (cancelled []Role, conflicts []error) {
	match.Cancelled = true
	for _, role := range Roles {
		current := match.RoleSlot(role)
		if current.RefereeID == "" && current.Status == StatusVacant {
			continue
		}
		to, changed, err := Transition(current.Status, EventCancel)
		if err != nil {
			conflicts = append(conflicts, fmt.Errorf("match %s role %s: %w", match.ID, role, err))
			continue
		}
		if !changed {
			continue
		}
		if current.Status.Holds() && guard != nil {
			guard.Release(current.RefereeID, match.Date, match.Slot, match.ID)
		}
		current.Status = to
		match.SetRole(role, current)
		cancelled = append(cancelled, role)
	}
	return cancelled, conflicts
}
