package designation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        AssignmentStatus
		ev          Event
		want        AssignmentStatus
		wantChanged bool
		wantErr     bool
	}{
		{name: "publish tentative", from: StatusTentative, ev: EventPublish, want: StatusNotified, wantChanged: true},
		{name: "accept notified", from: StatusNotified, ev: EventAccept, want: StatusAccepted, wantChanged: true},
		{name: "reject notified", from: StatusNotified, ev: EventReject, want: StatusRejected, wantChanged: true},
		{name: "confirm accepted", from: StatusAccepted, ev: EventConfirm, want: StatusConfirmed, wantChanged: true},
		{name: "release rejected", from: StatusRejected, ev: EventRelease, want: StatusVacant, wantChanged: true},
		{name: "cancel notified", from: StatusNotified, ev: EventCancel, want: StatusCancelled, wantChanged: true},

		{name: "duplicate publish", from: StatusNotified, ev: EventPublish, want: StatusNotified},
		{name: "duplicate accept", from: StatusAccepted, ev: EventAccept, want: StatusAccepted},
		{name: "accept after confirm", from: StatusConfirmed, ev: EventAccept, want: StatusConfirmed},
		{name: "duplicate reject", from: StatusRejected, ev: EventReject, want: StatusRejected},
		{name: "duplicate cancel", from: StatusCancelled, ev: EventCancel, want: StatusCancelled},

		{name: "accept tentative", from: StatusTentative, ev: EventAccept, wantErr: true},
		{name: "reject accepted", from: StatusAccepted, ev: EventReject, wantErr: true},
		{name: "reject confirmed", from: StatusConfirmed, ev: EventReject, wantErr: true},
		{name: "cancel confirmed", from: StatusConfirmed, ev: EventCancel, wantErr: true},
		{name: "publish vacant", from: StatusVacant, ev: EventPublish, wantErr: true},
		{name: "accept cancelled", from: StatusCancelled, ev: EventAccept, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := Transition(tt.from, tt.ev)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrLifecycleConflict))
				assert.Equal(t, tt.from, got)
				assert.False(t, changed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestApply_CancelledMatchRejectsEvents(t *testing.T) {
	match := newMatch("m1", "senior", matchDay, 2)
	match.SetRole(RoleRefereeA, RoleSlot{RefereeID: "r1", Status: StatusNotified})
	match.Cancelled = true

	_, err := Apply(match, RoleRefereeA, EventAccept)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLifecycleConflict))
	assert.Equal(t, StatusNotified, match.RoleSlot(RoleRefereeA).Status)
}

func TestApply_AcceptIsIdempotent(t *testing.T) {
	match := newMatch("m1", "senior", matchDay, 2)
	match.SetRole(RoleRefereeA, RoleSlot{RefereeID: "r1", Status: StatusNotified})

	changed, err := Apply(match, RoleRefereeA, EventAccept)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Apply(match, RoleRefereeA, EventAccept)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, StatusAccepted, match.RoleSlot(RoleRefereeA).Status)
	assert.Equal(t, "r1", match.RoleSlot(RoleRefereeA).RefereeID)
}

func refillFixture(t *testing.T, refs ...Referee) (*RunContext, *Match) {
	t.Helper()
	records := make([]AvailabilityRecord, 0, len(refs))
	for _, r := range refs {
		records = append(records, availableAll(r.ID, matchDay, AvailableWithTransport))
	}
	rc := newTestContext(t, refs, []Category{categoryTwoRefs}, records)
	match := newMatch("m1", "senior", matchDay, 2)

	result, err := Designate(rc, []*Match{match})
	require.NoError(t, err)
	require.NotEmpty(t, result.Assignments)
	for _, role := range Roles {
		if match.RoleSlot(role).Status == StatusTentative {
			_, err := Apply(match, role, EventPublish)
			require.NoError(t, err)
		}
	}
	return rc, match
}

func TestRefill_FindsReplacement(t *testing.T) {
	rc, match := refillFixture(t, referee("r1", 5), referee("r2", 6), referee("r3", 7), referee("r4", 8))
	require.Equal(t, "r1", match.RoleSlot(RoleRefereeA).RefereeID)

	outcome, err := Refill(rc, match, RoleRefereeA, "r1", nil)
	require.NoError(t, err)

	require.NotNil(t, outcome.Assignment)
	assert.Nil(t, outcome.Shortfall)
	assert.Equal(t, "r1", outcome.ReleasedRefereeID)
	assert.Equal(t, "r4", outcome.Assignment.RefereeID)
	assert.Equal(t, StatusTentative, match.RoleSlot(RoleRefereeA).Status)

	ref, _ := rc.Referee("r1")
	assert.Equal(t, 0, ref.Workload)
	assert.False(t, rc.Guard.IsBooked("r1", matchDay, 2))
	holder, ok := rc.Guard.holder("r4", matchDay, 2)
	assert.True(t, ok)
	assert.Equal(t, "m1", holder)
}

func TestRefill_ExcludesEarlierRejectors(t *testing.T) {
	rc, match := refillFixture(t, referee("r1", 5), referee("r2", 6), referee("r3", 7), referee("r4", 8))

	outcome, err := Refill(rc, match, RoleRefereeA, "r1", []string{"r4"})
	require.NoError(t, err)

	assert.Nil(t, outcome.Assignment)
	require.NotNil(t, outcome.Shortfall)
	assert.Equal(t, ReasonRefillExhausted, outcome.Shortfall.Reason)
	assert.Equal(t, StatusVacant, match.RoleSlot(RoleRefereeA).Status)
	assert.Empty(t, match.RoleSlot(RoleRefereeA).RefereeID)
}

func TestRefill_RecordsRejectorsOnRunContext(t *testing.T) {
	rc, match := refillFixture(t, referee("r1", 5), referee("r2", 6), referee("r3", 7), referee("r4", 8))

	_, err := Refill(rc, match, RoleRefereeA, "r1", []string{"r9"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"r1", "r9"}, rc.Rejectors("m1", RoleRefereeA))
	assert.Empty(t, rc.Rejectors("m1", RoleRefereeB))
}

func TestRefill_RejectorIsNotReselected(t *testing.T) {
	// Only the rejector qualifies, so the role stays vacant.
	rc, match := refillFixture(t, referee("r1", 5))

	outcome, err := Refill(rc, match, RoleRefereeA, "r1", nil)
	require.NoError(t, err)

	assert.Nil(t, outcome.Assignment)
	require.NotNil(t, outcome.Shortfall)
	ref, _ := rc.Referee("r1")
	assert.Equal(t, 0, ref.Workload)
}

func TestRefill_WrongHolderIsConflict(t *testing.T) {
	rc, match := refillFixture(t, referee("r1", 5), referee("r2", 6))

	_, err := Refill(rc, match, RoleRefereeA, "r2", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLifecycleConflict))
	assert.Equal(t, "r1", match.RoleSlot(RoleRefereeA).RefereeID)
}

func TestRefill_AcceptedRoleCannotBeRejected(t *testing.T) {
	rc, match := refillFixture(t, referee("r1", 5), referee("r2", 6))
	_, err := Apply(match, RoleRefereeA, EventAccept)
	require.NoError(t, err)

	_, err = Refill(rc, match, RoleRefereeA, "r1", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLifecycleConflict))
	assert.Equal(t, StatusAccepted, match.RoleSlot(RoleRefereeA).Status)
}

func TestCancelMatch_ReleasesBookings(t *testing.T) {
	rc, match := refillFixture(t, referee("r1", 5), referee("r2", 6), referee("r3", 7))

	cancelled, conflicts := CancelMatch(rc.Guard, match)

	assert.Empty(t, conflicts)
	assert.ElementsMatch(t, []Role{RoleRefereeA, RoleRefereeB, RoleScorer}, cancelled)
	assert.True(t, match.Cancelled)
	assert.Equal(t, 0, rc.Guard.Len())
	for _, role := range Roles {
		assert.Equal(t, StatusCancelled, match.RoleSlot(role).Status)
	}
}

func TestCancelMatch_ConfirmedRoleIsConflict(t *testing.T) {
	guard := NewConflictGuard()
	match := newMatch("m1", "senior", matchDay, 2)
	match.SetRole(RoleRefereeA, RoleSlot{RefereeID: "r1", Status: StatusConfirmed})
	match.SetRole(RoleRefereeB, RoleSlot{RefereeID: "r2", Status: StatusNotified})
	require.NoError(t, guard.Book("r1", matchDay, 2, "m1"))
	require.NoError(t, guard.Book("r2", matchDay, 2, "m1"))

	cancelled, conflicts := CancelMatch(guard, match)

	assert.Equal(t, []Role{RoleRefereeB}, cancelled)
	require.Len(t, conflicts, 1)
	assert.True(t, errors.Is(conflicts[0], ErrLifecycleConflict))
	assert.Equal(t, StatusConfirmed, match.RoleSlot(RoleRefereeA).Status)
	assert.True(t, guard.IsBooked("r1", matchDay, 2))
	assert.False(t, guard.IsBooked("r2", matchDay, 2))
}
