package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/core/model"
	"github.com/jakechorley/referee-designation/pkg/db"
)

func respond(t *testing.T, store *memStore, matchID, role, refereeID string, accepted bool) *ResponseResult {
	t.Helper()
	result, err := OnRefereeResponse(context.Background(), store, zap.NewNop(), clockwork.NewFakeClockAt(testNow), testConfig(),
		model.Response{MatchID: matchID, Role: role, RefereeID: refereeID, Accepted: accepted})
	require.NoError(t, err)
	return result
}

func TestOnRefereeResponse_Accept(t *testing.T) {
	store := publishedStore(t)

	result := respond(t, store, "m1", "referee_a", "r1", true)

	assert.Equal(t, "accepted", result.Status)
	assert.False(t, result.Ignored)
	assert.False(t, result.Duplicate)
	stored, _ := store.designationOf("m1", "referee_a")
	assert.Equal(t, "accepted", stored.Status)

	commits := store.commitCalls
	again := respond(t, store, "m1", "referee_a", "r1", true)
	assert.True(t, again.Duplicate)
	assert.Equal(t, "accepted", again.Status)
	assert.Equal(t, commits, store.commitCalls, "duplicate acceptance writes nothing")
}

func TestOnRefereeResponse_RejectDesignatesReplacement(t *testing.T) {
	store := publishedStore(t)

	result := respond(t, store, "m1", "referee_b", "r2", false)

	// r1 and r3 hold other roles on m1, so r4 is the only candidate
	assert.Equal(t, "r4", result.Replacement)
	assert.Equal(t, "tentative", result.Status)
	assert.Nil(t, result.Shortfall)

	stored, _ := store.designationOf("m1", "referee_b")
	assert.Equal(t, "r4", stored.RefereeID)
	assert.Equal(t, "tentative", stored.Status)

	require.Len(t, store.rejections, 1)
	assert.Equal(t, "r2", store.rejections[0].RefereeID)
	assert.False(t, store.rejections[0].Implicit)
	assert.True(t, store.rejections[0].RejectedAt.Equal(testNow))
}

func TestOnRefereeResponse_RejectWithoutReplacementRecordsShortfall(t *testing.T) {
	store := publishedStore(t)
	respond(t, store, "m1", "referee_b", "r2", false)
	_, err := PublishDesignations(context.Background(), store, nil, testConfig(), zap.NewNop(), saturday, sunday)
	require.NoError(t, err)

	result := respond(t, store, "m1", "referee_b", "r4", false)

	assert.Empty(t, result.Replacement, "earlier rejectors are not offered the role again")
	require.NotNil(t, result.Shortfall)
	assert.Equal(t, designation.ReasonRefillExhausted, result.Shortfall.Reason)
	assert.Equal(t, "vacant", result.Status)

	_, held := store.designationOf("m1", "referee_b")
	assert.False(t, held)

	require.Len(t, store.shortfalls, 1)
	assert.Empty(t, store.shortfalls[0].RunID)
	assert.Equal(t, "referee_b", store.shortfalls[0].Role)
	assert.Len(t, store.rejections, 2)
}

func TestOnRefereeResponse_RejectionSavedAllOrNothing(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(testNow)
	reject := model.Response{MatchID: "m1", Role: "referee_b", RefereeID: "r2", Accepted: false}

	t.Run("with replacement", func(t *testing.T) {
		store := publishedStore(t)
		store.commitRejectionErr = errors.New("connection reset")

		_, err := OnRefereeResponse(ctx, store, zap.NewNop(), clock, testConfig(), reject)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save rejection")

		assert.Empty(t, store.rejections)
		stored, held := store.designationOf("m1", "referee_b")
		require.True(t, held)
		assert.Equal(t, "r2", stored.RefereeID)
		assert.Equal(t, "notified", stored.Status)

		store.commitRejectionErr = nil
		result := respond(t, store, "m1", "referee_b", "r2", false)
		assert.False(t, result.Duplicate, "a failed save leaves nothing to dedupe against")
		assert.Equal(t, "r4", result.Replacement)
		assert.Len(t, store.rejections, 1)
	})

	t.Run("with shortfall", func(t *testing.T) {
		store := publishedStore(t)
		respond(t, store, "m1", "referee_b", "r2", false)
		_, err := PublishDesignations(ctx, store, nil, testConfig(), zap.NewNop(), saturday, sunday)
		require.NoError(t, err)
		store.commitRejectionErr = errors.New("connection reset")

		_, err = OnRefereeResponse(ctx, store, zap.NewNop(), clock, testConfig(),
			model.Response{MatchID: "m1", Role: "referee_b", RefereeID: "r4", Accepted: false})
		require.Error(t, err)

		assert.Len(t, store.rejections, 1)
		assert.Empty(t, store.shortfalls)
		stored, held := store.designationOf("m1", "referee_b")
		require.True(t, held)
		assert.Equal(t, "r4", stored.RefereeID)
	})
}

func TestOnRefereeResponse_DuplicateRejection(t *testing.T) {
	store := publishedStore(t)
	respond(t, store, "m1", "referee_b", "r2", false)

	again := respond(t, store, "m1", "referee_b", "r2", false)

	assert.True(t, again.Duplicate)
	assert.False(t, again.Ignored)
	assert.Len(t, store.rejections, 1)
}

func TestOnRefereeResponse_IgnoredResponses(t *testing.T) {
	t.Run("referee does not hold the role", func(t *testing.T) {
		store := publishedStore(t)
		result := respond(t, store, "m1", "referee_a", "r4", true)

		assert.True(t, result.Ignored)
		assert.Contains(t, result.Reason, "does not hold")
		assert.Equal(t, "notified", result.Status)
	})

	t.Run("rejection before the offer was published", func(t *testing.T) {
		store := designatedStore(t)
		result := respond(t, store, "m1", "referee_a", "r1", false)

		assert.True(t, result.Ignored)
		assert.Equal(t, "tentative", result.Status)
		assert.Empty(t, store.rejections)
	})

	t.Run("acceptance after the match was cancelled", func(t *testing.T) {
		store := publishedStore(t)
		_, err := CancelMatch(context.Background(), store, zap.NewNop(), "m1")
		require.NoError(t, err)

		result := respond(t, store, "m1", "referee_a", "r1", true)

		assert.True(t, result.Ignored)
		assert.Equal(t, "cancelled", result.Status)
		stored, _ := store.designationOf("m1", "referee_a")
		assert.Equal(t, "cancelled", stored.Status)
	})
}

func TestOnRefereeResponse_InvalidInput(t *testing.T) {
	store := publishedStore(t)
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(testNow)

	_, err := OnRefereeResponse(ctx, store, zap.NewNop(), clock, testConfig(),
		model.Response{MatchID: "missing", Role: "referee_a", RefereeID: "r1", Accepted: true})
	assert.ErrorIs(t, err, designation.ErrInvalidInput)

	_, err = OnRefereeResponse(ctx, store, zap.NewNop(), clock, testConfig(),
		model.Response{MatchID: "m1", Role: "umpire", RefereeID: "r1", Accepted: true})
	assert.ErrorIs(t, err, designation.ErrInvalidInput)
}

func TestExpireOffers(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore()
	require.NoError(t, store.CommitAssignment(ctx, "m2", "referee_a", "r4", "notified"))
	store.now = testNow.Add(40 * time.Hour)
	require.NoError(t, store.CommitAssignment(ctx, "m1", "referee_a", "r1", "notified"))

	clock := clockwork.NewFakeClockAt(testNow.Add(49 * time.Hour))
	result, err := ExpireOffers(ctx, store, zap.NewNop(), clock, testConfig())
	require.NoError(t, err)

	assert.True(t, result.Cutoff.Equal(testNow.Add(time.Hour)))
	require.Len(t, result.Expired, 1, "only offers older than the timeout expire")
	expired := result.Expired[0]
	assert.Equal(t, "m2", expired.MatchID)
	assert.Equal(t, "r2", expired.Replacement, "r1 already holds a match, so the idle r2 ranks first")

	require.Len(t, store.rejections, 1)
	assert.True(t, store.rejections[0].Implicit)

	kept, _ := store.designationOf("m1", "referee_a")
	assert.Equal(t, "notified", kept.Status)
}

func TestExpireOffers_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore()
	const later = "2026-11-28"
	store.matches = append(store.matches, db.Match{ID: "m3", MatchDate: later, Slot: 1, VenueID: "v1", VenueName: "North Arena",
		VenueLat: 40.4168, VenueLng: -3.7038, CategoryID: "junior", HomeTeam: "Owls", AwayTeam: "Hawks"})
	bad := allSlots("r1", later)
	bad.Slot3 = "bogus"
	store.availability = append(store.availability, bad)
	require.NoError(t, store.CommitAssignment(ctx, "m2", "referee_a", "r4", "notified"))
	require.NoError(t, store.CommitAssignment(ctx, "m3", "referee_a", "r2", "notified"))

	clock := clockwork.NewFakeClockAt(testNow.Add(49 * time.Hour))
	result, err := ExpireOffers(ctx, store, zap.NewNop(), clock, testConfig())
	require.NoError(t, err)

	require.Len(t, result.Expired, 1)
	assert.Equal(t, "m2", result.Expired[0].MatchID)

	require.Len(t, result.Failed, 1)
	failed := result.Failed[0]
	assert.Equal(t, "m3", failed.MatchID)
	assert.Equal(t, "referee_a", failed.Role)
	assert.Equal(t, "r2", failed.RefereeID)
	assert.Contains(t, failed.Error, "bogus")

	kept, _ := store.designationOf("m3", "referee_a")
	assert.Equal(t, "notified", kept.Status)
	assert.Len(t, store.rejections, 1)
}

func TestExpireOffers_Disabled(t *testing.T) {
	store := publishedStore(t)
	cfg := testConfig()
	cfg.ResponseTimeoutHours = 0

	result, err := ExpireOffers(context.Background(), store, zap.NewNop(), clockwork.NewFakeClockAt(testNow.AddDate(0, 1, 0)), cfg)
	require.NoError(t, err)

	assert.Empty(t, result.Expired)
	assert.Empty(t, store.rejections)
}
