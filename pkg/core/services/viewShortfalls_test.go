package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/db"
)

func shortfallStore() *memStore {
	store := newMemStore()
	store.runs = []db.Run{
		{ID: "run-1", StartedAt: testNow},
		{ID: "run-2", StartedAt: testNow.AddDate(0, 0, 1)},
	}
	store.shortfalls = []db.Shortfall{
		{ID: "s1", RunID: "run-1", MatchID: "m1", Role: "scorer"},
		{ID: "s2", RunID: "run-2", MatchID: "m2", Role: "referee_b"},
		{ID: "s3", RunID: "", MatchID: "m1", Role: "referee_a"},
	}
	return store
}

func TestViewShortfalls_LatestRun(t *testing.T) {
	report, err := ViewShortfalls(context.Background(), shortfallStore(), zap.NewNop(), "")
	require.NoError(t, err)

	assert.Equal(t, "run-2", report.Run.ID)
	require.Len(t, report.Shortfalls, 1)
	assert.Equal(t, "s2", report.Shortfalls[0].ID)
	require.Len(t, report.Refills, 1)
	assert.Equal(t, "s3", report.Refills[0].ID)
}

func TestViewShortfalls_SpecificRun(t *testing.T) {
	report, err := ViewShortfalls(context.Background(), shortfallStore(), zap.NewNop(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.Run.ID)
	require.Len(t, report.Shortfalls, 1)
	assert.Equal(t, "s1", report.Shortfalls[0].ID)
}

func TestViewShortfalls_Errors(t *testing.T) {
	_, err := ViewShortfalls(context.Background(), newMemStore(), zap.NewNop(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no designation runs found")

	_, err = ViewShortfalls(context.Background(), shortfallStore(), zap.NewNop(), "run-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-9 not found")
}
