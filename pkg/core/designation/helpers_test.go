package designation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	matchDay = time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)
	venue    = Coordinates{Lat: 40.4168, Lng: -3.7038}
)

// kmPerDegreeLat is the haversine distance of one degree along a meridian
const kmPerDegreeLat = EarthRadiusKm * 3.141592653589793 / 180

// northOf returns a point the given distance due north of c
func northOf(c Coordinates, km float64) Coordinates {
	return Coordinates{Lat: c.Lat + km/kmPerDegreeLat, Lng: c.Lng}
}

// mockCriterion is a configurable criterion for testing
type mockCriterion struct {
	name  string
	valid func(c *ScoredCandidate) bool
}

func (m *mockCriterion) Name() string { return m.name }

func (m *mockCriterion) IsCandidateValid(rc *RunContext, c *ScoredCandidate) bool {
	if m.valid == nil {
		return true
	}
	return m.valid(c)
}

func availableAll(refereeID string, date time.Time, state SlotState) AvailabilityRecord {
	return AvailabilityRecord{
		RefereeID: refereeID,
		Date:      date,
		Slots:     [SlotsPerDay]SlotState{state, state, state, state},
	}
}

func referee(id string, km float64) Referee {
	return Referee{ID: id, Name: id, Level: 5, Home: northOf(venue, km), HasTransport: true, Active: true}
}

func newTestContext(t *testing.T, referees []Referee, categories []Category, records []AvailabilityRecord, criteria ...Criterion) *RunContext {
	t.Helper()
	index, err := BuildAvailabilityIndex(records)
	require.NoError(t, err)
	rc, err := NewRunContext(Config{
		Travel:      TravelPolicy{DrivingRadiusKm: 80, WalkingRadiusKm: 15},
		MinLeadDays: 7,
	}, index, NewConflictGuard(), referees, categories, criteria)
	require.NoError(t, err)
	return rc
}

func newMatch(id, categoryID string, date time.Time, slot int) *Match {
	return &Match{ID: id, Date: date, Slot: slot, Venue: venue, CategoryID: categoryID}
}
