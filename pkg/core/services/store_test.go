package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// testNow is a Monday, twelve days before the fixture weekend
var testNow = time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

const (
	saturday = "2026-11-14"
	sunday   = "2026-11-15"
)

type designationKey struct {
	matchID string
	role    string
}

// memStore is an in-memory db.Database that enforces the same double booking rule
// as the postgres unique index
type memStore struct {
	now time.Time

	categories   []db.Category
	referees     []db.Referee
	matches      []db.Match
	availability []db.Availability
	designations map[designationKey]db.Designation
	rejections   []db.Rejection
	runs         []db.Run
	shortfalls   []db.Shortfall

	commitRunErr       error
	commitRejectionErr error
	getMatchesErr      error
	commitCalls        int
}

var _ db.Database = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		now:          testNow,
		designations: make(map[designationKey]db.Designation),
	}
}

func inWindow(date string, from, to time.Time) bool {
	return date >= from.Format(designation.DateLayout) && date <= to.Format(designation.DateLayout)
}

func (s *memStore) GetCategories(ctx context.Context) ([]db.Category, error) {
	return s.categories, nil
}

func (s *memStore) GetReferees(ctx context.Context) ([]db.Referee, error) {
	return s.referees, nil
}

func (s *memStore) GetMatches(ctx context.Context, from, to time.Time) ([]db.Match, error) {
	if s.getMatchesErr != nil {
		return nil, s.getMatchesErr
	}
	var out []db.Match
	for _, m := range s.matches {
		if inWindow(m.MatchDate, from, to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) GetMatch(ctx context.Context, matchID string) (*db.Match, error) {
	for _, m := range s.matches {
		if m.ID == matchID {
			match := m
			return &match, nil
		}
	}
	return nil, nil
}

func (s *memStore) SetMatchCancelled(ctx context.Context, matchID string) error {
	for i := range s.matches {
		if s.matches[i].ID == matchID {
			s.matches[i].Cancelled = true
			return nil
		}
	}
	return fmt.Errorf("match %s not found", matchID)
}

func (s *memStore) GetAvailability(ctx context.Context, from, to time.Time) ([]db.Availability, error) {
	var out []db.Availability
	for _, a := range s.availability {
		if inWindow(a.Date, from, to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) match(id string) (db.Match, bool) {
	for _, m := range s.matches {
		if m.ID == id {
			return m, true
		}
	}
	return db.Match{}, false
}

func (s *memStore) sortedDesignations(keep func(db.Designation) bool) []db.Designation {
	var out []db.Designation
	for _, d := range s.designations {
		if keep(d) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b db.Designation) int {
		if c := cmp.Compare(a.MatchID, b.MatchID); c != 0 {
			return c
		}
		return cmp.Compare(a.Role, b.Role)
	})
	return out
}

func (s *memStore) GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error) {
	return s.sortedDesignations(func(d db.Designation) bool {
		m, ok := s.match(d.MatchID)
		return ok && inWindow(m.MatchDate, from, to)
	}), nil
}

func (s *memStore) GetDesignationsByStatus(ctx context.Context, status string) ([]db.Designation, error) {
	return s.sortedDesignations(func(d db.Designation) bool { return d.Status == status }), nil
}

func holdsStatus(status string) bool {
	st, err := designation.ParseAssignmentStatus(status)
	return err == nil && st.Holds()
}

func (s *memStore) CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error {
	s.commitCalls++
	m, ok := s.match(matchID)
	if !ok {
		return fmt.Errorf("failed to commit designation %s/%s: match not found", matchID, role)
	}

	if holdsStatus(status) {
		for key, other := range s.designations {
			if key.matchID == matchID || other.RefereeID != refereeID || !holdsStatus(other.Status) {
				continue
			}
			om, _ := s.match(key.matchID)
			if om.MatchDate == m.MatchDate && om.Slot == m.Slot {
				return fmt.Errorf("failed to commit designation %s/%s: %w", matchID, role, designation.ErrDoubleBooking)
			}
		}
	}

	s.designations[designationKey{matchID, role}] = db.Designation{
		MatchID:   matchID,
		Role:      role,
		RefereeID: refereeID,
		Status:    status,
		UpdatedAt: s.now,
	}
	return nil
}

func (s *memStore) ReleaseAssignment(ctx context.Context, matchID, role string) error {
	delete(s.designations, designationKey{matchID, role})
	return nil
}

func (s *memStore) GetRejections(ctx context.Context, matchID, role string) ([]db.Rejection, error) {
	var out []db.Rejection
	for _, r := range s.rejections {
		if r.MatchID == matchID && r.Role == role {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) GetRejectionsBetween(ctx context.Context, from, to time.Time) ([]db.Rejection, error) {
	var out []db.Rejection
	for _, r := range s.rejections {
		if m, ok := s.match(r.MatchID); ok && inWindow(m.MatchDate, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// CommitRejection writes nothing unless every part succeeds
func (s *memStore) CommitRejection(ctx context.Context, rejection *db.Rejection, replacement *db.Designation, shortfall *db.Shortfall) error {
	if s.commitRejectionErr != nil {
		return s.commitRejectionErr
	}
	if replacement != nil {
		if err := s.CommitAssignment(ctx, replacement.MatchID, replacement.Role, replacement.RefereeID, replacement.Status); err != nil {
			return err
		}
	} else {
		delete(s.designations, designationKey{rejection.MatchID, rejection.Role})
		if shortfall != nil {
			s.shortfalls = append(s.shortfalls, *shortfall)
		}
	}
	s.rejections = append(s.rejections, *rejection)
	return nil
}

func (s *memStore) CommitRun(ctx context.Context, run *db.Run, designations []db.Designation, shortfalls []db.Shortfall) error {
	if s.commitRunErr != nil {
		return s.commitRunErr
	}
	for _, d := range designations {
		if err := s.CommitAssignment(ctx, d.MatchID, d.Role, d.RefereeID, d.Status); err != nil {
			return err
		}
	}
	s.runs = append(s.runs, *run)
	s.shortfalls = append(s.shortfalls, shortfalls...)
	return nil
}

func (s *memStore) GetRuns(ctx context.Context) ([]db.Run, error) {
	return s.runs, nil
}

func (s *memStore) GetShortfalls(ctx context.Context, runID string) ([]db.Shortfall, error) {
	var out []db.Shortfall
	for _, sf := range s.shortfalls {
		if sf.RunID == runID {
			out = append(out, sf)
		}
	}
	return out, nil
}

// designationOf returns the stored row of a role, if any
func (s *memStore) designationOf(matchID, role string) (db.Designation, bool) {
	d, ok := s.designations[designationKey{matchID, role}]
	return d, ok
}

func testConfig() *config.Config {
	return &config.Config{
		Federation:           "Test Federation",
		DrivingRadiusKm:      80,
		WalkingRadiusKm:      15,
		MinLeadDays:          3,
		WorkloadWindowDays:   7,
		ResponseTimeoutHours: 48,
		NotificationChannel:  config.ChannelNone,
	}
}

func allSlots(refereeID, date string) db.Availability {
	return db.Availability{
		RefereeID: refereeID,
		Date:      date,
		Slot1:     "with_transport",
		Slot2:     "with_transport",
		Slot3:     "with_transport",
		Slot4:     "with_transport",
	}
}

// newFixtureStore holds a senior match (two referees and a scorer) on Saturday slot 1,
// a junior match (one referee) on Saturday slot 2 and four referees living at the venue
func newFixtureStore() *memStore {
	s := newMemStore()
	s.categories = []db.Category{
		{ID: "senior", Name: "Senior", MinReferees: 2, RequiresScorer: true, Priority: 1, MinLevel: 2, LabelRefereeA: "Crew Chief"},
		{ID: "junior", Name: "Junior", MinReferees: 1, Priority: 2, MinLevel: 1},
	}
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("r%d", i)
		s.referees = append(s.referees, db.Referee{
			ID: id, Name: fmt.Sprintf("Referee %d", i), Email: id + "@example.org",
			Level: 3, Lat: 40.4168, Lng: -3.7038, HasTransport: true, Active: true,
		})
		s.availability = append(s.availability, allSlots(id, saturday), allSlots(id, sunday))
	}
	s.matches = []db.Match{
		{ID: "m1", MatchDate: saturday, Slot: 1, VenueID: "v1", VenueName: "North Arena",
			VenueLat: 40.4168, VenueLng: -3.7038, CategoryID: "senior", HomeTeam: "Lions", AwayTeam: "Tigers"},
		{ID: "m2", MatchDate: saturday, Slot: 2, VenueID: "v1", VenueName: "North Arena",
			VenueLat: 40.4168, VenueLng: -3.7038, CategoryID: "junior", HomeTeam: "Cubs", AwayTeam: "Kits"},
	}
	return s
}
