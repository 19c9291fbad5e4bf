package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/core/designation/criteria"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// runLoader is the read side every engine-backed service needs
type runLoader interface {
	GetCategories(ctx context.Context) ([]db.Category, error)
	GetReferees(ctx context.Context) ([]db.Referee, error)
	GetMatches(ctx context.Context, from, to time.Time) ([]db.Match, error)
	GetAvailability(ctx context.Context, from, to time.Time) ([]db.Availability, error)
	GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error)
	GetRejectionsBetween(ctx context.Context, from, to time.Time) ([]db.Rejection, error)
}

// loadedRun is a run context together with the matches it was built from
type loadedRun struct {
	rc      *designation.RunContext
	matches []*designation.Match
	byID    map[string]*designation.Match
	rows    map[string]db.Match
}

// loadRun reads everything a designation pass over [from, to] needs, in one go, and
// assembles a RunContext. Existing holds are booked in the guard and counted as
// workload; every recorded rejection bars its referee from that role.
func loadRun(ctx context.Context, store runLoader, cfg *config.Config, logger *zap.Logger, from, to time.Time) (*loadedRun, error) {
	categoryRows, err := store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	refereeRows, err := store.GetReferees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referees: %w", err)
	}
	matchRows, err := store.GetMatches(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	availabilityRows, err := store.GetAvailability(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}
	designationRows, err := store.GetDesignations(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch designations: %w", err)
	}
	rejectionRows, err := store.GetRejectionsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rejections: %w", err)
	}

	logger.Debug("Loaded designation inputs",
		zap.Int("categories", len(categoryRows)),
		zap.Int("referees", len(refereeRows)),
		zap.Int("matches", len(matchRows)),
		zap.Int("availability_records", len(availabilityRows)),
		zap.Int("designations", len(designationRows)),
		zap.Int("rejections", len(rejectionRows)))

	records := make([]designation.AvailabilityRecord, 0, len(availabilityRows))
	for _, row := range availabilityRows {
		rec, err := toAvailabilityRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	index, err := designation.BuildAvailabilityIndex(records)
	if err != nil {
		return nil, fmt.Errorf("failed to index availability: %w", err)
	}
	logger.Debug("Indexed availability", zap.Int("referee_days", index.Len()))

	matches, err := buildMatches(matchRows, designationRows)
	if err != nil {
		return nil, err
	}

	workloads := workloadsFrom(matches)
	referees := make([]designation.Referee, 0, len(refereeRows))
	for _, row := range refereeRows {
		ref := toReferee(row)
		ref.Workload = workloads[ref.ID]
		referees = append(referees, ref)
	}

	categories := make([]designation.Category, 0, len(categoryRows))
	for _, row := range categoryRows {
		categories = append(categories, toCategory(row))
	}

	engineCfg := cfg.Engine()
	rc, err := designation.NewRunContext(engineCfg, index, designation.NewConflictGuard(), referees, categories, criteria.Defaults(engineCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build run context: %w", err)
	}
	if err := rc.Preload(matches); err != nil {
		return nil, fmt.Errorf("failed to book existing designations: %w", err)
	}
	for _, row := range rejectionRows {
		role, err := designation.ParseRole(row.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: rejection on match %s: %v", designation.ErrInvalidInput, row.MatchID, err)
		}
		rc.ExcludeRejector(row.MatchID, role, row.RefereeID)
	}

	loaded := &loadedRun{
		rc:      rc,
		matches: matches,
		byID:    make(map[string]*designation.Match, len(matches)),
		rows:    make(map[string]db.Match, len(matchRows)),
	}
	for _, m := range matches {
		loaded.byID[m.ID] = m
	}
	for _, row := range matchRows {
		loaded.rows[row.ID] = row
	}
	return loaded, nil
}

// buildMatches converts match rows and attaches their current designations
func buildMatches(matchRows []db.Match, designationRows []db.Designation) ([]*designation.Match, error) {
	matches := make([]*designation.Match, 0, len(matchRows))
	byID := make(map[string]*designation.Match, len(matchRows))
	for _, row := range matchRows {
		m, err := toMatch(row)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
		byID[m.ID] = m
	}

	for _, row := range designationRows {
		m, ok := byID[row.MatchID]
		if !ok {
			continue
		}
		role, err := designation.ParseRole(row.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: designation on match %s: %v", designation.ErrInvalidInput, row.MatchID, err)
		}
		status, err := designation.ParseAssignmentStatus(row.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: designation on match %s: %v", designation.ErrInvalidInput, row.MatchID, err)
		}
		m.SetRole(role, designation.RoleSlot{RefereeID: row.RefereeID, Status: status, UpdatedAt: row.UpdatedAt})
	}

	return matches, nil
}

// workloadsFrom counts the roles each referee holds across the matches
func workloadsFrom(matches []*designation.Match) map[string]int {
	workloads := make(map[string]int)
	for _, m := range matches {
		if m.Cancelled {
			continue
		}
		for _, role := range designation.Roles {
			rs := m.RoleSlot(role)
			if rs.Status.Holds() {
				workloads[rs.RefereeID]++
			}
		}
	}
	return workloads
}

func toMatch(row db.Match) (*designation.Match, error) {
	date, err := time.Parse(designation.DateLayout, row.MatchDate)
	if err != nil {
		return nil, fmt.Errorf("%w: match %s has invalid date %q", designation.ErrInvalidInput, row.ID, row.MatchDate)
	}
	return &designation.Match{
		ID:         row.ID,
		Date:       date,
		Slot:       row.Slot,
		VenueID:    row.VenueID,
		VenueName:  row.VenueName,
		Venue:      designation.Coordinates{Lat: row.VenueLat, Lng: row.VenueLng},
		CategoryID: row.CategoryID,
		Cancelled:  row.Cancelled,
	}, nil
}

func toReferee(row db.Referee) designation.Referee {
	return designation.Referee{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Level:        row.Level,
		Home:         designation.Coordinates{Lat: row.Lat, Lng: row.Lng},
		HasTransport: row.HasTransport,
		Active:       row.Active,
	}
}

func toCategory(row db.Category) designation.Category {
	labels := map[designation.Role]string{}
	if row.LabelRefereeA != "" {
		labels[designation.RoleRefereeA] = row.LabelRefereeA
	}
	if row.LabelRefereeB != "" {
		labels[designation.RoleRefereeB] = row.LabelRefereeB
	}
	if row.LabelScorer != "" {
		labels[designation.RoleScorer] = row.LabelScorer
	}
	return designation.Category{
		ID:             row.ID,
		Name:           row.Name,
		MinReferees:    row.MinReferees,
		RequiresScorer: row.RequiresScorer,
		Priority:       row.Priority,
		MinLevel:       row.MinLevel,
		RoleLabels:     labels,
	}
}

func toAvailabilityRecord(row db.Availability) (designation.AvailabilityRecord, error) {
	date, err := time.Parse(designation.DateLayout, row.Date)
	if err != nil {
		return designation.AvailabilityRecord{}, fmt.Errorf("%w: availability of %s has invalid date %q",
			designation.ErrInvalidInput, row.RefereeID, row.Date)
	}

	rec := designation.AvailabilityRecord{RefereeID: row.RefereeID, Date: date, Note: row.Note}
	for i, raw := range []string{row.Slot1, row.Slot2, row.Slot3, row.Slot4} {
		state, err := designation.ParseSlotState(raw)
		if err != nil {
			return designation.AvailabilityRecord{}, fmt.Errorf("%w: availability of %s on %s slot %d: %v",
				designation.ErrInvalidInput, row.RefereeID, row.Date, i+1, err)
		}
		rec.Slots[i] = state
	}
	return rec, nil
}

// toShortfallRows converts engine shortfalls into rows stamped with the run and time
func toShortfallRows(runID string, shortfalls []designation.Shortfall, now time.Time, newID func() string) []db.Shortfall {
	rows := make([]db.Shortfall, 0, len(shortfalls))
	for _, s := range shortfalls {
		rows = append(rows, db.Shortfall{
			ID:         newID(),
			RunID:      runID,
			MatchID:    s.MatchID,
			CategoryID: s.CategoryID,
			MatchDate:  s.Date.Format(designation.DateLayout),
			Slot:       s.Slot,
			Role:       s.Role.String(),
			Reason:     string(s.Reason),
			CreatedAt:  now,
		})
	}
	return rows
}

// parseWindow parses a YYYY-MM-DD date range and checks it is ordered
func parseWindow(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(designation.DateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	end, err := time.Parse(designation.DateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", to, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	return start, end, nil
}
