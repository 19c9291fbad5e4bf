package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// RunDesignationStore defines the database operations needed for a designation run
type RunDesignationStore interface {
	runLoader
	CommitRun(ctx context.Context, run *db.Run, designations []db.Designation, shortfalls []db.Shortfall) error
}

// RunOptions controls whether and how a run is saved
type RunOptions struct {
	// DryRun computes the designations without saving anything
	DryRun bool
	// ForceCommit saves the run even when post-run validation found violations
	ForceCommit bool
}

// FrozenMatch is a match skipped because its date falls on a designation freeze
type FrozenMatch struct {
	MatchID string
	Date    string
	Reason  string
}

// RunDesignationResult contains the outcome of a designation run
type RunDesignationResult struct {
	RunID       string
	WindowStart string
	WindowEnd   string
	Committed   bool
	Assignments []designation.Assignment
	Shortfalls  []designation.Shortfall
	// Locked are matches inside the window but too close to today to change
	Locked     []*designation.Match
	Frozen     []FrozenMatch
	Violations []designation.Violation
	// Workloads is each referee's designation count in the window after the run
	Workloads map[string]int
	// Matches gives access to venue and category data for display
	Matches map[string]*designation.Match
}

// RunDesignation fills every open required role of the matches dated in [from, to].
// All reads happen up front; the designation pass itself is pure in-memory work.
// The run, its new Tentative designations and its shortfalls are saved in one
// transaction unless dryRun is set or validation fails without ForceCommit.
func RunDesignation(
	ctx context.Context,
	store RunDesignationStore,
	logger *zap.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
	from, to string,
	opts RunOptions,
) (*RunDesignationResult, error) {
	logger.Info("Starting designation run",
		zap.String("from", from),
		zap.String("to", to),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force_commit", opts.ForceCommit))

	start, end, err := parseWindow(from, to)
	if err != nil {
		return nil, err
	}

	loaded, err := loadRun(ctx, store, cfg, logger, start, end)
	if err != nil {
		return nil, err
	}

	now := clock.Now()
	pending, locked := designation.SelectPending(loaded.matches, start, end, now, cfg.MinLeadDays)
	logger.Debug("Selected matches",
		zap.Int("pending", len(pending)),
		zap.Int("locked", len(locked)))

	frozen, err := frozenDates(cfg.DesignationFreezes, start, end)
	if err != nil {
		return nil, err
	}

	var frozenMatches []FrozenMatch
	open := make([]*designation.Match, 0, len(pending))
	for _, m := range pending {
		if reason, ok := frozen[m.DateKey()]; ok {
			frozenMatches = append(frozenMatches, FrozenMatch{MatchID: m.ID, Date: m.DateKey(), Reason: reason})
			continue
		}
		open = append(open, m)
	}
	if len(frozenMatches) > 0 {
		logger.Info("Skipping matches on frozen dates", zap.Int("count", len(frozenMatches)))
	}

	runResult, err := designation.Designate(loaded.rc, open)
	if err != nil {
		return nil, fmt.Errorf("designation run failed: %w", err)
	}
	logger.Debug("Designation pass finished",
		zap.Int("assigned", len(runResult.Assignments)),
		zap.Int("booked_slots", loaded.rc.Guard.Len()))

	violations := designation.ValidateRun(loaded.rc, loaded.matches, runResult)
	for _, v := range violations {
		logger.Warn("Designation violates a constraint",
			zap.String("match_id", v.MatchID),
			zap.String("role", v.Role.String()),
			zap.String("referee_id", v.RefereeID),
			zap.String("check", v.Check),
			zap.String("description", v.Description))
	}

	for _, s := range runResult.Shortfalls {
		logger.Info("Role left unfilled",
			zap.String("match_id", s.MatchID),
			zap.String("role", s.Role.String()),
			zap.String("reason", string(s.Reason)))
	}

	result := &RunDesignationResult{
		RunID:       uuid.New().String(),
		WindowStart: from,
		WindowEnd:   to,
		Assignments: runResult.Assignments,
		Shortfalls:  runResult.Shortfalls,
		Locked:      locked,
		Frozen:      frozenMatches,
		Violations:  violations,
		Workloads:   loaded.rc.Workloads(),
		Matches:     loaded.byID,
	}

	shouldSave := !opts.DryRun && (len(violations) == 0 || opts.ForceCommit)
	if !shouldSave {
		if opts.DryRun {
			logger.Info("Dry run - designations not saved")
		} else {
			logger.Warn("Validation failed - not saving designations (use force-commit to save anyway)")
		}
		return result, nil
	}

	run := &db.Run{
		ID:          result.RunID,
		WindowStart: from,
		WindowEnd:   to,
		StartedAt:   now,
		Assigned:    len(runResult.Assignments),
		Shortfalls:  len(runResult.Shortfalls),
		Violations:  len(violations),
		Forced:      len(violations) > 0,
	}

	if err := store.CommitRun(ctx, run, toDesignationRows(runResult.Assignments), toShortfallRows(run.ID, runResult.Shortfalls, now, newID)); err != nil {
		return nil, fmt.Errorf("failed to save designation run: %w", err)
	}
	result.Committed = true

	logger.Info("Designation run saved",
		zap.String("run_id", run.ID),
		zap.Int("assigned", run.Assigned),
		zap.Int("shortfalls", run.Shortfalls),
		zap.Bool("forced", run.Forced))

	return result, nil
}

func toDesignationRows(assignments []designation.Assignment) []db.Designation {
	rows := make([]db.Designation, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, db.Designation{
			MatchID:   a.MatchID,
			Role:      a.Role.String(),
			RefereeID: a.RefereeID,
			Status:    a.Status.String(),
		})
	}
	return rows
}

func newID() string {
	return uuid.New().String()
}
