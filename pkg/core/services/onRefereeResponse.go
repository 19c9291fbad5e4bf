package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/core/model"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// ResponseStore defines the database operations needed to process a referee response
type ResponseStore interface {
	runLoader
	GetMatch(ctx context.Context, matchID string) (*db.Match, error)
	GetRejections(ctx context.Context, matchID, role string) ([]db.Rejection, error)
	CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error
	CommitRejection(ctx context.Context, rejection *db.Rejection, replacement *db.Designation, shortfall *db.Shortfall) error
}

// ResponseResult describes what a response changed
type ResponseResult struct {
	MatchID   string
	Role      string
	RefereeID string
	Accepted  bool
	// Status is the role's status after the response
	Status string
	// Ignored is set when the response did not apply to the role's current state,
	// e.g. an acceptance for a cancelled match
	Ignored bool
	Reason  string
	// Duplicate is set when the response repeats one already applied
	Duplicate bool
	// Replacement is the referee designated in place of one who rejected
	Replacement string
	Shortfall   *designation.Shortfall
}

// OnRefereeResponse applies an accept or reject from a referee to their designation.
// Rejections release the role and make one refill attempt that skips every referee
// who has rejected this role before. Responses that conflict with the role's state
// are logged and ignored rather than returned as errors.
func OnRefereeResponse(
	ctx context.Context,
	store ResponseStore,
	logger *zap.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
	resp model.Response,
) (*ResponseResult, error) {
	return processResponse(ctx, store, logger, clock, cfg, resp, false)
}

func processResponse(
	ctx context.Context,
	store ResponseStore,
	logger *zap.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
	resp model.Response,
	implicit bool,
) (*ResponseResult, error) {
	logger = logger.With(
		zap.String("match_id", resp.MatchID),
		zap.String("role", resp.Role),
		zap.String("referee_id", resp.RefereeID),
		zap.Bool("accepted", resp.Accepted))
	logger.Debug("Processing referee response", zap.Bool("implicit", implicit))

	role, err := designation.ParseRole(resp.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", designation.ErrInvalidInput, err)
	}

	matchRow, err := store.GetMatch(ctx, resp.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match: %w", err)
	}
	if matchRow == nil {
		return nil, fmt.Errorf("%w: match %s not found", designation.ErrInvalidInput, resp.MatchID)
	}

	matchDate, err := time.Parse(designation.DateLayout, matchRow.MatchDate)
	if err != nil {
		return nil, fmt.Errorf("%w: match %s has invalid date %q", designation.ErrInvalidInput, matchRow.ID, matchRow.MatchDate)
	}
	window := cfg.WorkloadWindowDays
	loaded, err := loadRun(ctx, store, cfg, logger, matchDate.AddDate(0, 0, -window), matchDate.AddDate(0, 0, window))
	if err != nil {
		return nil, err
	}
	match, ok := loaded.byID[resp.MatchID]
	if !ok {
		return nil, fmt.Errorf("match %s missing from its own date window", resp.MatchID)
	}

	result := &ResponseResult{
		MatchID:   resp.MatchID,
		Role:      role.String(),
		RefereeID: resp.RefereeID,
		Accepted:  resp.Accepted,
	}

	current := match.RoleSlot(role)
	if current.RefereeID != resp.RefereeID {
		if !resp.Accepted {
			rejected, err := hasRejected(ctx, store, match.ID, role, resp.RefereeID)
			if err != nil {
				return nil, err
			}
			if rejected {
				result.Duplicate = true
				result.Status = current.Status.String()
				logger.Info("Duplicate rejection ignored")
				return result, nil
			}
		}
		return ignore(logger, result, match, role,
			fmt.Errorf("%w: referee %s does not hold %s on match %s", designation.ErrLifecycleConflict, resp.RefereeID, role, match.ID))
	}

	if resp.Accepted {
		return applyAcceptance(ctx, store, logger, result, match, role)
	}
	return applyRejection(ctx, store, logger, clock, loaded.rc, result, match, role, implicit)
}

func applyAcceptance(
	ctx context.Context,
	store ResponseStore,
	logger *zap.Logger,
	result *ResponseResult,
	match *designation.Match,
	role designation.Role,
) (*ResponseResult, error) {
	changed, err := designation.Apply(match, role, designation.EventAccept)
	if err != nil {
		return ignore(logger, result, match, role, err)
	}

	status := match.RoleSlot(role).Status
	result.Status = status.String()
	if !changed {
		result.Duplicate = true
		logger.Info("Duplicate acceptance ignored", zap.String("status", result.Status))
		return result, nil
	}

	if err := store.CommitAssignment(ctx, match.ID, role.String(), result.RefereeID, status.String()); err != nil {
		return nil, fmt.Errorf("failed to save acceptance: %w", err)
	}
	logger.Info("Designation accepted")
	return result, nil
}

func applyRejection(
	ctx context.Context,
	store ResponseStore,
	logger *zap.Logger,
	clock clockwork.Clock,
	rc *designation.RunContext,
	result *ResponseResult,
	match *designation.Match,
	role designation.Role,
	implicit bool,
) (*ResponseResult, error) {
	// Earlier rejectors were loaded onto the run context with the rest of the window
	outcome, err := designation.Refill(rc, match, role, result.RefereeID, nil)
	if err != nil {
		return ignore(logger, result, match, role, err)
	}

	now := clock.Now()
	rejection := &db.Rejection{
		ID:         newID(),
		MatchID:    match.ID,
		Role:       role.String(),
		RefereeID:  result.RefereeID,
		RejectedAt: now,
		Implicit:   implicit,
	}

	if outcome.Assignment != nil {
		a := outcome.Assignment
		replacement := &db.Designation{
			MatchID:   a.MatchID,
			Role:      a.Role.String(),
			RefereeID: a.RefereeID,
			Status:    a.Status.String(),
		}
		if err := store.CommitRejection(ctx, rejection, replacement, nil); err != nil {
			return nil, fmt.Errorf("failed to save rejection: %w", err)
		}
		result.Status = a.Status.String()
		result.Replacement = a.RefereeID
		logger.Info("Designation rejected, replacement designated", zap.String("replacement_id", a.RefereeID))
		return result, nil
	}

	shortfall := toShortfallRows("", []designation.Shortfall{*outcome.Shortfall}, now, newID)[0]
	if err := store.CommitRejection(ctx, rejection, nil, &shortfall); err != nil {
		return nil, fmt.Errorf("failed to save rejection: %w", err)
	}
	result.Status = designation.StatusVacant.String()
	result.Shortfall = outcome.Shortfall
	logger.Warn("Designation rejected, no replacement available")
	return result, nil
}

// hasRejected reports whether the referee already rejected this role
func hasRejected(ctx context.Context, store ResponseStore, matchID string, role designation.Role, refereeID string) (bool, error) {
	rejections, err := store.GetRejections(ctx, matchID, role.String())
	if err != nil {
		return false, fmt.Errorf("failed to fetch rejection history: %w", err)
	}
	return slices.ContainsFunc(rejections, func(r db.Rejection) bool { return r.RefereeID == refereeID }), nil
}

// ignore logs a lifecycle conflict and reports it on the result instead of failing
func ignore(logger *zap.Logger, result *ResponseResult, match *designation.Match, role designation.Role, err error) (*ResponseResult, error) {
	if !errors.Is(err, designation.ErrLifecycleConflict) {
		return nil, err
	}
	result.Ignored = true
	result.Reason = err.Error()
	result.Status = match.RoleSlot(role).Status.String()
	logger.Warn("Response ignored", zap.Error(err))
	return result, nil
}
