package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// CancelStore defines the database operations needed for cancelling a match
type CancelStore interface {
	GetMatch(ctx context.Context, matchID string) (*db.Match, error)
	GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error)
	CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error
	SetMatchCancelled(ctx context.Context, matchID string) error
}

// CancelResult contains the outcome of cancelling a match
type CancelResult struct {
	MatchID string
	// Released are the roles whose referees were freed
	Released []AwaitingRole
	// Conflicts are Confirmed roles that keep their referee
	Conflicts []string
}

// CancelMatch calls a match off and cancels every role that is not yet Confirmed.
// Confirmed roles are reported so the operator can contact the referee directly.
func CancelMatch(ctx context.Context, store CancelStore, logger *zap.Logger, matchID string) (*CancelResult, error) {
	logger = logger.With(zap.String("match_id", matchID))
	logger.Info("Cancelling match")

	row, err := store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: match %s not found", designation.ErrInvalidInput, matchID)
	}

	match, err := toMatch(*row)
	if err != nil {
		return nil, err
	}
	designationRows, err := store.GetDesignations(ctx, match.Date, match.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch designations: %w", err)
	}
	matches, err := buildMatches([]db.Match{*row}, designationRows)
	if err != nil {
		return nil, err
	}
	match = matches[0]

	holders := make(map[designation.Role]string, len(designation.Roles))
	for _, role := range designation.Roles {
		holders[role] = match.RoleSlot(role).RefereeID
	}

	cancelled, conflicts := designation.CancelMatch(nil, match)

	result := &CancelResult{MatchID: matchID}
	for _, role := range cancelled {
		if err := store.CommitAssignment(ctx, matchID, role.String(), holders[role], designation.StatusCancelled.String()); err != nil {
			return nil, fmt.Errorf("failed to cancel designation: %w", err)
		}
		result.Released = append(result.Released, AwaitingRole{
			MatchID:   matchID,
			Role:      role.String(),
			RefereeID: holders[role],
			Status:    designation.StatusCancelled.String(),
		})
	}
	for _, c := range conflicts {
		logger.Warn("Confirmed designation kept on cancelled match", zap.Error(c))
		result.Conflicts = append(result.Conflicts, c.Error())
	}

	if err := store.SetMatchCancelled(ctx, matchID); err != nil {
		return nil, fmt.Errorf("failed to cancel match: %w", err)
	}

	logger.Info("Match cancelled",
		zap.Int("released", len(result.Released)),
		zap.Int("conflicts", len(result.Conflicts)))

	return result, nil
}
