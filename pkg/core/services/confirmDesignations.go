package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// ConfirmStore defines the database operations needed for confirming designations
type ConfirmStore interface {
	GetMatches(ctx context.Context, from, to time.Time) ([]db.Match, error)
	GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error)
	CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error
}

// AwaitingRole is a designation that has not been accepted yet
type AwaitingRole struct {
	MatchID   string
	Role      string
	RefereeID string
	Status    string
}

// ConfirmResult contains the outcome of closing a designation window
type ConfirmResult struct {
	Confirmed []AwaitingRole
	// Awaiting are Tentative or Notified roles left as they are
	Awaiting []AwaitingRole
}

// ConfirmDesignations closes the designation window for [from, to]: every Accepted
// role on a live match becomes Confirmed. Confirmed roles are final.
func ConfirmDesignations(ctx context.Context, store ConfirmStore, logger *zap.Logger, from, to string) (*ConfirmResult, error) {
	logger.Info("Confirming designations", zap.String("from", from), zap.String("to", to))

	start, end, err := parseWindow(from, to)
	if err != nil {
		return nil, err
	}

	matchRows, err := store.GetMatches(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	designationRows, err := store.GetDesignations(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch designations: %w", err)
	}

	matches, err := buildMatches(matchRows, designationRows)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{}
	for _, m := range matches {
		if m.Cancelled {
			continue
		}
		for _, role := range designation.Roles {
			rs := m.RoleSlot(role)
			entry := AwaitingRole{MatchID: m.ID, Role: role.String(), RefereeID: rs.RefereeID, Status: rs.Status.String()}

			switch rs.Status {
			case designation.StatusAccepted:
				if _, err := designation.Apply(m, role, designation.EventConfirm); err != nil {
					return result, err
				}
				if err := store.CommitAssignment(ctx, m.ID, role.String(), rs.RefereeID, designation.StatusConfirmed.String()); err != nil {
					return result, fmt.Errorf("failed to confirm designation: %w", err)
				}
				entry.Status = designation.StatusConfirmed.String()
				result.Confirmed = append(result.Confirmed, entry)
			case designation.StatusTentative, designation.StatusNotified:
				result.Awaiting = append(result.Awaiting, entry)
			}
		}
	}

	logger.Info("Designations confirmed",
		zap.Int("confirmed", len(result.Confirmed)),
		zap.Int("awaiting", len(result.Awaiting)))

	return result, nil
}
