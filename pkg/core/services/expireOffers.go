package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/core/model"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// ExpireStore defines the database operations needed for expiring unanswered offers
type ExpireStore interface {
	ResponseStore
	GetDesignationsByStatus(ctx context.Context, status string) ([]db.Designation, error)
}

// FailedExpiry is an overdue offer that could not be expired; its designation is unchanged
type FailedExpiry struct {
	MatchID   string
	Role      string
	RefereeID string
	Error     string
}

// ExpireResult lists the offers treated as rejected
type ExpireResult struct {
	Cutoff  time.Time
	Expired []*ResponseResult
	Failed  []FailedExpiry
}

// ExpireOffers treats every Notified designation older than the configured response
// timeout as a rejection by its referee, releasing and refilling the role.
// A timeout of zero disables expiry. An offer that fails to expire is logged and
// reported in Failed without stopping the others.
func ExpireOffers(
	ctx context.Context,
	store ExpireStore,
	logger *zap.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
) (*ExpireResult, error) {
	if cfg.ResponseTimeoutHours == 0 {
		logger.Info("Response timeout disabled - no offers expired")
		return &ExpireResult{}, nil
	}

	cutoff := clock.Now().Add(-time.Duration(cfg.ResponseTimeoutHours) * time.Hour)
	logger.Info("Expiring unanswered offers", zap.Time("cutoff", cutoff))

	notified, err := store.GetDesignationsByStatus(ctx, designation.StatusNotified.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notified designations: %w", err)
	}

	result := &ExpireResult{Cutoff: cutoff}
	for _, des := range notified {
		if !des.UpdatedAt.Before(cutoff) {
			continue
		}

		outcome, err := processResponse(ctx, store, logger, clock, cfg, model.Response{
			MatchID:   des.MatchID,
			Role:      des.Role,
			RefereeID: des.RefereeID,
			Accepted:  false,
		}, true)
		if err != nil {
			logger.Warn("Failed to expire offer",
				zap.String("match_id", des.MatchID),
				zap.String("role", des.Role),
				zap.String("referee_id", des.RefereeID),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedExpiry{
				MatchID:   des.MatchID,
				Role:      des.Role,
				RefereeID: des.RefereeID,
				Error:     err.Error(),
			})
			continue
		}
		result.Expired = append(result.Expired, outcome)
	}

	logger.Info("Offers expired",
		zap.Int("count", len(result.Expired)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}
