package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/db"
)

// ShortfallStore defines the database operations needed for viewing shortfalls
type ShortfallStore interface {
	GetRuns(ctx context.Context) ([]db.Run, error)
	GetShortfalls(ctx context.Context, runID string) ([]db.Shortfall, error)
}

// ShortfallReport lists the roles a run left unfilled
type ShortfallReport struct {
	Run        db.Run
	Shortfalls []db.Shortfall
	// Refills are shortfalls raised after the run by rejections with no replacement
	Refills []db.Shortfall
}

// ViewShortfalls returns the shortfalls of a run, or of the latest run if runID is empty
func ViewShortfalls(ctx context.Context, store ShortfallStore, logger *zap.Logger, runID string) (*ShortfallReport, error) {
	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no designation runs found")
	}

	run := findLatestRun(runs)
	if runID != "" {
		found := false
		for _, r := range runs {
			if r.ID == runID {
				run, found = r, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("run %s not found", runID)
		}
	}
	logger.Debug("Viewing shortfalls", zap.String("run_id", run.ID))

	shortfalls, err := store.GetShortfalls(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shortfalls: %w", err)
	}
	refills, err := store.GetShortfalls(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch refill shortfalls: %w", err)
	}

	return &ShortfallReport{Run: run, Shortfalls: shortfalls, Refills: refills}, nil
}

// findLatestRun returns the run that started last
func findLatestRun(runs []db.Run) db.Run {
	latest := runs[0]
	for _, r := range runs[1:] {
		if r.StartedAt.After(latest.StartedAt) {
			latest = r
		}
	}
	return latest
}
