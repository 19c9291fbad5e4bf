package db

import (
	"context"
	"time"
)

// CatalogStore reads the reference data a designation run needs
type CatalogStore interface {
	GetCategories(ctx context.Context) ([]Category, error)
	GetReferees(ctx context.Context) ([]Referee, error)
}

// MatchStore reads and updates scheduled matches
type MatchStore interface {
	GetMatches(ctx context.Context, from, to time.Time) ([]Match, error)
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	SetMatchCancelled(ctx context.Context, matchID string) error
}

// AvailabilityStore reads referee slot declarations
type AvailabilityStore interface {
	GetAvailability(ctx context.Context, from, to time.Time) ([]Availability, error)
}

// DesignationStore reads and writes assignment state.
// CommitAssignment and ReleaseAssignment are the only mutations of a role's holder.
type DesignationStore interface {
	GetDesignations(ctx context.Context, from, to time.Time) ([]Designation, error)
	GetDesignationsByStatus(ctx context.Context, status string) ([]Designation, error)
	CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error
	ReleaseAssignment(ctx context.Context, matchID, role string) error
}

// RejectionStore keeps the history of rejected offers.
// CommitRejection records a rejection together with its outcome atomically: the
// replacement designation when one was found, otherwise the released role and its
// shortfall.
type RejectionStore interface {
	GetRejections(ctx context.Context, matchID, role string) ([]Rejection, error)
	GetRejectionsBetween(ctx context.Context, from, to time.Time) ([]Rejection, error)
	CommitRejection(ctx context.Context, rejection *Rejection, replacement *Designation, shortfall *Shortfall) error
}

// RunStore persists designation runs and their shortfalls
type RunStore interface {
	CommitRun(ctx context.Context, run *Run, designations []Designation, shortfalls []Shortfall) error
	GetRuns(ctx context.Context) ([]Run, error)
	GetShortfalls(ctx context.Context, runID string) ([]Shortfall, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	CatalogStore
	MatchStore
	AvailabilityStore
	DesignationStore
	RejectionStore
	RunStore
}
