package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// notRequired fills role cells a match's category does not need
const notRequired = "-"

// DesignationSheetStore defines the database operations needed for the sheet export
type DesignationSheetStore interface {
	GetCategories(ctx context.Context) ([]db.Category, error)
	GetReferees(ctx context.Context) ([]db.Referee, error)
	GetMatches(ctx context.Context, from, to time.Time) ([]db.Match, error)
	GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error)
}

// DesignationSheetRow is one live match with a display cell per role
type DesignationSheetRow struct {
	MatchID  string
	Date     string
	Slot     int
	Venue    string
	Category string
	HomeTeam string
	AwayTeam string
	// Roles holds "Name (status)" for held roles, "" for open ones and "-" for
	// roles the category does not need
	Roles map[designation.Role]string
}

// DesignationSheet is the designation schedule of a date window
type DesignationSheet struct {
	Title     string
	StartDate string
	EndDate   string
	Rows      []DesignationSheetRow
}

// BuildDesignationSheet assembles the schedule of every live match in [from, to],
// ordered by date, slot and venue.
func BuildDesignationSheet(
	ctx context.Context,
	store DesignationSheetStore,
	cfg *config.Config,
	logger *zap.Logger,
	from, to string,
) (*DesignationSheet, error) {
	logger.Debug("Building designation sheet", zap.String("from", from), zap.String("to", to))

	start, end, err := parseWindow(from, to)
	if err != nil {
		return nil, err
	}

	categoryRows, err := store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	refereeRows, err := store.GetReferees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referees: %w", err)
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

	categories := make(map[string]designation.Category, len(categoryRows))
	for _, row := range categoryRows {
		categories[row.ID] = toCategory(row)
	}
	names := make(map[string]string, len(refereeRows))
	for _, row := range refereeRows {
		names[row.ID] = row.Name
	}
	rowsByID := make(map[string]db.Match, len(matchRows))
	for _, row := range matchRows {
		rowsByID[row.ID] = row
	}

	sheet := &DesignationSheet{
		Title:     fmt.Sprintf("Designations - %s", cfg.Federation),
		StartDate: from,
		EndDate:   to,
	}

	for _, m := range matches {
		if m.Cancelled {
			continue
		}
		row := rowsByID[m.ID]
		category := categories[m.CategoryID]

		sheetRow := DesignationSheetRow{
			MatchID:  m.ID,
			Date:     m.DateKey(),
			Slot:     m.Slot,
			Venue:    m.VenueName,
			Category: category.Name,
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
			Roles:    make(map[designation.Role]string, len(designation.Roles)),
		}

		required := category.RequiredRoles()
		for _, role := range designation.Roles {
			rs := m.RoleSlot(role)
			switch {
			case rs.Status.Holds():
				name := names[rs.RefereeID]
				if name == "" {
					name = rs.RefereeID
				}
				sheetRow.Roles[role] = fmt.Sprintf("%s (%s)", name, rs.Status)
			case slices.Contains(required, role):
				sheetRow.Roles[role] = ""
			default:
				sheetRow.Roles[role] = notRequired
			}
		}

		sheet.Rows = append(sheet.Rows, sheetRow)
	}

	slices.SortFunc(sheet.Rows, func(a, b DesignationSheetRow) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Slot, b.Slot); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Venue, b.Venue); c != 0 {
			return c
		}
		return cmp.Compare(a.MatchID, b.MatchID)
	})

	logger.Debug("Designation sheet built", zap.Int("rows", len(sheet.Rows)))
	return sheet, nil
}
