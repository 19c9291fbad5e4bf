package sheetsclient

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// headerRow is the zero-based row holding the column headers, below a title and a gap
const headerRow = 2

// designationColumns are the columns the export owns; any other column is kept as is
var designationColumns = []string{
	"Match", "Date", "Slot", "Venue", "Category", "Home", "Away", "Referee A", "Referee B", "Scorer",
}

// DesignationRow is one match in the exported designation table
type DesignationRow struct {
	MatchID  string
	Date     string // Format: "2006-01-02"
	Slot     int
	Venue    string
	Category string
	HomeTeam string
	AwayTeam string
	// Role cells hold "Name (status)" or are empty when the role is vacant
	RefereeA string
	RefereeB string
	Scorer   string
}

// DesignationTable is the exported designation schedule for a date window
type DesignationTable struct {
	Title     string
	StartDate string // Format: "2006-01-02"
	EndDate   string // Format: "2006-01-02"
	Rows      []DesignationRow
}

// PublishDesignations writes the table to a tab named after its date window.
// A missing tab is created; an existing tab is rewritten with the managed columns
// refreshed and any extra columns (e.g. notes) kept on the row of the same match.
func (c *Client) PublishDesignations(ctx context.Context, spreadsheetID string, table *DesignationTable) (string, error) {
	tabTitle, err := generateTabTitle(table.StartDate, table.EndDate)
	if err != nil {
		return "", fmt.Errorf("failed to generate tab title: %w", err)
	}

	exists, err := c.hasSheet(ctx, spreadsheetID, tabTitle)
	if err != nil {
		return "", err
	}

	var existing [][]interface{}
	if exists {
		existing, err = c.GetValues(ctx, spreadsheetID, fmt.Sprintf("%s!A1:ZZ", tabTitle))
		if err != nil {
			return "", fmt.Errorf("failed to read existing tab data: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(ctx, spreadsheetID, tabTitle); err != nil {
			return "", fmt.Errorf("failed to create tab: %w", err)
		}
	}

	values, err := buildSheetValues(existing, table)
	if err != nil {
		return "", err
	}

	if err := c.writeValues(ctx, spreadsheetID, tabTitle, values); err != nil {
		return "", fmt.Errorf("failed to write designations: %w", err)
	}
	return tabTitle, nil
}

// generateTabTitle creates a tab title in the format "Sat Mar 15 2025 - Sun Mar 16 2025"
func generateTabTitle(startDate, endDate string) (string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return "", fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return "", fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}

	return fmt.Sprintf("%s - %s",
		start.Format("Mon Jan 02 2006"),
		end.Format("Mon Jan 02 2006"),
	), nil
}

// buildSheetValues lays out the title, gap, header and rows of a tab.
// Existing is the tab's current content, or nil for a new tab.
func buildSheetValues(existing [][]interface{}, table *DesignationTable) ([][]interface{}, error) {
	header := make([]interface{}, 0, len(designationColumns))
	for _, col := range designationColumns {
		header = append(header, col)
	}

	// extras maps a preserved column's position in the new header to its old position
	extras := map[int]int{}
	keptByMatch := map[string][]interface{}{}

	if len(existing) > headerRow {
		oldHeader := existing[headerRow]
		matchCol := findColumnIndex(oldHeader, "Match")
		if matchCol == -1 {
			return nil, fmt.Errorf("existing tab missing required column (Match)")
		}

		for i, cell := range oldHeader {
			name, ok := cell.(string)
			if !ok || name == "" || slices.Contains(designationColumns, name) {
				continue
			}
			extras[len(header)] = i
			header = append(header, name)
		}

		for _, row := range existing[headerRow+1:] {
			if matchCol < len(row) {
				if id, ok := row[matchCol].(string); ok && id != "" {
					keptByMatch[id] = row
				}
			}
		}
	}

	values := [][]interface{}{
		{table.Title},
		{},
		header,
	}

	for _, row := range table.Rows {
		sheetRow := make([]interface{}, len(header))
		copy(sheetRow, []interface{}{
			row.MatchID, row.Date, row.Slot, row.Venue, row.Category,
			row.HomeTeam, row.AwayTeam, row.RefereeA, row.RefereeB, row.Scorer,
		})

		old := keptByMatch[row.MatchID]
		for newCol, oldCol := range extras {
			if oldCol < len(old) {
				sheetRow[newCol] = old[oldCol]
			} else {
				sheetRow[newCol] = ""
			}
		}

		values = append(values, sheetRow)
	}

	return values, nil
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, cell := range header {
		if str, ok := cell.(string); ok && str == columnName {
			return i
		}
	}
	return -1
}
