package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/referee-designation/pkg/clients/sheetsclient"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// ExportSheetCmd creates the exportSheet command
func ExportSheetCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exportSheet <from> <to>",
		Short: "Publish the designation schedule between two dates to Google Sheets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.DesignationSheetID == "" {
				return fmt.Errorf("designationSheetID is not set in the config")
			}

			sheet, err := services.BuildDesignationSheet(app.Ctx, app.Database, app.Cfg, app.Logger, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to build designation sheet: %w", err)
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			tab, err := client.PublishDesignations(app.Ctx, app.Cfg.DesignationSheetID, toDesignationTable(sheet))
			if err != nil {
				return fmt.Errorf("failed to publish designation sheet: %w", err)
			}

			fmt.Printf("\n✓ Published %d match(es) to tab %q\n\n", len(sheet.Rows), tab)
			return nil
		},
	}
}

func toDesignationTable(sheet *services.DesignationSheet) *sheetsclient.DesignationTable {
	table := &sheetsclient.DesignationTable{
		Title:     sheet.Title,
		StartDate: sheet.StartDate,
		EndDate:   sheet.EndDate,
		Rows:      make([]sheetsclient.DesignationRow, 0, len(sheet.Rows)),
	}
	for _, row := range sheet.Rows {
		table.Rows = append(table.Rows, sheetsclient.DesignationRow{
			MatchID:  row.MatchID,
			Date:     row.Date,
			Slot:     row.Slot,
			Venue:    row.Venue,
			Category: row.Category,
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
			RefereeA: row.Roles[designation.RoleRefereeA],
			RefereeB: row.Roles[designation.RoleRefereeB],
			Scorer:   row.Roles[designation.RoleScorer],
		})
	}
	return table
}
