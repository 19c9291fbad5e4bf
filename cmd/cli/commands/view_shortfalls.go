package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/referee-designation/pkg/core/services"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// ViewShortfallsCmd creates the viewShortfalls command
func ViewShortfallsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewShortfalls [run_id]",
		Short: "List the roles a run left unfilled (defaults to the latest run)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}

			report, err := services.ViewShortfalls(app.Ctx, app.Database, app.Logger, runID)
			if err != nil {
				return err
			}

			run := report.Run
			fmt.Printf("\nRun %s (%s to %s, started %s)\n", run.ID, run.WindowStart, run.WindowEnd, run.StartedAt.Format("2006-01-02 15:04"))
			fmt.Printf("Assigned: %d  Shortfalls: %d  Violations: %d", run.Assigned, run.Shortfalls, run.Violations)
			if run.Forced {
				fmt.Printf("  ⚠️  FORCED")
			}
			fmt.Printf("\n\n")

			printShortfalls("Unfilled by the run", report.Shortfalls)
			printShortfalls("Left vacant after rejections", report.Refills)

			return nil
		},
	}
}

func printShortfalls(title string, shortfalls []db.Shortfall) {
	if len(shortfalls) == 0 {
		fmt.Printf("✓ %s: none\n\n", title)
		return
	}

	fmt.Printf("%s%s (%d):%s\n\n", colorBold, title, len(shortfalls), colorReset)
	fmt.Printf("%-12s  %-4s  %-14s  %-10s  %-10s  %s\n", "Date", "Slot", "Match", "Category", "Role", "Reason")
	printRule(12, 4, 14, 10, 10, 22)
	for _, s := range shortfalls {
		fmt.Printf("%-12s  %-4d  %-14s  %-10s  %s  %s\n",
			s.MatchDate, s.Slot, s.MatchID, s.CategoryID, colored(colorRed, fmt.Sprintf("%-10s", s.Role)), s.Reason)
	}
	fmt.Println()
}
