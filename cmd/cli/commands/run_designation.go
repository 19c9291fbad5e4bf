package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// RunDesignationCmd creates the runDesignation command
func RunDesignationCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runDesignation <from> <to>",
		Short: "Designate referees to the open roles of matches between two dates",
		Long: "Run the designation engine over every match dated from <from> to <to> (YYYY-MM-DD).\n" +
			"New designations are saved as tentative; use publishDesignations to send the offers.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")

			app.Logger.Debug("runDesignation command",
				zap.String("from", args[0]),
				zap.String("to", args[1]),
				zap.Bool("dry_run", dryRun),
				zap.Bool("force_commit", forceCommit))

			result, err := services.RunDesignation(
				app.Ctx,
				app.Database,
				app.Logger,
				app.Clock,
				app.Cfg,
				args[0],
				args[1],
				services.RunOptions{DryRun: dryRun, ForceCommit: forceCommit},
			)
			if err != nil {
				return fmt.Errorf("designation run failed: %w", err)
			}

			fmt.Printf("\n🏀 Designation Run\n\n")
			fmt.Printf("Run ID:  %s\n", result.RunID)
			fmt.Printf("Window:  %s to %s\n", result.WindowStart, result.WindowEnd)
			switch {
			case dryRun:
				fmt.Printf("Mode:    🧪 DRY RUN (not saved)\n")
			case result.Committed && len(result.Violations) > 0:
				fmt.Printf("Status:  ⚠️  FORCED (saved despite validation errors)\n")
			case result.Committed:
				fmt.Printf("Status:  ✅ SUCCESS (saved to database)\n")
			default:
				fmt.Printf("Status:  ❌ FAILED (not saved)\n")
			}
			fmt.Println()

			if len(result.Violations) > 0 {
				fmt.Printf("⚠️  Validation Errors (%d):\n", len(result.Violations))
				for _, v := range result.Violations {
					fmt.Printf("  • %s %s (%s) - %s: %s\n", v.MatchID, v.Role, v.RefereeID, v.Check, v.Description)
				}
				fmt.Println()
			}

			if len(result.Assignments) > 0 {
				fmt.Printf("📋 Designations (%d):\n\n", len(result.Assignments))
				fmt.Printf("%s%-12s  %-4s  %-20s  %-10s  %-12s  %-8s  %s%s\n",
					colorBold, "Date", "Slot", "Venue", "Role", "Referee", "Distance", "Load", colorReset)
				printRule(12, 4, 20, 10, 12, 8, 4)
				for _, a := range result.Assignments {
					venue := ""
					if m, ok := result.Matches[a.MatchID]; ok {
						venue = m.VenueName
					}
					fmt.Printf("%-12s  %-4d  %-20s  %-10s  %-12s  %-8s  %d\n",
						a.Date.Format("2006-01-02"), a.Slot, venue, a.Role, a.RefereeID,
						fmt.Sprintf("%.1f km", a.DistanceKm), result.Workloads[a.RefereeID])
				}
				fmt.Println()
			} else {
				fmt.Printf("No new designations.\n\n")
			}

			if len(result.Shortfalls) > 0 {
				fmt.Printf("%s⚠️  Unfilled roles (%d):%s\n", colorRed, len(result.Shortfalls), colorReset)
				for _, s := range result.Shortfalls {
					fmt.Printf("  • %s slot %d - match %s %s (%s)\n",
						s.Date.Format("2006-01-02"), s.Slot, s.MatchID, s.Role, s.Reason)
				}
				fmt.Println()
			}

			if len(result.Frozen) > 0 {
				fmt.Printf("%s❄️  Skipped on frozen dates (%d):%s\n", colorDim, len(result.Frozen), colorReset)
				for _, f := range result.Frozen {
					fmt.Printf("  • %s match %s - %s\n", f.Date, f.MatchID, f.Reason)
				}
				fmt.Println()
			}

			if len(result.Locked) > 0 {
				fmt.Printf("%s🔒 Inside the %d day lead time (%d):%s\n", colorDim, app.Cfg.MinLeadDays, len(result.Locked), colorReset)
				for _, m := range result.Locked {
					fmt.Printf("  • %s slot %d match %s\n", m.DateKey(), m.Slot, m.ID)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute designations without saving them")
	cmd.Flags().Bool("force-commit", false, "Save designations even if validation fails")

	return cmd
}
