package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// ExpireOffersCmd creates the expireOffers command
func ExpireOffersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expireOffers",
		Short: "Treat offers unanswered past the response timeout as rejections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ExpireOffers(app.Ctx, app.Database, app.Logger, app.Clock, app.Cfg)
			if err != nil {
				return fmt.Errorf("expiring offers failed: %w", err)
			}

			if app.Cfg.ResponseTimeoutHours == 0 {
				fmt.Printf("\n⚠️  responseTimeoutHours is 0 - offers never expire\n\n")
				return nil
			}

			fmt.Printf("\n✓ Expired %d offer(s) sent before %s\n", len(result.Expired), result.Cutoff.Format("2006-01-02 15:04"))
			for _, r := range result.Expired {
				printResponseResult(r)
			}
			if len(result.Expired) == 0 {
				fmt.Println()
			}
			if len(result.Failed) > 0 {
				fmt.Printf("⚠️  Failed to expire %d offer(s) (left notified):\n", len(result.Failed))
				for _, failed := range result.Failed {
					fmt.Printf("  • %s %s (%s): %s\n", failed.MatchID, failed.Role, failed.RefereeID, failed.Error)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
