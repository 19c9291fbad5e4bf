package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// CancelMatchCmd creates the cancelMatch command
func CancelMatchCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelMatch <match_id>",
		Short: "Cancel a match and release its referees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CancelMatch(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("cancellation failed: %w", err)
			}

			fmt.Printf("\n✓ Match %s cancelled\n", result.MatchID)
			for _, r := range result.Released {
				fmt.Printf("  • %s released from %s\n", r.RefereeID, r.Role)
			}

			if len(result.Conflicts) > 0 {
				fmt.Printf("\n⚠️  Confirmed designations kept - contact these referees directly:\n")
				for _, c := range result.Conflicts {
					fmt.Printf("  • %s\n", c)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
