package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// ConfirmDesignationsCmd creates the confirmDesignations command
func ConfirmDesignationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirmDesignations <from> <to>",
		Short: "Close the designation window, confirming every accepted designation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ConfirmDesignations(app.Ctx, app.Database, app.Logger, args[0], args[1])
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}

			fmt.Printf("\n✓ Confirmed %d designation(s)\n", len(result.Confirmed))
			for _, c := range result.Confirmed {
				fmt.Printf("  • %s %s - %s\n", c.MatchID, c.Role, c.RefereeID)
			}

			if len(result.Awaiting) > 0 {
				fmt.Printf("\n⚠️  Still awaiting an answer (%d):\n", len(result.Awaiting))
				for _, a := range result.Awaiting {
					fmt.Printf("  • %s %s - %s (%s)\n", a.MatchID, a.Role, a.RefereeID, colored(statusColor(a.Status), a.Status))
				}
			}
			fmt.Println()

			return nil
		},
	}
}
