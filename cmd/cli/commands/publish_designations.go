package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// PublishDesignationsCmd creates the publishDesignations command
func PublishDesignationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishDesignations <from> <to>",
		Short: "Send offers for every tentative designation between two dates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("publishDesignations command",
				zap.String("from", args[0]),
				zap.String("to", args[1]),
				zap.String("channel", app.Cfg.NotificationChannel))

			dispatcher, err := app.OfferDispatcher()
			if err != nil {
				return err
			}

			result, err := services.PublishDesignations(app.Ctx, app.Database, dispatcher, app.Cfg, app.Logger, args[0], args[1])
			if err != nil {
				return fmt.Errorf("publishing failed: %w", err)
			}

			fmt.Printf("\n✓ Sent %d offer(s) via %s\n", len(result.Sent), app.Cfg.NotificationChannel)
			for _, offer := range result.Sent {
				fmt.Printf("  • %s slot %d %s - %s to %s\n", offer.Date, offer.Slot, offer.MatchID, offer.RoleLabel, offer.RefereeName)
			}

			if len(result.Failed) > 0 {
				fmt.Printf("\n⚠️  Failed to send %d offer(s) (left tentative):\n", len(result.Failed))
				for _, failed := range result.Failed {
					fmt.Printf("  • %s %s to %s: %s\n", failed.Offer.MatchID, failed.Offer.Role, failed.Offer.RefereeName, failed.Error)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
