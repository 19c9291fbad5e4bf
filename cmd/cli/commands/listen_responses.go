package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/pkg/core/model"
	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// ListenResponsesCmd creates the listenResponses command
func ListenResponsesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listenResponses",
		Short: "Apply referee responses arriving over NATS until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NATSClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return client.ListenResponses(ctx, func(ctx context.Context, resp model.Response) error {
				result, err := services.OnRefereeResponse(ctx, app.Database, app.Logger, app.Clock, app.Cfg, resp)
				if err != nil {
					return err
				}
				app.Logger.Info("Response applied",
					zap.String("match_id", result.MatchID),
					zap.String("role", result.Role),
					zap.String("status", result.Status),
					zap.Bool("ignored", result.Ignored),
					zap.String("replacement_id", result.Replacement))
				return nil
			})
		},
	}
}
