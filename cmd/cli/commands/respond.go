package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/referee-designation/pkg/core/model"
	"github.com/jakechorley/referee-designation/pkg/core/services"
)

// RespondCmd creates the respond command, which records a referee's answer by hand
func RespondCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "respond <match_id> <role> <referee_id> <accept|reject>",
		Short: "Record a referee accepting or rejecting a designation",
		Long: "Record a referee's answer to an offer. Roles are referee_a, referee_b and scorer.\n" +
			"A rejection releases the role and designates a replacement if one qualifies.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			accepted, err := parseDecision(args[3])
			if err != nil {
				return err
			}

			result, err := services.OnRefereeResponse(app.Ctx, app.Database, app.Logger, app.Clock, app.Cfg, model.Response{
				MatchID:   args[0],
				Role:      args[1],
				RefereeID: args[2],
				Accepted:  accepted,
			})
			if err != nil {
				return err
			}

			printResponseResult(result)
			return nil
		},
	}
}

func printResponseResult(result *services.ResponseResult) {
	fmt.Println()
	switch {
	case result.Ignored:
		fmt.Printf("⚠️  Response ignored: %s\n", result.Reason)
	case result.Duplicate:
		fmt.Printf("✓ Already recorded (%s)\n", colored(statusColor(result.Status), result.Status))
	case result.Accepted:
		fmt.Printf("✓ %s accepted %s on match %s\n", result.RefereeID, result.Role, result.MatchID)
	case result.Replacement != "":
		fmt.Printf("✓ %s rejected %s on match %s\n", result.RefereeID, result.Role, result.MatchID)
		fmt.Printf("  Replacement: %s (%s)\n", result.Replacement, colored(statusColor(result.Status), result.Status))
	default:
		fmt.Printf("✓ %s rejected %s on match %s\n", result.RefereeID, result.Role, result.MatchID)
		fmt.Printf("  %s⚠️  No replacement available - role is vacant%s\n", colorRed, colorReset)
	}
	fmt.Println()
}
