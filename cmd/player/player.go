package player

import (
	"context"
	"os"

	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
)

func PlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Moderate a single player",
		Long:  "Warn, kick, ban, unban or clear the warnings of a player by numeric user id",
	}

	cmd.AddCommand(WarnCmd())
	cmd.AddCommand(KickCmd())
	cmd.AddCommand(BanCmd())
	cmd.AddCommand(UnbanCmd())
	cmd.AddCommand(ClearWarningsCmd())

	return cmd
}

type ReasonCmdOpts struct {
	Reason string
}

type BanCmdOpts struct {
	Reason  string
	Minutes string
}

func WarnCmd() *cobra.Command {
	opts := ReasonCmdOpts{}

	cmd := &cobra.Command{
		Use:   "warn <userId>",
		Short: "Warn a player",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, func(ctx context.Context, ctrl *session.Controller) error {
				return ctrl.Warn(ctx, args[0], opts.Reason)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Reason, "reason", "r", "", "Reason shown to the player")

	return cmd
}

func KickCmd() *cobra.Command {
	opts := ReasonCmdOpts{}

	cmd := &cobra.Command{
		Use:   "kick <userId>",
		Short: "Kick a player",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, func(ctx context.Context, ctrl *session.Controller) error {
				return ctrl.Kick(ctx, args[0], opts.Reason)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Reason, "reason", "r", "", "Reason shown to the player")

	return cmd
}

func BanCmd() *cobra.Command {
	opts := BanCmdOpts{}

	cmd := &cobra.Command{
		Use:   "ban <userId>",
		Short: "Ban a player",
		Long:  "Ban a player for --minutes minutes. Without --minutes, or with 0, the ban is permanent.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, func(ctx context.Context, ctrl *session.Controller) error {
				return ctrl.Ban(ctx, args[0], opts.Reason, opts.Minutes)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Reason, "reason", "r", "", "Reason shown to the player")
	cmd.Flags().StringVarP(&opts.Minutes, "minutes", "m", "", "Ban length in minutes (0 = permanent)")

	return cmd
}

func UnbanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unban <userId>",
		Short: "Lift a player's ban",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, func(ctx context.Context, ctrl *session.Controller) error {
				return ctrl.Unban(ctx, args[0])
			})
		},
	}
}

func ClearWarningsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clearwarns <userId>",
		Aliases: []string{"clear-warnings"},
		Short:   "Clear a player's warnings",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, func(ctx context.Context, ctrl *session.Controller) error {
				return ctrl.ClearWarnings(ctx, args[0])
			})
		},
	}
}

// run executes one player action; the listener prints progress and outcome.
func run(cmd *cobra.Command, action func(context.Context, *session.Controller) error) {
	ctx := cmd.Context()
	ctrl := session.FromContext(ctx)

	ctrl.SetListener(&utils.ConsoleListener{
		Areas: []session.Area{session.AreaPlayer},
	})

	if err := action(ctx, ctrl); err != nil {
		os.Exit(1)
	}
}
