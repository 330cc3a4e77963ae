package announce

import (
	"os"
	"strings"

	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
)

type AnnounceCmdOpts struct {
	Duration string
}

func AnnounceCmd() *cobra.Command {
	opts := AnnounceCmdOpts{}

	cmd := &cobra.Command{
		Use:   "announce <message>",
		Short: "Broadcast an announcement to every server",
		Long:  "Show a message to all players for --duration seconds (8 by default)",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := announceMain(cmd, strings.Join(args, " "), &opts); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Duration, "duration", "d", "", "Seconds the announcement stays on screen")

	return cmd
}

func announceMain(cmd *cobra.Command, message string, opts *AnnounceCmdOpts) error {
	ctx := cmd.Context()
	ctrl := session.FromContext(ctx)

	ctrl.SetListener(&utils.ConsoleListener{
		Areas: []session.Area{session.AreaAnnounce},
	})

	return ctrl.Announce(ctx, message, opts.Duration)
}
