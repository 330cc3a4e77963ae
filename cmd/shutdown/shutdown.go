package shutdown

import (
	"os"

	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
)

type ShutdownCmdOpts struct {
	KickExisting bool
}

func ShutdownCmd() *cobra.Command {
	opts := ShutdownCmdOpts{}

	cmd := &cobra.Command{
		Use:       "shutdown on|off",
		Short:     "Turn shutdown mode on or off",
		Long:      "Shutdown mode blocks new joins. With --kick-existing, players already connected are removed too.",
		ValidArgs: []string{"on", "off"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			if err := shutdownMain(cmd, args[0] == "on", &opts); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&opts.KickExisting, "kick-existing", false, "Also kick players who are already connected")

	return cmd
}

func shutdownMain(cmd *cobra.Command, enabled bool, opts *ShutdownCmdOpts) error {
	ctx := cmd.Context()
	ctrl := session.FromContext(ctx)

	ctrl.SetListener(&utils.ConsoleListener{
		Areas: []session.Area{session.AreaShutdown, session.AreaHint},
	})

	return ctrl.SetShutdown(ctx, enabled, opts.KickExisting)
}
