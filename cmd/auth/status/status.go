package status

import (
	"os"

	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
)

type StatusCmdOpts struct {
	Output string
}

// StatusCmd is "auth status".
func StatusCmd() *cobra.Command {
	return newCmd("status", "Check authentication status")
}

// WhoAmICmd is the top-level shorthand for "auth status".
func WhoAmICmd() *cobra.Command {
	return newCmd("whoami", "Show the identity of the current session")
}

func newCmd(use, short string) *cobra.Command {
	opts := StatusCmdOpts{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  "Ask the moderation service who the stored credential belongs to",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := statusMain(cmd, &opts); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", utils.OutputJSON, "Output format: json or yaml")

	return cmd
}

func statusMain(cmd *cobra.Command, opts *StatusCmdOpts) error {
	ctx := cmd.Context()
	cfg := config.ConfigFromContext(ctx)
	ctrl := session.FromContext(ctx)

	// Output is printed below, not through the listener
	ctrl.SetListener(&utils.ConsoleListener{Areas: []session.Area{}})

	me, err := ctrl.WhoAmI(ctx)
	if err != nil {
		if api.IsAuthRejection(err) {
			logger.Info("Status: Logged out")
			logger.Info("Your session has expired or is invalid")
			logger.Info("Run 'modpanel login' to authenticate again")
			return err
		}
		logger.Error("Failed to reach %s: %v", cfg.APIBaseURL, err)
		return err
	}

	logger.Success("Status: Logged in")
	logger.Info("@ %s", cfg.APIBaseURL)

	if me == nil {
		return nil
	}
	return utils.PrintData(cmd.OutOrStdout(), opts.Output, me)
}
