package state

import (
	"os"

	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
)

type RawCmdOpts struct {
	Output string
}

func RawCmd() *cobra.Command {
	opts := RawCmdOpts{}

	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Print the /state response as-is",
		Long:  "Fetch /state without the legacy fallback and print the body unmodified",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := rawMain(cmd, &opts); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", utils.OutputJSON, "Output format: json or yaml")

	return cmd
}

func rawMain(cmd *cobra.Command, opts *RawCmdOpts) error {
	ctx := cmd.Context()
	ctrl := session.FromContext(ctx)
	ctrl.SetListener(&utils.ConsoleListener{Areas: []session.Area{}})

	data, err := ctrl.InspectState(ctx)
	if err != nil {
		// Same shape the panel shows on failure
		_ = utils.PrintData(cmd.OutOrStdout(), opts.Output, map[string]any{"error": err.Error()})
		return err
	}

	return utils.PrintData(cmd.OutOrStdout(), opts.Output, data)
}
