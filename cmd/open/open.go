package open

import (
	"os"

	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/logger"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

func OpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the web panel in a browser",
		Long:  "Open web_panel_url (or the API base URL when unset) in the default browser",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := openMain(cmd); err != nil {
				os.Exit(1)
			}
		},
	}

	return cmd
}

func openMain(cmd *cobra.Command) error {
	cfg := config.ConfigFromContext(cmd.Context())
	target := cfg.PanelURL()

	if err := browser.OpenURL(target); err != nil {
		// Don't fail if browser can't be opened, just warn
		logger.Warning("Failed to open browser automatically")
		logger.Info("Please manually visit: %s", target)
		return nil
	}

	logger.Success("Opened %s", target)
	return nil
}
