package panel

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/tui"
	"github.com/spf13/cobra"
)

func PanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the live moderation panel",
		Long:  "Show the service state in an interactive dashboard that refreshes on its own and takes single-key actions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := panelMain(cmd); err != nil {
				os.Exit(1)
			}
		},
	}

	return cmd
}

func panelMain(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.ConfigFromContext(ctx)
	ctrl := session.FromContext(ctx)

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		err := errors.New("the panel needs an interactive terminal; use 'modpanel state --watch' instead")
		logger.Error("%v", err)
		return err
	}

	result, err := tui.RunPanel(ctx, tui.PanelConfig{
		Controller:   ctrl,
		PollInterval: cfg.PollInterval,
		Header:       fmt.Sprintf("Moderation panel @ %s", cfg.APIBaseURL),
	})
	if err != nil {
		logger.Error("Panel failed: %v", err)
		return err
	}

	if result.SessionEnded {
		if result.Err != nil && !api.IsAuthRejection(result.Err) {
			logger.Error("%v", result.Err)
		}
		logger.Info("Not logged in")
		logger.Info("Run 'modpanel login' to authenticate")
	}

	return resultError(result)
}

// resultError maps how the panel ended to the command's error. Losing the
// session is a failure even when no request error caused it.
func resultError(result tui.PanelResult) error {
	if !result.SessionEnded {
		return nil
	}
	if result.Err != nil {
		return result.Err
	}
	return session.ErrSessionEnded
}
