package logout

import (
	"net/url"
	"os"

	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/credentials"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
	"github.com/spf13/cobra"
)

func LogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of the moderation service",
		Long:  "End the session on the server and clear the stored credential",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := logoutMain(cmd); err != nil {
				os.Exit(1)
			}
		},
	}

	return cmd
}

func logoutMain(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.ConfigFromContext(ctx)
	store := credentials.FromContext(ctx)
	ctrl := session.FromContext(ctx)

	if _, ok := store.Get(); !ok && !hasCookies(store, api.FromContext(ctx).BaseURL) {
		logger.Success("Already logged out!")
		return nil
	}

	if err := ctrl.Logout(ctx); err != nil {
		logger.Error("Failed to clear stored credential: %v", err)
		return err
	}

	logger.Success("Logged out of %s", cfg.APIBaseURL)
	return nil
}

func hasCookies(store credentials.Store, baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return len(store.Cookies(u)) > 0
}
