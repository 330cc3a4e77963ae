package auth

import (
	"github.com/modpanel/cli/cmd/auth/login"
	"github.com/modpanel/cli/cmd/auth/logout"
	"github.com/modpanel/cli/cmd/auth/status"
	"github.com/spf13/cobra"
)

func AuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  "Log in to the moderation service, inspect and end the session",
	}

	cmd.AddCommand(login.LoginCmd())
	cmd.AddCommand(logout.LogoutCmd())
	cmd.AddCommand(status.StatusCmd())

	return cmd
}
