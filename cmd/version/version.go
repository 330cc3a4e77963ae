package version

import (
	"fmt"

	"github.com/modpanel/cli/internal/logger"
	versionpkg "github.com/modpanel/cli/internal/version"
	"github.com/spf13/cobra"
)

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version number and check for updates",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(versionpkg.Version)

			// Check for updates
			latest, err := versionpkg.CheckForUpdate(cmd.Context())
			if err != nil {
				// Silently fail - don't show error to user for update check failures
				logger.Debug("Update check failed: %v", err)
				return
			}

			if latest != nil {
				logger.Warning("\nA new version is available: %s (current: %s)", latest.TagName, versionpkg.Version)
				if latest.URL != "" {
					logger.Info("Release: %s", latest.URL)
				}
			}
		},
	}
}
