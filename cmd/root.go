package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/modpanel/cli/cmd/announce"
	"github.com/modpanel/cli/cmd/auth"
	"github.com/modpanel/cli/cmd/auth/login"
	"github.com/modpanel/cli/cmd/auth/logout"
	"github.com/modpanel/cli/cmd/auth/status"
	"github.com/modpanel/cli/cmd/completion"
	"github.com/modpanel/cli/cmd/open"
	"github.com/modpanel/cli/cmd/panel"
	"github.com/modpanel/cli/cmd/player"
	"github.com/modpanel/cli/cmd/shutdown"
	"github.com/modpanel/cli/cmd/state"
	"github.com/modpanel/cli/cmd/version"
	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/credentials"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
	versionpkg "github.com/modpanel/cli/internal/version"
	"github.com/spf13/cobra"
)

// Initialize a root Cobra command.
//
// Set initResources to false when generating documentation to avoid
// parsing configuration files and instantiating the API client, among
// other such external resources. This is to avoid depending on external
// state when doing doc generation.
func RootCommand(initResources bool) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "modpanel",
		Short: "Moderation panel CLI",
		Long:  "Log in to the moderation service, watch its state and send moderation commands",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Skip update check for commands whose output is consumed by other tools
			switch cmd.Name() {
			case "version", "completion", "panel":
				return
			}

			cfg := config.ConfigFromContext(cmd.Context())
			if cfg.DisableUpdateCheck {
				return
			}

			cacheDir, err := config.Dir()
			if err != nil {
				return
			}

			versionpkg.CheckForUpdateAsync(cacheDir, func(release *versionpkg.GitHubRelease) {
				logger.Warning("A new version is available: %s (current: %s)", release.TagName, versionpkg.Version)
				if release.URL != "" {
					logger.Info("Release: %s", release.URL)
				}
				fmt.Println()
			})
		},
	}

	cmd.AddCommand(auth.AuthCommand())
	cmd.AddCommand(login.LoginCmd())
	cmd.AddCommand(logout.LogoutCmd())
	cmd.AddCommand(status.StatusCmd())
	cmd.AddCommand(status.WhoAmICmd())
	cmd.AddCommand(state.StateCmd())
	cmd.AddCommand(shutdown.ShutdownCmd())
	cmd.AddCommand(announce.AnnounceCmd())
	cmd.AddCommand(player.PlayerCmd())
	cmd.AddCommand(panel.PanelCmd())
	cmd.AddCommand(open.OpenCmd())
	cmd.AddCommand(version.VersionCmd())
	cmd.AddCommand(completion.CompletionCmd())

	if !initResources {
		return cmd, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.LogLevel)

	sessionsDir, err := config.SessionsDir()
	if err != nil {
		return nil, err
	}

	baseURL := api.NormalizeBaseURL(cfg.APIBaseURL)

	store, err := credentials.OpenFileStore(sessionsDir, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:     baseURL,
		AuthMode:    cfg.AuthMode,
		Credentials: store,
		Timeout:     cfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	controller := session.NewController(client, nil)

	ctx := context.Background()
	ctx = config.WithConfig(ctx, cfg)
	ctx = credentials.WithStore(ctx, store)
	ctx = api.WithAPIClient(ctx, client)
	ctx = session.WithController(ctx, controller)

	cmd.SetContext(ctx)

	return cmd, nil
}

// Execute is called by main.go
func Execute() {
	cmd, err := RootCommand(true)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
