package completion

import (
	"os"

	"github.com/modpanel/cli/internal/logger"
	"github.com/spf13/cobra"
)

func CompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for the specified shell.

Bash:
  $ source <(modpanel completion bash)

Zsh:
  $ modpanel completion zsh > "${fpath[1]}/_modpanel"

Fish:
  $ modpanel completion fish > ~/.config/fish/completions/modpanel.fish

PowerShell:
  PS> modpanel completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			if err := completionMain(cmd, args[0]); err != nil {
				logger.Error("Failed to generate %s completion: %v", args[0], err)
				os.Exit(1)
			}
		},
	}

	return cmd
}

func completionMain(cmd *cobra.Command, shell string) error {
	root := cmd.Root()
	out := cmd.OutOrStdout()

	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	default:
		return root.GenPowerShellCompletionWithDesc(out)
	}
}
