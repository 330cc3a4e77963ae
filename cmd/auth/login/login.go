package login

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type LoginCmdOpts struct {
	PasswordStdin bool
	Force         bool
}

func LoginCmd() *cobra.Command {
	opts := LoginCmdOpts{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the moderation service",
		Long:  "Log in with the panel password. An existing valid session is reused unless --force is given.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := loginMain(cmd, &opts); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Log in again even if a session exists")

	return cmd
}

func loginMain(cmd *cobra.Command, opts *LoginCmdOpts) error {
	ctx := cmd.Context()
	cfg := config.ConfigFromContext(ctx)
	ctrl := session.FromContext(ctx)

	ctrl.SetListener(&utils.ConsoleListener{
		Areas: []session.Area{session.AreaLogin},
	})

	if !opts.Force && ctrl.ProbeLogin(ctx) {
		logger.Success("Already logged in to %s", cfg.APIBaseURL)
		logger.Info("Use --force to log in again")
		return nil
	}

	password, err := readPassword(cmd.InOrStdin(), opts.PasswordStdin)
	if err != nil {
		logger.Error("%v", err)
		return err
	}

	// The listener reports success and failure
	return ctrl.Login(ctx, password)
}

func readPassword(in io.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Panel password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}

	return password, nil
}
