package state

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/config"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
	"github.com/modpanel/cli/internal/utils"
	"github.com/spf13/cobra"
)

type StateCmdOpts struct {
	Output   string
	Watch    bool
	Interval time.Duration
}

func StateCmd() *cobra.Command {
	opts := StateCmdOpts{}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the moderation service state",
		Long:  "Fetch the current shutdown mode from the moderation service. With --watch, keep polling until interrupted.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := stateMain(cmd, &opts); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", utils.OutputTable, "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Keep polling and print every change")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Polling interval for --watch (default from config)")

	cmd.AddCommand(RawCmd())

	return cmd
}

func stateMain(cmd *cobra.Command, opts *StateCmdOpts) error {
	ctx := cmd.Context()
	cfg := config.ConfigFromContext(ctx)
	ctrl := session.FromContext(ctx)
	out := cmd.OutOrStdout()

	switch opts.Output {
	case utils.OutputTable, utils.OutputJSON, utils.OutputYAML:
	default:
		err := fmt.Errorf("unsupported output format %q", opts.Output)
		logger.Error("%v", err)
		return err
	}

	if !opts.Watch {
		ctrl.SetListener(&utils.ConsoleListener{Areas: []session.Area{}})

		st, err := ctrl.Refresh(ctx)
		if err != nil {
			reportError(err)
			return err
		}
		return printState(out, opts.Output, st)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = cfg.PollInterval
	}

	var last *api.ServiceState
	ctrl.SetListener(&utils.ConsoleListener{
		Areas: []session.Area{session.AreaHint},
		OnServiceState: func(st api.ServiceState) {
			if last != nil && sameState(*last, st) {
				return
			}
			last = &st
			if err := printState(out, opts.Output, st); err != nil {
				logger.Error("%v", err)
			}
		},
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("Polling %s every %s", cfg.APIBaseURL, interval)

	if err := ctrl.Watch(ctx, interval); err != nil {
		if errors.Is(err, session.ErrSessionEnded) {
			logger.Error("Session ended: the server rejected the stored credential")
			logger.Info("Run 'modpanel login' to authenticate again")
		} else {
			logger.Error("%v", err)
		}
		return err
	}
	return nil
}

func sameState(a, b api.ServiceState) bool {
	if a.ShutdownEnabled != b.ShutdownEnabled {
		return false
	}
	if a.UpdatedAt == nil || b.UpdatedAt == nil {
		return a.UpdatedAt == b.UpdatedAt
	}
	return a.UpdatedAt.Equal(*b.UpdatedAt)
}

func printState(out io.Writer, format string, st api.ServiceState) error {
	if format == utils.OutputTable {
		headers, rows := utils.ServiceStateTable(st, time.Now())
		return utils.PrintTable(out, headers, rows)
	}
	return utils.PrintData(out, format, st.Raw)
}

func reportError(err error) {
	logger.Error("%v", err)
	if api.IsAuthRejection(err) {
		logger.Info("Run 'modpanel login' to authenticate")
	}
}
