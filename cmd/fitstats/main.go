package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aaronromeo/fitstats/internal/config"
	"github.com/aaronromeo/fitstats/internal/oauth"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fitstats",
		Short: "fitstats keeps a profile README in sync with Fitbit and Strava",
		Long: `fitstats is a CLI that:
1. Authorizes against Fitbit and Strava and keeps their OAuth tokens fresh
2. Fetches steps, sleep and the latest workout
3. Rewrites the matching lines of a profile README`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg != nil {
				return nil
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg

			programLevel := slog.LevelInfo
			if cfg.Debug {
				programLevel = slog.LevelDebug
			}
			// stdout carries the metric values CI captures.
			a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: programLevel}))
			slog.SetDefault(a.logger)
			return nil
		},
	}

	root.AddCommand(serviceCmd(a, fitbitService))
	root.AddCommand(serviceCmd(a, stravaService))
	// fitbit-steps, strava-tokens, ... as the single-dash names CI scripts call.
	for _, svc := range []service{fitbitService, stravaService} {
		for _, c := range leafCmds(a, svc) {
			c.Use = svc.provider.Name + "-" + c.Use
			c.Hidden = true
			root.AddCommand(c)
		}
	}
	root.AddCommand(readmeCmd(a))
	root.AddCommand(serveCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{in: os.Stdin, out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) manager(p oauth.Provider, svc config.Service) (*oauth.Manager, error) {
	return oauth.NewManager(p, svc.Credentials(), a.cfg.Store(p),
		oauth.WithSkew(a.cfg.ExpirySkew),
		oauth.WithLogger(a.logger),
	)
}
