package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aaronromeo/fitstats/internal/httpapi"
	"github.com/aaronromeo/fitstats/internal/oauth"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the OAuth redirect flow at /oauth/{fitbit,strava}/start",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.StateSecret == "" {
				return errors.New("OAUTH_STATE_SECRET not set")
			}
			managers := map[string]*oauth.Manager{}
			for _, svc := range []service{fitbitService, stravaService} {
				m, err := svc.manager(a)
				if err != nil {
					a.logger.Warn("provider disabled", "provider", svc.provider.Name, "error", err)
					continue
				}
				managers[svc.provider.Name] = m
			}
			if len(managers) == 0 {
				return errors.New("no provider configured")
			}

			srv := httpapi.NewServer(managers, []byte(a.cfg.StateSecret), a.logger)
			go func() {
				<-cmd.Context().Done()
				srv.Shutdown() //nolint:errcheck
			}()
			a.logger.Info("listening", "addr", a.cfg.Addr)
			return srv.Listen(a.cfg.Addr)
		},
	}
}
