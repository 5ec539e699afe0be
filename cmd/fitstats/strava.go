package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaronromeo/fitstats/internal/config"
	"github.com/aaronromeo/fitstats/internal/stats"
	"github.com/aaronromeo/fitstats/internal/strava"
)

var stravaService = service{
	provider: strava.Provider,
	settings: func(c *config.Config) config.Service { return c.Strava },
}

// data is set in init to break the initialization cycle through
// stravaCmds -> (*app).stravaClient -> stravaService.
func init() { stravaService.data = stravaCmds }

func (a *app) stravaClient() (*strava.Client, error) {
	m, err := stravaService.manager(a)
	if err != nil {
		return nil, err
	}
	return strava.New(m, a.cfg.HTTPRetries, a.logger), nil
}

func stravaCmds(a *app, svc service) []*cobra.Command {
	latest := &cobra.Command{
		Use:   "latest-workout",
		Short: "Print the latest workout name and elapsed time",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.stravaClient()
			if err != nil {
				return err
			}
			vals, err := stats.Collect(cmd.Context(), a.logger, stats.StravaLatestWorkout(c))
			if err != nil {
				return reauthHint(a, svc.provider.Name, err)
			}
			fmt.Fprintln(a.out, vals[stats.WorkoutName])
			fmt.Fprintln(a.out, vals[stats.WorkoutTime])
			return nil
		},
	}

	var days int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Print recent activities as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.stravaClient()
			if err != nil {
				return err
			}
			acts, err := c.GetRecentActivities(cmd.Context(), days)
			if err != nil {
				return reauthHint(a, svc.provider.Name, err)
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(acts)
		},
	}
	recent.Flags().IntVar(&days, "days", 7, "Only include activities from the last N days (0 for no limit)")

	return []*cobra.Command{latest, recent}
}
