package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaronromeo/fitstats/internal/config"
	"github.com/aaronromeo/fitstats/internal/fitbit"
	"github.com/aaronromeo/fitstats/internal/stats"
)

var fitbitService = service{
	provider: fitbit.Provider,
	settings: func(c *config.Config) config.Service { return c.Fitbit },
}

// data is set in init to break the initialization cycle through
// fitbitCmds -> (*app).fitbitClient -> fitbitService.
func init() { fitbitService.data = fitbitCmds }

func (a *app) fitbitClient() (*fitbit.Client, error) {
	m, err := fitbitService.manager(a)
	if err != nil {
		return nil, err
	}
	return fitbit.New(m, a.cfg.HTTPRetries, a.logger), nil
}

func fitbitCmds(a *app, svc service) []*cobra.Command {
	var day string

	metric := func(use, short, key string, src func(*fitbit.Client, string) stats.Source) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.fitbitClient()
				if err != nil {
					return err
				}
				vals, err := stats.Collect(cmd.Context(), a.logger, src(c, day))
				if err != nil {
					return reauthHint(a, svc.provider.Name, err)
				}
				fmt.Fprintln(a.out, vals[key])
				return nil
			},
		}
		cmd.Flags().StringVar(&day, "date", fitbit.Today, "Day to report: today or YYYY-MM-DD")
		return cmd
	}

	return []*cobra.Command{
		metric("steps", "Print the step count for a day", stats.Steps, stats.FitbitSteps),
		metric("sleep", "Print total sleep for a day as 7h 12m", stats.Sleep, stats.FitbitSleep),
	}
}
