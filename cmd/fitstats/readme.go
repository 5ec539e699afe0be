package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaronromeo/fitstats/internal/fitbit"
	"github.com/aaronromeo/fitstats/internal/readme"
	"github.com/aaronromeo/fitstats/internal/stats"
)

func readmeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readme",
		Short: "Maintain the profile README",
	}

	var file, rulesPath, day string
	var skipFitbit, skipStrava bool
	update := &cobra.Command{
		Use:   "update",
		Short: "Fetch all metrics and rewrite the README lines that show them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.ReadmePath
			}
			if rulesPath == "" {
				rulesPath = a.cfg.ReadmeRules
			}
			rules, err := readme.LoadRules(rulesPath)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			var sources []stats.Source
			if !skipFitbit {
				if c, err := a.fitbitClient(); err != nil {
					a.logger.Warn("skipping fitbit", "error", err)
				} else {
					sources = append(sources, stats.FitbitSteps(c, day), stats.FitbitSleep(c, day))
				}
			}
			if !skipStrava {
				if c, err := a.stravaClient(); err != nil {
					a.logger.Warn("skipping strava", "error", err)
				} else {
					sources = append(sources, stats.StravaLatestWorkout(c))
				}
			}

			vals, err := stats.Collect(cmd.Context(), a.logger, sources...)
			if err != nil {
				return err
			}
			res, err := readme.UpdateFile(file, rules, vals)
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", file, err)
			}
			a.logger.Info("readme updated", "file", file, "changed", res.Changed, "lines", res.Replaced, "digest", fmt.Sprintf("%016x", res.Digest))
			return nil
		},
	}
	update.Flags().StringVar(&file, "file", "", "README to rewrite (default $README_PATH)")
	update.Flags().StringVar(&rulesPath, "rules", "", "Rules YAML (default $README_RULES, else built-in rules)")
	update.Flags().StringVar(&day, "date", fitbit.Today, "Fitbit day to report: today or YYYY-MM-DD")
	update.Flags().BoolVar(&skipFitbit, "skip-fitbit", false, "Do not fetch Fitbit metrics")
	update.Flags().BoolVar(&skipStrava, "skip-strava", false, "Do not fetch Strava metrics")

	cmd.AddCommand(update)
	return cmd
}
