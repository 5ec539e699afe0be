// Package stats gathers the profile metrics from every configured service.
package stats

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/aaronromeo/fitstats/internal/fitbit"
	"github.com/aaronromeo/fitstats/internal/oauth"
	"github.com/aaronromeo/fitstats/internal/strava"
	"golang.org/x/sync/errgroup"
)

const (
	Steps       = "steps"
	Sleep       = "sleep"
	WorkoutName = "workout_name"
	WorkoutTime = "workout_time"
)

// Source fetches one or more metrics. Fallback holds the values reported
// when Fetch fails with a non-auth error.
type Source struct {
	Name     string
	Fallback map[string]string
	Fetch    func(ctx context.Context) (map[string]string, error)
}

func FitbitSteps(c *fitbit.Client, day string) Source {
	return Source{
		Name:     "fitbit-steps",
		Fallback: map[string]string{Steps: "0"},
		Fetch: func(ctx context.Context) (map[string]string, error) {
			n, err := c.Steps(ctx, day)
			if err != nil {
				return nil, err
			}
			return map[string]string{Steps: strconv.Itoa(n)}, nil
		},
	}
}

func FitbitSleep(c *fitbit.Client, day string) Source {
	return Source{
		Name:     "fitbit-sleep",
		Fallback: map[string]string{Sleep: fitbit.FormatSleep(0)},
		Fetch: func(ctx context.Context) (map[string]string, error) {
			mins, err := c.Sleep(ctx, day)
			if err != nil {
				return nil, err
			}
			return map[string]string{Sleep: fitbit.FormatSleep(mins)}, nil
		},
	}
}

var noWorkout = map[string]string{WorkoutName: "No Activity", WorkoutTime: strava.FormatElapsed(0)}

func StravaLatestWorkout(c *strava.Client) Source {
	return Source{
		Name:     "strava-latest-workout",
		Fallback: noWorkout,
		Fetch: func(ctx context.Context) (map[string]string, error) {
			w, ok, err := c.LatestWorkout(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return noWorkout, nil
			}
			return map[string]string{WorkoutName: w.Name, WorkoutTime: strava.FormatElapsed(w.Elapsed)}, nil
		},
	}
}

// Collect runs every source concurrently. A failing source contributes its
// fallback values; an auth error aborts the whole collection.
func Collect(ctx context.Context, logger *slog.Logger, sources ...Source) (map[string]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var mu sync.Mutex
	out := make(map[string]string)
	merge := func(vals map[string]string) {
		mu.Lock()
		defer mu.Unlock()
		for k, v := range vals {
			out[k] = v
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			vals, err := src.Fetch(gctx)
			if err != nil {
				if oauth.IsAuthError(err) {
					return err
				}
				logger.Error("fetch failed; using fallback", "source", src.Name, "error", err)
				merge(src.Fallback)
				return nil
			}
			logger.Debug("fetched", "source", src.Name, "values", vals)
			merge(vals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
