package fitbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaronromeo/fitstats/internal/oauth"
	"github.com/hashicorp/go-retryablehttp"
)

type Client struct {
	h    *retryablehttp.Client
	auth *oauth.Manager
	base string
}

func New(m *oauth.Manager, retries int, logger *slog.Logger) *Client {
	h := retryablehttp.NewClient()
	h.RetryMax = retries
	if logger != nil {
		h.Logger = logger
	}
	return &Client{h: h, auth: m, base: apiURLBase}
}

type activitySummary struct {
	Summary struct {
		Steps int `json:"steps"`
	} `json:"summary"`
}

type sleepSummary struct {
	Summary struct {
		TotalMinutesAsleep int `json:"totalMinutesAsleep"`
	} `json:"summary"`
}

// Steps returns the step count for day ("today" or YYYY-MM-DD).
func (c *Client) Steps(ctx context.Context, day string) (int, error) {
	var out activitySummary
	if err := c.get(ctx, activitiesPath, day, &out); err != nil {
		return 0, err
	}
	return out.Summary.Steps, nil
}

// Sleep returns total minutes asleep for day. No sleep logged reads as 0.
func (c *Client) Sleep(ctx context.Context, day string) (int, error) {
	var out sleepSummary
	if err := c.get(ctx, sleepPath, day, &out); err != nil {
		return 0, err
	}
	return out.Summary.TotalMinutesAsleep, nil
}

func (c *Client) get(ctx context.Context, pathFmt, day string, v any) error {
	day, err := NormalizeDay(day)
	if err != nil {
		return err
	}
	resp, err := c.auth.Do(ctx, c.h, http.MethodGet, c.base+fmt.Sprintf(pathFmt, day))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("fitbit status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode fitbit response: %w", err)
	}
	return nil
}

// NormalizeDay accepts "", "today" or a YYYY-MM-DD date.
func NormalizeDay(day string) (string, error) {
	if day == "" || day == Today {
		return Today, nil
	}
	if _, err := time.Parse(time.DateOnly, day); err != nil {
		return "", fmt.Errorf("bad fitbit date %q: want YYYY-MM-DD or today", day)
	}
	return day, nil
}

// FormatSleep renders minutes as "7h 12m".
func FormatSleep(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
