package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aaronromeo/fitstats/internal/oauth"
	"github.com/hashicorp/go-retryablehttp"
)

type Client struct {
	h    *retryablehttp.Client
	auth *oauth.Manager
}

func New(m *oauth.Manager, retries int, logger *slog.Logger) *Client {
	h := retryablehttp.NewClient()
	h.RetryMax = retries
	if logger != nil {
		h.Logger = logger
	}
	return &Client{h: h, auth: m}
}

type Activity struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Start       string  `json:"start_date"`
	ElapsedTime int     `json:"elapsed_time"` // seconds
	Effort      float64 `json:"suffer_score"` // Strava may return numbers with decimals
}

// Workout is the newest activity as shown on the profile.
type Workout struct {
	Name    string
	Elapsed time.Duration
}

func (c *Client) GetRecentActivities(ctx context.Context, sinceDays int) ([]Activity, error) {
	// Build URL with sinceDays → after=unix seconds, per_page=100 (single page MVP)
	u, _ := url.Parse(activitiesURL)
	q := u.Query()
	q.Set("per_page", "100")
	if sinceDays > 0 {
		after := time.Now().Add(-time.Duration(sinceDays) * 24 * time.Hour).Unix()
		q.Set("after", strconv.FormatInt(after, 10))
	}
	u.RawQuery = q.Encode()
	return c.activities(ctx, u.String())
}

// LatestWorkout returns the first activity Strava lists; ok is false when
// the athlete has none.
func (c *Client) LatestWorkout(ctx context.Context) (w Workout, ok bool, err error) {
	u, _ := url.Parse(activitiesURL)
	q := u.Query()
	q.Set("per_page", "1")
	u.RawQuery = q.Encode()

	acts, err := c.activities(ctx, u.String())
	if err != nil {
		return Workout{}, false, err
	}
	if len(acts) == 0 {
		return Workout{}, false, nil
	}
	a := acts[0]
	name := a.Name
	if name == "" {
		name = "Unknown Activity"
	}
	return Workout{Name: name, Elapsed: time.Duration(a.ElapsedTime) * time.Second}, true, nil
}

func (c *Client) activities(ctx context.Context, u string) ([]Activity, error) {
	resp, err := c.auth.Do(ctx, c.h, http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("strava status %d", resp.StatusCode)
	}
	var out []Activity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode strava activities: %w", err)
	}
	return out, nil
}

// FormatElapsed renders "1h 02m" at an hour or more, "42m" below.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	hours, rem := secs/3600, secs%3600
	minutes := rem / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
