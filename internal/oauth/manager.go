package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// DefaultSkew refreshes tokens this long before they actually expire.
const DefaultSkew = 120 * time.Second

var (
	// ErrUnauthorized marks an API response that rejected the access token.
	ErrUnauthorized = errors.New("access token rejected")
	// ErrTokenRequest wraps every failed call to the token endpoint, whether
	// the provider answered with an error or never answered at all.
	ErrTokenRequest = errors.New("token request failed")
)

// Manager runs the token lifecycle for a single Provider.
type Manager struct {
	provider Provider
	creds    Credentials
	store    Store
	http     *http.Client
	skew     time.Duration
	now      func() time.Time
	logger   *slog.Logger

	// refreshMu serializes refreshes; a rotated refresh token is spent once.
	refreshMu sync.Mutex
}

type ManagerOption func(*Manager)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) ManagerOption {
	return func(m *Manager) {
		m.http = c
	}
}

func WithSkew(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.skew = d
	}
}

func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(p Provider, c Credentials, s Store, opts ...ManagerOption) (*Manager, error) {
	if err := p.Check(c); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%s: token store not configured", p.Name)
	}
	m := &Manager{
		provider: p,
		creds:    c,
		store:    s,
		skew:     DefaultSkew,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.http == nil {
		h := retryablehttp.NewClient()
		h.RetryMax = 2
		h.Logger = m.logger
		m.http = h.StandardClient()
	}
	return m, nil
}

func (m *Manager) Provider() Provider { return m.provider }

func (m *Manager) config() *oauth2.Config { return m.provider.config(m.creds) }

func (m *Manager) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.http)
}

// AuthorizeURL builds the URL the user visits to grant access.
func (m *Manager) AuthorizeURL(state string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(m.provider.AuthParams))
	for k, v := range m.provider.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return m.config().AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens and persists them.
func (m *Manager) Exchange(ctx context.Context, code string) (*Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%s: empty authorization code", m.provider.Name)
	}
	ot, err := m.config().Exchange(m.ctx(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange: %w: %w", m.provider.Name, ErrTokenRequest, err)
	}
	tok := fromOAuth2(ot, nil, m.now())
	if err := m.store.Save(ctx, tok); err != nil {
		return nil, fmt.Errorf("%s: save token: %w", m.provider.Name, err)
	}
	m.logger.Info("token issued", "provider", m.provider.Name, "expires_at", tok.Expiry())
	return tok, nil
}

// Refresh runs the refresh-token grant unconditionally.
func (m *Manager) Refresh(ctx context.Context) (*Token, error) {
	return m.refresh(ctx, nil)
}

// refresh runs the refresh-token grant unless stale returns false for the
// stored token. The store is re-read under the lock, so a caller that queued
// behind another refresh picks up its result instead of reusing a spent
// refresh token.
func (m *Manager) refresh(ctx context.Context, stale func(*Token) bool) (*Token, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	cur, err := m.store.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if cur != nil && stale != nil && !stale(cur) {
		return cur, nil
	}
	if cur == nil || cur.RefreshToken == "" {
		return nil, fmt.Errorf("%s: %w", m.provider.Name, ErrNoRefreshToken)
	}

	// An empty access token forces the token source to hit the endpoint.
	src := m.config().TokenSource(m.ctx(ctx), &oauth2.Token{RefreshToken: cur.RefreshToken})
	ot, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh %s token: %w: %w", m.provider.Name, ErrTokenRequest, err)
	}
	tok := fromOAuth2(ot, cur, m.now())
	if err := m.store.Save(ctx, tok); err != nil {
		return nil, fmt.Errorf("%s: save token: %w", m.provider.Name, err)
	}
	m.logger.Info("token refreshed", "provider", m.provider.Name, "expires_at", tok.Expiry())
	return tok, nil
}

// Expired is true at or past ExpiresAt minus the skew. No expiry means expired.
func (m *Manager) Expired(tok *Token) bool {
	if tok == nil || tok.ExpiresAt <= 0 || tok.AccessToken == "" {
		return true
	}
	return !m.now().Before(tok.Expiry().Add(-m.skew))
}

// Valid returns a usable token, refreshing first when needed.
func (m *Manager) Valid(ctx context.Context) (*Token, error) {
	cur, err := m.store.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if !m.Expired(cur) {
		return cur, nil
	}
	m.logger.Debug("token expired or near expiry", "provider", m.provider.Name)
	return m.refresh(ctx, m.Expired)
}

// Sync refreshes when expired and always rewrites the stored token, so the
// token file exists for the next run.
func (m *Manager) Sync(ctx context.Context) (*Token, error) {
	cur, err := m.store.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if m.Expired(cur) {
		return m.refresh(ctx, m.Expired)
	}
	if err := m.store.Save(ctx, cur); err != nil {
		return nil, fmt.Errorf("%s: save token: %w", m.provider.Name, err)
	}
	return cur, nil
}

type Status struct {
	HasAccessToken  bool
	HasRefreshToken bool
	ExpiresAt       time.Time
	Expired         bool
}

func (m *Manager) Status(ctx context.Context) (Status, error) {
	cur, err := m.store.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoToken) {
		return Status{}, err
	}
	st := Status{Expired: m.Expired(cur)}
	if cur != nil {
		st.HasAccessToken = cur.AccessToken != ""
		st.HasRefreshToken = cur.RefreshToken != ""
		st.ExpiresAt = cur.Expiry()
	}
	return st, nil
}

// Do sends req with a valid bearer token. A 401 forces one refresh and one
// retry; a second 401 returns ErrUnauthorized.
func (m *Manager) Do(ctx context.Context, h *retryablehttp.Client, method, url string) (*http.Response, error) {
	tok, err := m.Valid(ctx)
	if err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		req, err := retryablehttp.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		resp, err := h.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()              //nolint:errcheck
		if attempt > 0 {
			return nil, fmt.Errorf("%s: %w", m.provider.Name, ErrUnauthorized)
		}
		m.logger.Warn("access token rejected; refreshing", "provider", m.provider.Name)
		rejected := tok.AccessToken
		tok, err = m.refresh(ctx, func(t *Token) bool {
			return t.AccessToken == rejected || m.Expired(t)
		})
		if err != nil {
			return nil, err
		}
	}
}
