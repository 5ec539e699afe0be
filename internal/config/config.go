package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aaronromeo/fitstats/internal/oauth"
)

// Service holds the <PREFIX>_* variables for one provider.
type Service struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURI  string   `env:"REDIRECT_URI"`
	Scopes       []string `env:"SCOPES" envSeparator:" "`
}

func (s Service) Credentials() oauth.Credentials {
	return oauth.Credentials{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  s.RedirectURI,
		Scopes:       s.Scopes,
	}
}

type Config struct {
	Fitbit Service `envPrefix:"FITBIT_"`
	Strava Service `envPrefix:"STRAVA_"`

	// TokenDir holds <service>_tokens.json, the files CI keeps as artifacts.
	TokenDir     string        `env:"TOKEN_DIR" envDefault:"."`
	DotenvPath   string        `env:"DOTENV_PATH" envDefault:".env"`
	UpdateDotenv bool          `env:"UPDATE_DOTENV" envDefault:"false"`
	ExpirySkew   time.Duration `env:"OAUTH_EXPIRY_SKEW" envDefault:"120s"`
	StateSecret  string        `env:"OAUTH_STATE_SECRET"`

	HTTPRetries int    `env:"HTTP_RETRIES" envDefault:"3"`
	ReadmePath  string `env:"README_PATH" envDefault:"README.md"`
	ReadmeRules string `env:"README_RULES"`

	Debug bool   `env:"DEBUG" envDefault:"false"`
	Addr  string `env:"ADDR" envDefault:":8080"`
}

// LoadConfig reads .env (without overriding variables already set) and
// then parses the environment.
func LoadConfig() (*Config, error) {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TokenFile is the JSON token file path for p.
func (c *Config) TokenFile(p oauth.Provider) string {
	return filepath.Join(c.TokenDir, p.TokenFileName())
}

// Store builds the token store for p: the token file first, then the
// optional .env file, then the process environment.
func (c *Config) Store(p oauth.Provider) oauth.Store {
	chain := oauth.ChainStore{oauth.FileStore{Path: c.TokenFile(p), Prefix: p.EnvPrefix()}}
	if c.UpdateDotenv {
		chain = append(chain, oauth.DotenvStore{Path: c.DotenvPath, Prefix: p.EnvPrefix()})
	}
	return append(chain, oauth.EnvStore{Prefix: p.EnvPrefix()})
}
