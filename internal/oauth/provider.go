package oauth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Provider describes one OAuth2 service.
type Provider struct {
	Name     string
	Endpoint oauth2.Endpoint
	Scopes   []string
	// AuthParams are appended to the authorize URL (e.g. approval_prompt).
	AuthParams map[string]string
}

// EnvPrefix is the upper-cased service name used for env vars and token file keys.
func (p Provider) EnvPrefix() string { return strings.ToUpper(p.Name) }

// TokenFileName is the CI artifact name, e.g. fitbit_tokens.json.
func (p Provider) TokenFileName() string { return strings.ToLower(p.Name) + "_tokens.json" }

// Credentials are the registered application values for a Provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Check reports every missing credential at once, named by its env var.
func (p Provider) Check(c Credentials) error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, p.EnvPrefix()+"_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, p.EnvPrefix()+"_CLIENT_SECRET")
	}
	if c.RedirectURI == "" {
		missing = append(missing, p.EnvPrefix()+"_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s environment variables: %s", p.Name, strings.Join(missing, ", "))
	}
	return nil
}

func (p Provider) config(c Credentials) *oauth2.Config {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = p.Scopes
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     p.Endpoint,
		RedirectURL:  c.RedirectURI,
		Scopes:       scopes,
	}
}
