package strava

import (
	"github.com/aaronromeo/fitstats/internal/oauth"
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"
)

// Provider is Strava's OAuth2 setup. Strava wants client credentials in the
// form body, not a Basic header.
var Provider = oauth.Provider{
	Name: "strava",
	Endpoint: oauth2.Endpoint{
		AuthURL:   authURL,
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	},
	Scopes:     []string{"activity:read"},
	AuthParams: map[string]string{"approval_prompt": "auto"},
}
