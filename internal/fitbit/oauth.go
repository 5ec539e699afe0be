package fitbit

import (
	"github.com/aaronromeo/fitstats/internal/oauth"
	"golang.org/x/oauth2"
	fitbitoauth "golang.org/x/oauth2/fitbit"
)

// Provider is Fitbit's OAuth2 setup. The token endpoint takes client
// credentials as HTTP Basic auth.
var Provider = oauth.Provider{
	Name: "fitbit",
	Endpoint: oauth2.Endpoint{
		AuthURL:   fitbitoauth.Endpoint.AuthURL,
		TokenURL:  fitbitoauth.Endpoint.TokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
	},
	Scopes: []string{"activity", "sleep"},
}
