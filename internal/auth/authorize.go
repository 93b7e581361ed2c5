package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/sptty/internal/shared"
	"golang.org/x/oauth2"
)

// Scope is the fixed permission set requested on every authorization.
const Scope = "streaming user-read-email user-read-private user-read-playback-state user-modify-playback-state user-top-read"

// oauthConfig maps the configured endpoints onto a public (secretless) [oauth2.Config].
func oauthConfig(cfg *shared.AuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      strings.Fields(Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthorizationEndpoint,
			TokenURL:  cfg.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizationURL builds the URL the user visits to grant access, with a fresh state.
//
// The returned state must be checked against the redirect.
func AuthorizationURL(cfg *shared.AuthConfig, challenge string) (string, string, error) {
	u, err := url.Parse(cfg.AuthorizationEndpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", "", fmt.Errorf("%w: invalid authorization_endpoint %q", shared.ErrConfig, cfg.AuthorizationEndpoint)
	}

	state, err := GenerateState()
	if err != nil {
		return "", "", err
	}

	authURL := oauthConfig(cfg).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
	return authURL, state, nil
}
