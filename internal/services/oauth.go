// Direct OAuth2 support for the generic bring-your-own-app provider
package services

import (
	"fmt"

	"github.com/soconhq/socon/internal/shared"
	"golang.org/x/oauth2"
)

// DirectOAuth performs the authorization-code flow against user-supplied
// endpoints, bypassing the backend's registered apps. Used by the generic
// provider, where the user brings their own OAuth application.
type DirectOAuth struct {
	config *oauth2.Config
}

// NewDirectOAuth builds a direct OAuth service from generic provider settings.
func NewDirectOAuth(cfg shared.GenericConfig, redirectURL string) (*DirectOAuth, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: generic client_id and client_secret must be set", shared.ErrMissingCredentials)
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("%w: generic auth_url and token_url must be set", shared.ErrInvalidConfig)
	}

	return &DirectOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
	}, nil
}

// AuthURL returns the provider consent URL carrying the given state nonce.
func (d *DirectOAuth) AuthURL(state string) string {
	return d.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Config exposes the underlying [oauth2.Config] for the code-exchange handler.
func (d *DirectOAuth) Config() *oauth2.Config {
	return d.config
}
