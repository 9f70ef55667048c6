package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/homielab/homie/internal/config"
	"github.com/homielab/homie/internal/database"
	"golang.org/x/oauth2"
)

// Provider handles both login paths: the OIDC auth-code flow for federated
// identities and the local operator form. Either can be disabled in config.
type Provider struct {
	cfg *config.Config
	db  *database.Client

	oidcProvider *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauthConfig  *oauth2.Config
}

// New creates the auth provider. OIDC discovery runs at startup so a
// misconfigured issuer fails the process instead of the first login.
func New(ctx context.Context, cfg *config.Config, db *database.Client) (*Provider, error) {
	p := Provider{
		cfg: cfg,
		db:  db,
	}

	if cfg.Auth.OIDC != nil && cfg.Auth.OIDC.Enabled {
		var err error
		p.oidcProvider, err = oidc.NewProvider(ctx, cfg.Auth.OIDC.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}

		p.oauthConfig = &oauth2.Config{
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
			RedirectURL:  cfg.Auth.OIDC.RedirectURL,
			Endpoint:     p.oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}

		p.verifier = p.oidcProvider.Verifier(&oidc.Config{ClientID: cfg.Auth.OIDC.ClientID})
	}

	return &p, nil
}

// OIDCEnabled reports whether the federated login path is available.
func (p *Provider) OIDCEnabled() bool {
	return p.oauthConfig != nil
}

// LocalEnabled reports whether the local login form is available.
func (p *Provider) LocalEnabled() bool {
	return p.cfg.Auth.Local != nil && p.cfg.Auth.Local.Enabled
}
