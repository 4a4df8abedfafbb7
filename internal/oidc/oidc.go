// Package oidc builds the authorization redirect for the external login provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ErrNotConfigured is returned when neither an issuer nor an authorize URL is set.
var ErrNotConfigured = errors.New("oauth provider not configured")

type Config struct {
	ClientID     string
	IssuerURL    string
	AuthorizeURL string
	RedirectURL  string
	Scopes       []string
}

// Provider builds authorize URLs for one OAuth client.
type Provider struct {
	oauth *oauth2.Config
}

// NewProvider discovers the provider endpoints from IssuerURL when set, and
// otherwise uses AuthorizeURL as is.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || (cfg.IssuerURL == "" && cfg.AuthorizeURL == "") {
		return nil, ErrNotConfigured
	}
	var endpoint oauth2.Endpoint
	if cfg.IssuerURL != "" {
		p, err := oidc.NewProvider(ctx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
		}
		endpoint = p.Endpoint()
	} else {
		endpoint = oauth2.Endpoint{AuthURL: cfg.AuthorizeURL}
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}
	return &Provider{oauth: &oauth2.Config{
		ClientID:    cfg.ClientID,
		Endpoint:    endpoint,
		RedirectURL: cfg.RedirectURL,
		Scopes:      scopes,
	}}, nil
}

// AuthCodeURL returns the provider URL the browser is redirected to.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// NewState returns a random URL-safe state value.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
