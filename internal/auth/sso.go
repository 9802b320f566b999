package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/askelund/adminpanel/internal/config"
)

// SSOIdentity is the identity an SSO provider resolved for a callback. The
// email is matched against an existing backend user, SSO never creates one.
type SSOIdentity struct {
	Subject string
	Email   string
	Name    string
}

// SSOProvider abstracts the external identity provider used for single
// sign-on.
type SSOProvider interface {
	// AuthURL returns the provider URL to redirect the browser to. The
	// state value is echoed back on the callback and must be verified.
	AuthURL(state string) string

	// Callback exchanges the authorization code for a verified identity.
	Callback(ctx context.Context, code string) (*SSOIdentity, error)
}

// OIDCProvider implements SSOProvider on top of OpenID Connect discovery.
type OIDCProvider struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewOIDCProvider discovers the issuer's endpoints and builds a provider.
// Returns nil without error when SSO is not configured.
func NewOIDCProvider(ctx context.Context, cfg *config.SSOSettings) (*OIDCProvider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OIDCProvider{
		provider:     provider,
		verifier:     verifier,
		oauth2Config: oauth2Config,
	}, nil
}

// AuthURL returns the authorization endpoint URL carrying the state value.
func (p *OIDCProvider) AuthURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// Callback exchanges the authorization code for tokens and verifies the ID
// token before trusting any of its claims.
func (p *OIDCProvider) Callback(ctx context.Context, code string) (*SSOIdentity, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("missing id_token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("missing email in OIDC token")
	}

	return &SSOIdentity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
