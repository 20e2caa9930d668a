package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const ProviderGoogle = "google"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// GoogleProvider runs the authorization-code flow against Google and loads
// the user's profile.
type GoogleProvider struct {
	oauth *oauth2.Config
	// apiEndpoint overrides the userinfo API base URL in tests.
	apiEndpoint string
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the callback code for tokens and fetches the profile.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (OAuthProfile, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google exchange: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(g.oauth.TokenSource(ctx, tok))}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}
	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	return &GoogleProfile{info: info, token: tok}, nil
}

// GoogleProfile adapts Google's userinfo and token to OAuthProfile.
type GoogleProfile struct {
	info  *goauth2.Userinfo
	token *oauth2.Token
}

func NewGoogleProfile(info *goauth2.Userinfo, token *oauth2.Token) *GoogleProfile {
	return &GoogleProfile{info: info, token: token}
}

func (p *GoogleProfile) Provider() string   { return ProviderGoogle }
func (p *GoogleProfile) ExternalID() string { return p.info.Id }
func (p *GoogleProfile) Email() string      { return p.info.Email }
func (p *GoogleProfile) Name() string       { return p.info.Name }
func (p *GoogleProfile) Picture() string    { return p.info.Picture }

func (p *GoogleProfile) Tokens() OAuthTokens {
	if p.token == nil {
		return OAuthTokens{}
	}
	t := OAuthTokens{
		AccessToken:  p.token.AccessToken,
		RefreshToken: p.token.RefreshToken,
	}
	if id, ok := p.token.Extra("id_token").(string); ok {
		t.IDToken = id
	}
	if scope, ok := p.token.Extra("scope").(string); ok {
		t.Scope = scope
	}
	if !p.token.Expiry.IsZero() {
		exp := p.token.Expiry.UTC().Truncate(time.Second)
		t.Expiry = &exp
	}
	return t
}
