package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"musical-catalog/config"
	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

// GoogleClaims are the ID token claims used to find or create an account.
type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Google runs the OAuth2 code flow against Google and verifies the returned
// ID token with OIDC.
type Google struct {
	oauth *oauth2.Config

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func NewGoogle(cfg config.Google) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for verified ID token claims.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleClaims, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Unauthenticated("Failed to exchange code")
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperr.Unauthenticated("Missing id_token")
	}

	verifier, err := g.idTokenVerifier(ctx)
	if err != nil {
		return nil, apperr.Internal("init google oidc provider", err)
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid id_token")
	}

	var claims GoogleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperr.Unauthenticated("Failed to decode token claims")
	}
	if claims.Sub == "" || claims.Email == "" {
		return nil, apperr.Unauthenticated("Google account has no email")
	}
	return &claims, nil
}

// idTokenVerifier discovers the provider on first use and caches it.
func (g *Google) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.verifier != nil {
		return g.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, err
	}
	g.verifier = provider.Verifier(&oidc.Config{ClientID: g.oauth.ClientID})
	return g.verifier, nil
}

// RandomState returns an unguessable OAuth2 state value.
func RandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("random state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GoogleSignIn finds the account linked to the Google subject, links an
// existing account whose username is the verified email, or creates a new
// USER account.
func (a *Accounts) GoogleSignIn(ctx context.Context, gc GoogleClaims) (*Session, error) {
	u, err := a.store.FindByGoogleSub(ctx, gc.Sub)
	if err == nil {
		return a.session(u)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	u, err = a.store.FindByUsername(ctx, gc.Email)
	switch {
	case err == nil:
		if u.GoogleSub != nil || !gc.EmailVerified {
			return nil, apperr.Conflict("Username already exists")
		}
		if err := a.store.LinkGoogle(ctx, u.ID, gc.Sub); err != nil {
			return nil, err
		}
		sub := gc.Sub
		u.GoogleSub = &sub
		a.log.Info(ctx, "google account linked", "user_id", u.ID)
		return a.session(u)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	sub := gc.Sub
	u = &users.User{
		Username:     gc.Email,
		AuthProvider: users.ProviderGoogle,
		GoogleSub:    &sub,
		Role:         users.RoleUser,
	}
	if err := a.store.Create(ctx, u); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "user signed up with google", "user_id", u.ID)
	return a.session(u)
}
