package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var defaultScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// Profile is the signed-in user as seen by the dashboard.
type Profile struct {
	Subject string `json:"sub,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Authenticator drives the browser login against an OIDC issuer and refreshes
// session tokens silently.
type Authenticator struct {
	opts       Options
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	endSession string
}

func NewAuthenticator(ctx context.Context, opts Options) (*Authenticator, error) {
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, errors.New("oidc: client id is required")
	}
	if strings.TrimSpace(opts.RedirectURL) == "" {
		return nil, errors.New("oidc: redirect url is required")
	}

	provider, err := discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc: decode provider metadata: %w", err)
	}

	return &Authenticator{
		opts: opts,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  opts.RedirectURL,
			Scopes:       scopes,
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: opts.ClientID}),
		endSession: claims.EndSessionEndpoint,
	}, nil
}

// NewState returns a random value for the state and nonce parameters.
func NewState() string {
	return uuid.NewString()
}

func (a *Authenticator) LoginURL(state, nonce string) string {
	authOpts := []oauth2.AuthCodeOption{oidc.Nonce(nonce)}
	if a.opts.Audience != "" {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("audience", a.opts.Audience))
	}
	return a.oauth.AuthCodeURL(state, authOpts...)
}

// Exchange trades the authorization code for tokens. When the issuer returns
// an ID token it is verified against nonce and the profile is read from it.
func (a *Authenticator) Exchange(ctx context.Context, code, nonce string) (*oauth2.Token, Profile, error) {
	if code == "" {
		return nil, Profile{}, fmt.Errorf("%w: authorization code missing", ErrAuthFailure)
	}

	ctx = a.opts.clientContext(ctx)

	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, Profile{}, fmt.Errorf("%w: exchange failed: %v", ErrAuthFailure, err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		return tok, Profile{}, nil
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, Profile{}, fmt.Errorf("%w: verify id token: %v", ErrAuthFailure, err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return nil, Profile{}, fmt.Errorf("%w: nonce mismatch", ErrAuthFailure)
	}

	profile := Profile{Subject: idToken.Subject}
	if err := idToken.Claims(&profile); err != nil {
		return nil, Profile{}, fmt.Errorf("%w: decode claims: %v", ErrAuthFailure, err)
	}

	return tok, profile, nil
}

// Session returns a provider for a stored session token, refreshing it with
// the refresh token once it expires.
func (a *Authenticator) Session(tok *oauth2.Token) *SourceProvider {
	ctx := a.opts.clientContext(context.Background())
	return FromTokenSource(a.oauth.TokenSource(ctx, tok))
}

// LogoutURL ends the session at the issuer and sends the browser back to
// returnTo. Issuers without an end_session_endpoint get the /v2/logout form.
func (a *Authenticator) LogoutURL(returnTo string) string {
	q := url.Values{}
	q.Set("client_id", a.opts.ClientID)

	if a.endSession != "" {
		q.Set("post_logout_redirect_uri", returnTo)
		return a.endSession + "?" + q.Encode()
	}

	q.Set("returnTo", returnTo)
	return strings.TrimRight(a.opts.Issuer, "/") + "/v2/logout?" + q.Encode()
}

func EncodeToken(tok *oauth2.Token) (string, error) {
	raw, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return string(raw), nil
}

func DecodeToken(raw string) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: stored token has no access token", ErrAuthFailure)
	}
	return &tok, nil
}
