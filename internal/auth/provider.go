package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// ErrAuthFailure is returned when no bearer token can be produced.
var ErrAuthFailure = errors.New("auth failure")

// TokenProvider supplies the bearer token attached to backend requests. An
// empty token with a nil error means the caller is not authenticated.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Anonymous never authenticates.
type Anonymous struct{}

func (Anonymous) Token(context.Context) (string, error) {
	return "", nil
}

// Static returns a fixed token, typically configured for service accounts.
type Static string

func (s Static) Token(context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: static token is empty", ErrAuthFailure)
	}
	return string(s), nil
}

// SourceProvider adapts an oauth2.TokenSource. Expired tokens are refreshed
// by the source; the latest token is kept so callers can persist it.
type SourceProvider struct {
	mu      sync.Mutex
	src     oauth2.TokenSource
	current *oauth2.Token
}

func FromTokenSource(src oauth2.TokenSource) *SourceProvider {
	return &SourceProvider{src: src}
}

func (p *SourceProvider) Token(context.Context) (string, error) {
	tok, err := p.src.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: access token is empty", ErrAuthFailure)
	}

	p.mu.Lock()
	p.current = tok
	p.mu.Unlock()

	return tok.AccessToken, nil
}

// Current returns the token last handed out, or nil.
func (p *SourceProvider) Current() *oauth2.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
