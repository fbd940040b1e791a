package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 10 * time.Second

type Options struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	Audience     string
	Scopes       []string
	// RedirectURL is the login callback; unused by client credentials.
	RedirectURL string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

func (o Options) clientContext(ctx context.Context) context.Context {
	if o.HTTPClient != nil {
		return oidc.ClientContext(ctx, o.HTTPClient)
	}
	return ctx
}

func discover(ctx context.Context, opts Options) (*oidc.Provider, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(opts.clientContext(ctx), timeout)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, opts.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}
	return provider, nil
}

// NewClientCredentials discovers the issuer's token endpoint and returns a
// provider minting machine tokens for the configured audience.
func NewClientCredentials(ctx context.Context, opts Options) (*SourceProvider, error) {
	provider, err := discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	cfg := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     provider.Endpoint().TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if opts.Audience != "" {
		cfg.EndpointParams = url.Values{"audience": {opts.Audience}}
	}

	// The token source outlives ctx, so it only inherits the HTTP client.
	return FromTokenSource(cfg.TokenSource(opts.clientContext(context.Background()))), nil
}
