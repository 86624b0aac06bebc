// Package auth obtains and caches Microsoft Graph bearer tokens with the
// OAuth2 device-code flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"mailwatch/internal/observability"
)

const DefaultAuthority = "https://login.microsoftonline.com"

var DefaultScopes = []string{
	"Mail.Read",
	"Mail.ReadWrite",
	"Calendars.Read",
	"User.ReadBasic.All",
	"Presence.Read.All",
	"offline_access",
}

// ErrNotLoggedIn means no cached token exists and a device-code login is
// required.
var ErrNotLoggedIn = errors.New("auth: not logged in")

type Config struct {
	TenantID  string
	ClientID  string
	Scopes    []string
	Authority string
}

// OAuth2 returns the public-client configuration for the tenant's v2.0
// endpoints.
func (c Config) OAuth2() *oauth2.Config {
	authority := strings.TrimRight(c.Authority, "/")
	if authority == "" {
		authority = DefaultAuthority
	}
	tenant := c.TenantID
	if tenant == "" {
		tenant = "common"
	}
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	base := fmt.Sprintf("%s/%s/oauth2/v2.0", authority, tenant)
	return &oauth2.Config{
		ClientID: c.ClientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:       base + "/authorize",
			TokenURL:      base + "/token",
			DeviceAuthURL: base + "/devicecode",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Prompt shows the user where to enter the device code.
type Prompt func(da *oauth2.DeviceAuthResponse)

// WritePrompt prints the verification instructions to w.
func WritePrompt(w io.Writer) Prompt {
	return func(da *oauth2.DeviceAuthResponse) {
		uri := da.VerificationURI
		if da.VerificationURIComplete != "" {
			uri = da.VerificationURIComplete
		}
		fmt.Fprintf(w, "To sign in, open %s and enter the code %s\n", uri, da.UserCode)
	}
}

// Login runs the device-code flow and stores the resulting token.
func Login(ctx context.Context, cfg Config, store *Store, prompt Prompt, hc *http.Client) (*oauth2.Token, error) {
	if hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	oc := cfg.OAuth2()
	da, err := oc.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device authorization: %w", err)
	}
	if prompt != nil {
		prompt(da)
	}
	tok, err := oc.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device token: %w", err)
	}
	if err := store.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// TokenSource returns a refreshing source seeded from the cache. Refreshed
// tokens are written back to the store.
func TokenSource(ctx context.Context, cfg Config, store *Store, logger *slog.Logger) (oauth2.TokenSource, error) {
	tok, err := store.Load()
	if err != nil {
		return nil, err
	}
	src := cfg.OAuth2().TokenSource(ctx, tok)
	return &persistingSource{
		src:   src,
		store: store,
		last:  tok.AccessToken,
		log:   observability.Component(logger, "auth"),
	}, nil
}

// Static wraps a fixed access token, for GRAPH_ACCESS_TOKEN.
func Static(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

type persistingSource struct {
	mu    sync.Mutex
	src   oauth2.TokenSource
	store *Store
	last  string
	log   *observability.Logger
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := p.store.Save(tok); err != nil {
			p.log.Warn(context.Background(), "could not persist refreshed token", "error", err.Error())
		} else {
			p.log.Info(context.Background(), "token refreshed", "expiry", tok.Expiry.Format("2006-01-02 15:04:05"))
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}
