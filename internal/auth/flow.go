package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/drivebox/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// googleRevokeURL is the provider endpoint that invalidates an issued token.
const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

// defaultExchangeTimeout bounds the code-for-token exchange so a hung
// provider cannot pin a callback request forever.
const defaultExchangeTimeout = 30 * time.Second

// defaultScopes is requested when the configuration names none.
var defaultScopes = []string{"https://www.googleapis.com/auth/drive.file"}

// Flow drives the OAuth2 authorization-code flow against Google and owns
// all writes to the credential [Store].
type Flow struct {
	config          *oauth2.Config
	store           Store
	logger          *log.Logger
	httpClient      *http.Client
	revokeURL       string
	exchangeTimeout time.Duration
}

// FlowOpts contains configuration options for creating a Flow.
type FlowOpts struct {
	Google          shared.GoogleConfig
	Store           Store
	Logger          *log.Logger
	HTTPClient      *http.Client  // used for revocation; defaults to http.DefaultClient
	RevokeURL       string        // defaults to Google's revocation endpoint
	ExchangeTimeout time.Duration // defaults to 30s
}

// NewFlow creates a Flow from Google client credentials.
func NewFlow(opts FlowOpts) (*Flow, error) {
	if opts.Google.ClientID == "" || opts.Google.ClientSecret == "" {
		return nil, fmt.Errorf("%w: google client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: credential store is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RevokeURL == "" {
		opts.RevokeURL = googleRevokeURL
	}
	if opts.ExchangeTimeout <= 0 {
		opts.ExchangeTimeout = defaultExchangeTimeout
	}

	scopes := opts.Google.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	config := &oauth2.Config{
		ClientID:     opts.Google.ClientID,
		ClientSecret: opts.Google.ClientSecret,
		RedirectURL:  opts.Google.RedirectURI,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}

	return &Flow{
		config:          config,
		store:           opts.Store,
		logger:          opts.Logger,
		httpClient:      opts.HTTPClient,
		revokeURL:       opts.RevokeURL,
		exchangeTimeout: opts.ExchangeTimeout,
	}, nil
}

// Config exposes the underlying OAuth2 config for building authorized clients.
func (f *Flow) Config() *oauth2.Config {
	return f.config
}

// Store returns the credential store this flow writes to.
func (f *Flow) Store() Store {
	return f.store
}

// AuthCodeURL builds the provider consent URL for the given state token.
//
// Offline access is always requested so a refresh token is issued, and the
// consent prompt is forced so a refresh token is reissued even for a user
// who consented before.
func (f *Flow) AuthCodeURL(state string) string {
	return f.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades a one-time authorization code for a grant and stores it.
//
// On any failure the store is left untouched. The exchanged grant itself is
// never logged; only non-secret metadata appears at debug level.
func (f *Flow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", shared.ErrAuthFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, f.exchangeTimeout)
	defer cancel()

	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: token exchange timed out", shared.ErrTimeout)
		}
		return nil, fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)
	}

	f.store.SetToken(token)
	f.logger.Debug("authorization grant stored",
		"expires", token.Expiry.Format(time.RFC3339),
		"has_refresh_token", token.RefreshToken != "")

	return token, nil
}

// Revoke invalidates the current grant.
//
// Remote revocation is best-effort: the local slot is cleared even when the
// provider call fails, so the service always returns to the unauthenticated
// state. Returns an error only when there was no grant to revoke.
func (f *Flow) Revoke(ctx context.Context) error {
	token, err := f.store.Token()
	if err != nil {
		return err
	}

	defer f.store.Clear()

	revoke := token.RefreshToken
	if revoke == "" {
		revoke = token.AccessToken
	}

	form := url.Values{"token": {revoke}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		f.logger.Warn("building revocation request failed", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("remote token revocation failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("provider rejected token revocation", "status", resp.StatusCode)
	}

	return nil
}
