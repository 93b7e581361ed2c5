package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/server"
	"github.com/desertthunder/sptty/internal/shared"
)

// URLPresenter shows the authorization URL to the user.
type URLPresenter func(authURL string)

// PrintURL returns a presenter that writes the URL to w.
func PrintURL(w io.Writer) URLPresenter {
	return func(authURL string) {
		fmt.Fprintf(w, "Open this URL in your browser to authorize sptty:\n\n  %s\n\n", authURL)
	}
}

// Options configures an [Authenticator].
type Options struct {
	Config     *shared.AuthConfig
	Cache      *TokenCache
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Authenticator obtains access tokens, interactively when nothing is cached.
type Authenticator struct {
	config    *shared.AuthConfig
	cache     *TokenCache
	exchanger *Exchanger
	logger    *log.Logger
}

// NewAuthenticator creates an Authenticator. Config and Cache are required.
func NewAuthenticator(opts Options) (*Authenticator, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: missing auth config", shared.ErrConfig)
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("%w: missing token cache", shared.ErrConfig)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Authenticator{
		config:    opts.Config,
		cache:     opts.Cache,
		exchanger: NewExchanger(opts.Config, opts.HTTPClient),
		logger:    logger,
	}, nil
}

// Authenticate always runs the interactive flow and stores the resulting record.
func (a *Authenticator) Authenticate(ctx context.Context, present URLPresenter) (*AccessTokenRecord, error) {
	rec, err := a.login(ctx, present)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Store(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetToken returns a usable access token.
//
// A cached record is refreshed and stored exactly once. Without a cached record the interactive flow runs once.
func (a *Authenticator) GetToken(ctx context.Context, present URLPresenter) (string, error) {
	var refreshed *AccessTokenRecord
	err := a.cache.Update(func(rec *AccessTokenRecord) (*AccessTokenRecord, error) {
		if rec == nil {
			return nil, nil
		}

		a.logger.Debug("refreshing cached token", "path", a.cache.Path())
		next, err := a.exchanger.Refresh(ctx, rec)
		if err != nil {
			return nil, err
		}
		refreshed = next
		return next, nil
	})
	if err != nil {
		return "", err
	}
	if refreshed != nil {
		return refreshed.AccessToken, nil
	}

	a.logger.Debug("no cached token", "path", a.cache.Path())
	rec, err := a.Authenticate(ctx, present)
	if err != nil {
		return "", err
	}
	return rec.AccessToken, nil
}

// Status returns the cached record, or nil when not authenticated.
func (a *Authenticator) Status() (*AccessTokenRecord, error) {
	return a.cache.Load()
}

// Logout forgets the cached record.
func (a *Authenticator) Logout() error {
	return a.cache.Clear()
}

// login runs one authorization attempt: verifier, URL, redirect, exchange.
//
// The listener is bound before the URL is presented so an immediate redirect cannot miss it.
func (a *Authenticator) login(ctx context.Context, present URLPresenter) (*AccessTokenRecord, error) {
	logger := shared.WithLogger(a.logger, "attempt", shared.GenerateID())

	verifier, err := GenerateVerifier()
	if err != nil {
		return nil, err
	}

	authURL, state, err := AuthorizationURL(a.config, DeriveChallenge(verifier))
	if err != nil {
		return nil, err
	}

	srv, err := server.Listen(a.config.RedirectURI, state, logger)
	if err != nil {
		return nil, err
	}
	defer srv.Close()

	logger.Debug("awaiting user authorization")
	if present == nil {
		present = PrintURL(os.Stderr)
	}
	present(authURL)

	waitCtx := ctx
	if timeout := a.config.RedirectTimeout; timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug("awaiting redirect", "addr", srv.Addr(), "timeout", a.config.RedirectTimeout)
	code, err := srv.Receive(waitCtx)
	if err != nil {
		logger.Debug("redirect failed", "error", err)
		return nil, err
	}

	logger.Debug("exchanging authorization code")
	rec, err := a.exchanger.ExchangeCode(ctx, verifier, code)
	if err != nil {
		return nil, err
	}

	logger.Debug("authenticated", "scope", rec.Scope, "expires_in", time.Duration(rec.ExpiresIn)*time.Second)
	return rec, nil
}
