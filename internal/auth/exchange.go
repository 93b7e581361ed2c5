package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/sptty/internal/shared"
	"golang.org/x/oauth2"
)

// AccessTokenRecord is the token endpoint response as persisted in the cache.
type AccessTokenRecord struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Exchanger talks to the token endpoint.
type Exchanger struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewExchanger creates an Exchanger for cfg. A nil httpClient uses [http.DefaultClient].
//
// Successful token endpoint responses are always decoded as JSON, whatever their Content-Type.
func NewExchanger(cfg *shared.AuthConfig, httpClient *http.Client) *Exchanger {
	config := oauthConfig(cfg)
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := *httpClient
	client.Transport = &jsonTokenTransport{base: httpClient.Transport, tokenURL: config.Endpoint.TokenURL}
	return &Exchanger{config: config, httpClient: &client}
}

func (e *Exchanger) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

// jsonTokenTransport marks 2xx token endpoint responses as JSON so oauth2 never
// falls back to form decoding.
type jsonTokenTransport struct {
	base     http.RoundTripper
	tokenURL string
}

func (t *jsonTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && t.matches(req.URL) {
		if resp.Header == nil {
			resp.Header = make(http.Header)
		}
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp, nil
}

func (t *jsonTokenTransport) matches(u *url.URL) bool {
	target, err := url.Parse(t.tokenURL)
	if err != nil {
		return false
	}
	return u.Scheme == target.Scheme && u.Host == target.Host && u.Path == target.Path
}

// ExchangeCode trades an authorization code and its verifier for a token record.
func (e *Exchanger) ExchangeCode(ctx context.Context, verifier, code string) (*AccessTokenRecord, error) {
	tok, err := e.config.Exchange(e.context(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, mapTokenError(err)
	}
	return recordFromToken(tok), nil
}

// Refresh obtains a new access token using the refresh token in rec.
//
// When the response omits refresh_token the previous one is kept.
func (e *Exchanger) Refresh(ctx context.Context, rec *AccessTokenRecord) (*AccessTokenRecord, error) {
	if rec == nil || rec.RefreshToken == "" {
		return nil, fmt.Errorf("%w: cached token has no refresh token", shared.ErrNotAuthenticated)
	}

	src := e.config.TokenSource(e.context(ctx), &oauth2.Token{RefreshToken: rec.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, mapTokenError(err)
	}

	out := recordFromToken(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = rec.RefreshToken
	}
	return out, nil
}

func mapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &TokenExchangeError{StatusCode: retrieveErr.Response.StatusCode, Body: string(retrieveErr.Body)}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	return fmt.Errorf("%w: %v", shared.ErrMalformedToken, err)
}

func recordFromToken(tok *oauth2.Token) *AccessTokenRecord {
	rec := &AccessTokenRecord{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}

	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}

	switch v := tok.Extra("expires_in").(type) {
	case float64:
		rec.ExpiresIn = int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			rec.ExpiresIn = n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.ExpiresIn = n
		}
	}

	return rec
}
