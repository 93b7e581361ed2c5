// Package auth implements the OAuth2 Authorization Code flow with PKCE for a public client.
//
// # Flow
//
// Each attempt generates a fresh verifier and state, builds the authorization URL and hands it to a
// [URLPresenter]. A one-shot loopback listener ([server.CallbackServer]) waits for the browser redirect,
// checks the state and hands the code back. The code and the verifier from the same attempt are then
// exchanged for an [AccessTokenRecord], which is written to the [TokenCache].
//
// # Tokens
//
// [Authenticator.GetToken] refreshes a cached record on every call and stores the result. There is no local
// expiry bookkeeping: the record carries expires_in as the provider sent it. A failed refresh is returned to
// the caller; it never falls back to an interactive login.
//
// # Errors
//
//   - [shared.ErrStateMismatch] : redirect carried a state other than the one sent
//   - [shared.ErrServerClosed] : the redirect connection ended before a code arrived
//   - [shared.ErrRedirectTimeout] : no redirect within the configured deadline
//   - [TokenExchangeError] : token endpoint answered non-2xx, body kept verbatim
//   - [CacheError] : cache file could not be read, parsed or written
package auth
