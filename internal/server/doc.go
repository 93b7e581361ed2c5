// Package server receives the OAuth2 authorization redirect on a loopback address.
//
// # Callback Server
//
// [CallbackServer] binds the host and port of the configured redirect URI, accepts exactly one connection and
// serves HTTP/1.1 requests on that connection only. It is a two-state object (listening, then closed) and
// parses nothing beyond the request line and query string it needs.
//
// For each request:
//   - code and state present, state matches: the code is handed to the waiting caller and the browser gets 200 "ok"
//   - code and state present, state differs: the attempt fails with [shared.ErrStateMismatch]
//   - anything else: 204 No Content, keep waiting
//
// [CallbackServer.Receive] races the connection against the handoff. If the connection ends before a code was
// delivered the result is [shared.ErrServerClosed]. The context bounds the wait; an abandoned browser flow ends
// with [shared.ErrRedirectTimeout] once it expires.
//
// # Handoff
//
// The code travels through a deliver-once slot. The first request that claims it wins and later claims are
// silently ignored, so replays on the same connection never disturb a completed flow.
package server
