// Package services talks to the Spotify Web API on behalf of an authenticated user.
//
// # REST Client
//
// [Client] sends Bearer-authenticated requests relative to a configured origin. Request and response bodies
// go through two small interfaces:
//   - [Input] : [Empty] sends nothing, [JSON] sends an encoded value
//   - [Output] : [Empty] ignores the body, [Into] decodes JSON, [MaybeEmpty] tolerates 204 No Content, [Raw] keeps bytes
//
// Only GET, POST and PUT are supported. Requests are never retried.
//
// # Player API
//
// [SpotifyService] wraps the player endpoints: devices, transfer, play, pause, next, previous and the
// current playback context. Playlist tracks are paged with a [rate.Limiter] so long playlists do not trip the
// provider's rate limits.
//
// # Error Handling
//
//   - [APIError] : non-2xx response, matches [shared.ErrAPIRequest], body kept verbatim
//   - [shared.ErrNetwork] : the request never got a response
//   - [shared.ErrInvalidArgument] : unsupported method or malformed path
//   - [shared.ErrNoMatchingDevice] : no device matched a name prefix or id
//   - [shared.ErrNothingPlaying] : the player endpoint answered 204
package services
