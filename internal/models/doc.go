// Package models defines the passive data transfer objects exchanged with the Spotify Web API.
//
// Request bodies:
//   - [TransferPlaybackRequest] : move playback to a device
//   - [StartResumePlaybackRequest] : start or resume playback, optionally of a context or track list
//
// Response bodies:
//   - [Devices] / [Device] : Spotify Connect devices visible to the user
//   - [CurrentlyPlayingContext] : player state, absent (204) when nothing is playing
//   - [Paging] : generic page of items, used for playlist tracks
//   - [PrivateUser] : the authenticated user's profile
//
// Types carry no behavior beyond small accessors used for display.
//
// See https://developer.spotify.com/documentation/web-api/reference/
package models
