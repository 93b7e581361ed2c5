package models

import (
	"strings"
	"time"
)

// TransferPlaybackRequest is the body of PUT /v1/me/player.
type TransferPlaybackRequest struct {
	DeviceIDs []string `json:"device_ids"`
	Play      bool     `json:"play"`
}

// StartResumePlaybackRequest is the body of PUT /v1/me/player/play. The zero value resumes.
type StartResumePlaybackRequest struct {
	ContextURI string   `json:"context_uri,omitempty"`
	URIs       []string `json:"uris,omitempty"`
	PositionMS int64    `json:"position_ms,omitempty"`
}

// IsEmpty reports whether the request would simply resume playback.
func (r StartResumePlaybackRequest) IsEmpty() bool {
	return r.ContextURI == "" && len(r.URIs) == 0 && r.PositionMS == 0
}

// Device is a Spotify Connect device.
type Device struct {
	ID               string `json:"id"`
	IsActive         bool   `json:"is_active"`
	IsPrivateSession bool   `json:"is_private_session"`
	IsRestricted     bool   `json:"is_restricted"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	VolumePercent    int    `json:"volume_percent"`
}

// Devices is the response of GET /v1/me/player/devices.
type Devices struct {
	Devices []Device `json:"devices"`
}

// Disallows lists player actions that are currently not permitted.
type Disallows struct {
	InterruptingPlayback  bool `json:"interrupting_playback,omitempty"`
	Pausing               bool `json:"pausing,omitempty"`
	Resuming              bool `json:"resuming,omitempty"`
	Seeking               bool `json:"seeking,omitempty"`
	SkippingNext          bool `json:"skipping_next,omitempty"`
	SkippingPrev          bool `json:"skipping_prev,omitempty"`
	TogglingRepeatContext bool `json:"toggling_repeat_context,omitempty"`
	TogglingRepeatTrack   bool `json:"toggling_repeat_track,omitempty"`
	TogglingShuffle       bool `json:"toggling_shuffle,omitempty"`
	TransferringPlayback  bool `json:"transferring_playback,omitempty"`
}

type ExternalURL struct {
	Spotify string `json:"spotify"`
}

// Context is the playlist, album, artist or show playback was started from.
type Context struct {
	ExternalURLs ExternalURL `json:"external_urls"`
	Href         string      `json:"href"`
	Type         string      `json:"type"`
	URI          string      `json:"uri"`
}

// ID returns the last segment of the context URI (spotify:playlist:<id>).
func (c Context) ID() string {
	if i := strings.LastIndexByte(c.URI, ':'); i >= 0 {
		return c.URI[i+1:]
	}
	return c.URI
}

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

type SimplifiedArtist struct {
	ExternalURLs ExternalURL `json:"external_urls"`
	Href         string      `json:"href"`
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	URI          string      `json:"uri"`
}

type SimplifiedAlbum struct {
	AlbumType            string             `json:"album_type"`
	Artists              []SimplifiedArtist `json:"artists"`
	ExternalURLs         ExternalURL        `json:"external_urls"`
	Href                 string             `json:"href"`
	ID                   string             `json:"id"`
	Images               []Image            `json:"images"`
	Name                 string             `json:"name"`
	ReleaseDate          string             `json:"release_date"`
	ReleaseDatePrecision string             `json:"release_date_precision"`
	TotalTracks          int                `json:"total_tracks"`
	Type                 string             `json:"type"`
	URI                  string             `json:"uri"`
}

type ExternalID struct {
	ISRC string `json:"isrc,omitempty"`
	EAN  string `json:"ean,omitempty"`
	UPC  string `json:"upc,omitempty"`
}

// Track is a full track object. Episodes decode into the same shape with Type "episode".
type Track struct {
	Album        *SimplifiedAlbum   `json:"album,omitempty"`
	Artists      []SimplifiedArtist `json:"artists"`
	DiscNumber   int                `json:"disc_number"`
	DurationMS   int64              `json:"duration_ms"`
	Explicit     bool               `json:"explicit"`
	ExternalIDs  *ExternalID        `json:"external_ids,omitempty"`
	ExternalURLs ExternalURL        `json:"external_urls"`
	Href         string             `json:"href"`
	ID           string             `json:"id"`
	IsLocal      bool               `json:"is_local"`
	Name         string             `json:"name"`
	Popularity   int                `json:"popularity,omitempty"`
	TrackNumber  int                `json:"track_number"`
	Type         string             `json:"type"`
	URI          string             `json:"uri"`
}

// ArtistNames joins the artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// AlbumName returns the album name, or "" for tracks without one.
func (t Track) AlbumName() string {
	if t.Album == nil {
		return ""
	}
	return t.Album.Name
}

func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// CurrentlyPlayingContext is the response of GET /v1/me/player.
type CurrentlyPlayingContext struct {
	Actions              Disallows `json:"actions"`
	Context              *Context  `json:"context"`
	CurrentlyPlayingType string    `json:"currently_playing_type"`
	Device               Device    `json:"device"`
	IsPlaying            bool      `json:"is_playing"`
	Item                 *Track    `json:"item"`
	ProgressMS           int64     `json:"progress_ms"`
	RepeatState          string    `json:"repeat_state"`
	ShuffleState         bool      `json:"shuffle_state"`
	Timestamp            int64     `json:"timestamp"`
}

type Followers struct {
	Href  string `json:"href,omitempty"`
	Total int    `json:"total"`
}

type PublicUser struct {
	DisplayName  string      `json:"display_name"`
	ExternalURLs ExternalURL `json:"external_urls"`
	Href         string      `json:"href"`
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	URI          string      `json:"uri"`
}

// PlaylistTrack is one entry of a playlist. Track is nil for removed or unavailable items.
type PlaylistTrack struct {
	AddedAt string      `json:"added_at"`
	AddedBy *PublicUser `json:"added_by,omitempty"`
	IsLocal bool        `json:"is_local"`
	Track   *Track      `json:"track"`
}

// Paging is a page of items with links to its neighbours.
type Paging[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
	Total    int     `json:"total"`
}

type ExplicitContentSettings struct {
	FilterEnabled bool `json:"filter_enabled"`
	FilterLocked  bool `json:"filter_locked"`
}

// PrivateUser is the response of GET /v1/me.
type PrivateUser struct {
	Country         string                  `json:"country"`
	DisplayName     string                  `json:"display_name"`
	Email           string                  `json:"email"`
	ExplicitContent ExplicitContentSettings `json:"explicit_content"`
	ExternalURLs    ExternalURL             `json:"external_urls"`
	Followers       *Followers              `json:"followers,omitempty"`
	Href            string                  `json:"href"`
	ID              string                  `json:"id"`
	Images          []Image                 `json:"images"`
	Product         string                  `json:"product"`
	Type            string                  `json:"type"`
	URI             string                  `json:"uri"`
}
