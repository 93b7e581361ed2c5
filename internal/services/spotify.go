// Spotify player API built on [Client]
//
// Endpoint reference: https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/sptty/internal/models"
	"github.com/desertthunder/sptty/internal/shared"
	"golang.org/x/time/rate"
)

const (
	pathDevices   = "/v1/me/player/devices"
	pathPlayer    = "/v1/me/player"
	pathPlay      = "/v1/me/player/play"
	pathPause     = "/v1/me/player/pause"
	pathNext      = "/v1/me/player/next"
	pathPrevious  = "/v1/me/player/previous"
	pathMe        = "/v1/me"
	playlistLimit = 100

	// DefaultPageRate is the number of page requests per second when walking a playlist.
	DefaultPageRate = 5.0
)

// SpotifyService controls playback and lists devices and tracks for the authenticated user.
type SpotifyService struct {
	client  *Client
	limiter *rate.Limiter
}

// NewSpotifyService creates a service using client for every request.
func NewSpotifyService(client *Client) *SpotifyService {
	return &SpotifyService{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(DefaultPageRate), 1),
	}
}

// SetPageRate changes how many playlist pages are requested per second.
func (s *SpotifyService) SetPageRate(perSecond float64) {
	if perSecond <= 0 {
		s.limiter.SetLimit(rate.Inf)
		return
	}
	s.limiter.SetLimit(rate.Limit(perSecond))
}

// Devices lists the user's Spotify Connect devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var out models.Devices
	if err := s.client.Request(ctx, pathDevices, http.MethodGet, Empty{}, Into(&out)); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// FindDevice returns the first device whose name starts with prefix, ignoring case.
func (s *SpotifyService) FindDevice(ctx context.Context, prefix string) (*models.Device, error) {
	devices, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if d := MatchDevice(devices, prefix); d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrNoMatchingDevice, prefix)
}

// FindDeviceByID returns the device with the exact id.
func (s *SpotifyService) FindDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	devices, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].ID == id {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("%w: id %q", shared.ErrNoMatchingDevice, id)
}

// MatchDevice picks the first device whose lowercased name starts with the lowercased prefix.
func MatchDevice(devices []models.Device, prefix string) *models.Device {
	prefix = strings.ToLower(prefix)
	for i := range devices {
		if strings.HasPrefix(strings.ToLower(devices[i].Name), prefix) {
			return &devices[i]
		}
	}
	return nil
}

// TransferPlayback moves playback to deviceID, starting it when play is set.
func (s *SpotifyService) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	body := models.TransferPlaybackRequest{DeviceIDs: []string{deviceID}, Play: play}
	return s.client.Request(ctx, pathPlayer, http.MethodPut, JSON{Value: body}, Empty{})
}

// Play starts or resumes playback. An empty request resumes without a body.
func (s *SpotifyService) Play(ctx context.Context, req models.StartResumePlaybackRequest) error {
	var in Input = Empty{}
	if !req.IsEmpty() {
		in = JSON{Value: req}
	}
	return s.client.Request(ctx, pathPlay, http.MethodPut, in, Empty{})
}

// PlayURI plays a single track URI, or a context (playlist, album, artist) URI.
func (s *SpotifyService) PlayURI(ctx context.Context, uri string) error {
	if uri == "" {
		return s.Play(ctx, models.StartResumePlaybackRequest{})
	}
	if !strings.HasPrefix(uri, "spotify:") {
		return fmt.Errorf("%w: expected a spotify: URI, got %q", shared.ErrInvalidArgument, uri)
	}
	if strings.HasPrefix(uri, "spotify:track:") || strings.HasPrefix(uri, "spotify:episode:") {
		return s.Play(ctx, models.StartResumePlaybackRequest{URIs: []string{uri}})
	}
	return s.Play(ctx, models.StartResumePlaybackRequest{ContextURI: uri})
}

func (s *SpotifyService) Pause(ctx context.Context) error {
	return s.client.Request(ctx, pathPause, http.MethodPut, Empty{}, Empty{})
}

func (s *SpotifyService) Next(ctx context.Context) error {
	return s.client.Request(ctx, pathNext, http.MethodPost, Empty{}, Empty{})
}

func (s *SpotifyService) Previous(ctx context.Context) error {
	return s.client.Request(ctx, pathPrevious, http.MethodPost, Empty{}, Empty{})
}

// CurrentlyPlaying returns the player state, or [shared.ErrNothingPlaying] when the player is idle.
func (s *SpotifyService) CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlayingContext, error) {
	var out MaybeEmpty[models.CurrentlyPlayingContext]
	if err := s.client.Request(ctx, pathPlayer, http.MethodGet, Empty{}, &out); err != nil {
		return nil, err
	}
	if !out.Present {
		return nil, shared.ErrNothingPlaying
	}
	return &out.Value, nil
}

// PlaylistTracks walks every page of a playlist, pacing requests with the page limiter.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.PlaylistTrack, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var all []models.PlaylistTrack
	offset := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		q := url.Values{}
		q.Set("limit", strconv.Itoa(playlistLimit))
		q.Set("offset", strconv.Itoa(offset))
		path := "/v1/playlists/" + url.PathEscape(playlistID) + "/tracks?" + q.Encode()

		var page models.Paging[models.PlaylistTrack]
		if err := s.client.Request(ctx, path, http.MethodGet, Empty{}, Into(&page)); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return all, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*models.PrivateUser, error) {
	var user models.PrivateUser
	if err := s.client.Request(ctx, pathMe, http.MethodGet, Empty{}, Into(&user)); err != nil {
		return nil, err
	}
	return &user, nil
}
