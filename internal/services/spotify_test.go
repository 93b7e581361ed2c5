package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/sptty/internal/models"
	"github.com/desertthunder/sptty/internal/shared"
)

const devicesJSON = `{"devices":[
	{"id":"d1","is_active":true,"is_private_session":false,"is_restricted":false,"name":"Living Room","type":"Speaker","volume_percent":40},
	{"id":"d2","is_active":false,"is_private_session":false,"is_restricted":false,"name":"sptty","type":"Computer","volume_percent":35},
	{"id":"d3","is_active":false,"is_private_session":false,"is_restricted":false,"name":"Laptop","type":"Computer","volume_percent":100}
]}`

type recorded struct {
	method string
	path   string
	body   string
}

// fakeSpotify routes requests by "METHOD /path" and records every call.
type fakeSpotify struct {
	mu     sync.Mutex
	calls  []recorded
	routes map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeSpotify(t *testing.T) (*fakeSpotify, *SpotifyService) {
	t.Helper()
	fake := &fakeSpotify{routes: map[string]func(http.ResponseWriter, *http.Request){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path

		fake.mu.Lock()
		fake.calls = append(fake.calls, recorded{method: r.Method, path: r.URL.Path, body: string(body)})
		handler, ok := fake.routes[key]
		fake.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "TOKEN", srv.Client())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	service := NewSpotifyService(client)
	service.SetPageRate(0)
	return fake, service
}

func (f *fakeSpotify) handle(key string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func (f *fakeSpotify) recorded() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.calls...)
}

func (f *fakeSpotify) last(t *testing.T) recorded {
	t.Helper()
	calls := f.recorded()
	if len(calls) == 0 {
		t.Fatal("expected at least one request")
	}
	return calls[len(calls)-1]
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("Devices", func(t *testing.T) {
		fake, service := newFakeSpotify(t)
		fake.handle("GET /v1/me/player/devices", http.StatusOK, devicesJSON)

		devices, err := service.Devices(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(devices) != 3 {
			t.Fatalf("expected 3 devices, got %d", len(devices))
		}
		if !devices[0].IsActive || devices[0].Name != "Living Room" || devices[0].VolumePercent != 40 {
			t.Errorf("unexpected first device %+v", devices[0])
		}
	})

	t.Run("FindDevice", func(t *testing.T) {
		t.Run("Case Insensitive Prefix", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			fake.handle("GET /v1/me/player/devices", http.StatusOK, devicesJSON)

			for prefix, want := range map[string]string{"living": "d1", "SPT": "d2", "lap": "d3", "": "d1"} {
				d, err := service.FindDevice(ctx, prefix)
				if err != nil {
					t.Fatalf("expected match for %q, got %v", prefix, err)
				}
				if d.ID != want {
					t.Errorf("expected %s for %q, got %s", want, prefix, d.ID)
				}
			}
		})

		t.Run("No Match", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			fake.handle("GET /v1/me/player/devices", http.StatusOK, devicesJSON)

			if _, err := service.FindDevice(ctx, "kitchen"); !errors.Is(err, shared.ErrNoMatchingDevice) {
				t.Errorf("expected ErrNoMatchingDevice, got %v", err)
			}
		})

		t.Run("By ID", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			fake.handle("GET /v1/me/player/devices", http.StatusOK, devicesJSON)

			d, err := service.FindDeviceByID(ctx, "d3")
			if err != nil || d.Name != "Laptop" {
				t.Errorf("expected Laptop, got %+v, %v", d, err)
			}
			if _, err := service.FindDeviceByID(ctx, "D3"); !errors.Is(err, shared.ErrNoMatchingDevice) {
				t.Errorf("expected exact id match only, got %v", err)
			}
		})
	})

	t.Run("TransferPlayback", func(t *testing.T) {
		fake, service := newFakeSpotify(t)

		if err := service.TransferPlayback(ctx, "d2", true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		call := fake.last(t)
		if call.method != http.MethodPut || call.path != "/v1/me/player" {
			t.Errorf("unexpected request %s %s", call.method, call.path)
		}
		var body models.TransferPlaybackRequest
		if err := json.Unmarshal([]byte(call.body), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(body.DeviceIDs) != 1 || body.DeviceIDs[0] != "d2" || !body.Play {
			t.Errorf("unexpected transfer body %+v", body)
		}
	})

	t.Run("Player Commands", func(t *testing.T) {
		tests := []struct {
			name   string
			call   func(*SpotifyService) error
			method string
			path   string
		}{
			{"Pause", func(s *SpotifyService) error { return s.Pause(ctx) }, http.MethodPut, "/v1/me/player/pause"},
			{"Next", func(s *SpotifyService) error { return s.Next(ctx) }, http.MethodPost, "/v1/me/player/next"},
			{"Previous", func(s *SpotifyService) error { return s.Previous(ctx) }, http.MethodPost, "/v1/me/player/previous"},
			{"Resume", func(s *SpotifyService) error { return s.PlayURI(ctx, "") }, http.MethodPut, "/v1/me/player/play"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				fake, service := newFakeSpotify(t)
				if err := tt.call(service); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				call := fake.last(t)
				if call.method != tt.method || call.path != tt.path {
					t.Errorf("expected %s %s, got %s %s", tt.method, tt.path, call.method, call.path)
				}
				if call.body != "" {
					t.Errorf("expected empty body, got %q", call.body)
				}
			})
		}
	})

	t.Run("PlayURI", func(t *testing.T) {
		t.Run("Track", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			if err := service.PlayURI(ctx, "spotify:track:abc"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if body := fake.last(t).body; body != `{"uris":["spotify:track:abc"]}` {
				t.Errorf("unexpected body %s", body)
			}
		})

		t.Run("Context", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			if err := service.PlayURI(ctx, "spotify:playlist:xyz"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if body := fake.last(t).body; body != `{"context_uri":"spotify:playlist:xyz"}` {
				t.Errorf("unexpected body %s", body)
			}
		})

		t.Run("Not A URI", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			if err := service.PlayURI(ctx, "https://open.spotify.com/track/abc"); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if n := len(fake.recorded()); n != 0 {
				t.Errorf("expected no requests, got %d", n)
			}
		})

		t.Run("No Active Device", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			fake.handle("PUT /v1/me/player/play", http.StatusNotFound, `{"error":{"status":404,"message":"No active device found"}}`)

			err := service.PlayURI(ctx, "")
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404 APIError, got %v", err)
			}
		})
	})

	t.Run("CurrentlyPlaying", func(t *testing.T) {
		t.Run("Idle", func(t *testing.T) {
			_, service := newFakeSpotify(t)
			if _, err := service.CurrentlyPlaying(ctx); !errors.Is(err, shared.ErrNothingPlaying) {
				t.Errorf("expected ErrNothingPlaying, got %v", err)
			}
		})

		t.Run("Playing", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			fake.handle("GET /v1/me/player", http.StatusOK, `{
				"device":{"id":"d1","name":"Living Room","is_active":true},
				"context":{"type":"playlist","uri":"spotify:playlist:p1"},
				"is_playing":true,
				"progress_ms":1000,
				"currently_playing_type":"track",
				"item":{"id":"t1","name":"Song","duration_ms":180000,"type":"track","uri":"spotify:track:t1",
					"artists":[{"name":"A"},{"name":"B"}],"album":{"name":"Album"}}
			}`)

			state, err := service.CurrentlyPlaying(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !state.IsPlaying || state.Item == nil || state.Item.Name != "Song" {
				t.Errorf("unexpected state %+v", state)
			}
			if state.Context == nil || state.Context.ID() != "p1" {
				t.Errorf("expected playlist context p1, got %+v", state.Context)
			}
			if got := state.Item.ArtistNames(); got != "A, B" {
				t.Errorf("expected 'A, B', got %q", got)
			}
		})
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		t.Run("Walks Every Page", func(t *testing.T) {
			fake, service := newFakeSpotify(t)
			fake.mu.Lock()
			fake.routes["GET /v1/playlists/p1/tracks"] = func(w http.ResponseWriter, r *http.Request) {
				offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
				if r.URL.Query().Get("limit") != "100" {
					t.Errorf("expected limit=100, got %q", r.URL.Query().Get("limit"))
				}

				page := models.Paging[models.PlaylistTrack]{Offset: offset, Total: 150}
				end := min(offset+100, 150)
				for i := offset; i < end; i++ {
					page.Items = append(page.Items, models.PlaylistTrack{Track: &models.Track{ID: fmt.Sprintf("t%d", i)}})
				}
				if end < 150 {
					next := fmt.Sprintf("/v1/playlists/p1/tracks?offset=%d", end)
					page.Next = &next
				}
				json.NewEncoder(w).Encode(page)
			}
			fake.mu.Unlock()

			tracks, err := service.PlaylistTracks(ctx, "p1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 150 {
				t.Fatalf("expected 150 tracks, got %d", len(tracks))
			}
			if tracks[0].Track.ID != "t0" || tracks[149].Track.ID != "t149" {
				t.Errorf("unexpected ordering: first %s last %s", tracks[0].Track.ID, tracks[149].Track.ID)
			}
			if n := len(fake.recorded()); n != 2 {
				t.Errorf("expected 2 page requests, got %d", n)
			}
		})

		t.Run("Missing ID", func(t *testing.T) {
			_, service := newFakeSpotify(t)
			if _, err := service.PlaylistTracks(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("Cancelled While Waiting", func(t *testing.T) {
			_, service := newFakeSpotify(t)
			service.SetPageRate(0.001)
			service.limiter.Allow()

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			if _, err := service.PlaylistTracks(cctx, "p1"); err == nil {
				t.Error("expected error from cancelled context")
			}
		})
	})

	t.Run("UserProfile", func(t *testing.T) {
		fake, service := newFakeSpotify(t)
		fake.handle("GET /v1/me", http.StatusOK, `{"id":"u1","display_name":"Owen","product":"premium"}`)

		user, err := service.UserProfile(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "u1" || user.Product != "premium" {
			t.Errorf("unexpected user %+v", user)
		}
	})
}

func TestMatchDevice(t *testing.T) {
	devices := []models.Device{{ID: "a", Name: "Kitchen"}, {ID: "b", Name: "kitchenette"}}

	if d := MatchDevice(devices, "KITCHEN"); d == nil || d.ID != "a" {
		t.Errorf("expected first match, got %+v", d)
	}
	if d := MatchDevice(devices, "bath"); d != nil {
		t.Errorf("expected no match, got %+v", d)
	}
	if d := MatchDevice(nil, ""); d != nil {
		t.Errorf("expected no match on empty list, got %+v", d)
	}
}
