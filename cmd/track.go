package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/sptty/internal/formatter"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/urfave/cli/v3"
)

const webPlayerURL = "https://open.spotify.com"

// List prints the tracks of the playlist that is currently playing.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	state, err := player.CurrentlyPlaying(ctx)
	if err != nil {
		return err
	}
	if state.Context == nil || state.Context.Type != "playlist" {
		return fmt.Errorf("%w: current playback is not from a playlist", shared.ErrNothingPlaying)
	}

	playlistID := state.Context.ID()
	tracks, err := player.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	title := "Playlist " + playlistID
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteTracksFile(path, format, title, tracks); err != nil {
			return err
		}
		r.logger.Info("track listing written", "path", path, "tracks", len(tracks))
		return nil
	}
	return formatter.RenderTracks(r.output, format, title, tracks)
}

// Play starts the agent, then plays uri or resumes when no uri is given.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("no-agent") {
		if err := r.AgentStart(ctx, cmd); err != nil {
			return err
		}
	}

	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}
	return player.PlayURI(ctx, cmd.StringArg("uri"))
}

// Stop pauses playback.
func (r *Runner) Stop(ctx context.Context, cmd *cli.Command) error {
	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}
	return player.Pause(ctx)
}

// Next skips to the next track.
func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}
	return player.Next(ctx)
}

// Prev skips to the previous track.
func (r *Runner) Prev(ctx context.Context, cmd *cli.Command) error {
	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}
	return player.Previous(ctx)
}

// Now prints the currently playing track.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	state, err := player.CurrentlyPlaying(ctx)
	if err != nil && !errors.Is(err, shared.ErrNothingPlaying) {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, true)
	}
	return r.writePlain("%s\n", formatter.NowPlaying(state, formatter.IsTerminal(r.output)))
}

// Open opens the Spotify web player in the browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	if err := r.openURL(webPlayerURL); err != nil {
		return err
	}
	return nil
}
