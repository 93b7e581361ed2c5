package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/sptty/internal/formatter"
	"github.com/desertthunder/sptty/internal/models"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/desertthunder/sptty/internal/ui"
	"github.com/urfave/cli/v3"
)

// DeviceList prints the user's devices, marking the active one.
func (r *Runner) DeviceList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	devices, err := player.Devices(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("devices fetched", "count", len(devices))
	return formatter.RenderDevices(r.output, format, devices)
}

// DeviceSet transfers playback to the device matching a name prefix, or an exact ID with --id.
func (r *Runner) DeviceSet(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: device name", shared.ErrMissingArgument)
	}

	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	var device *models.Device
	if cmd.Bool("id") {
		device, err = player.FindDeviceByID(ctx, name)
	} else {
		device, err = player.FindDevice(ctx, name)
	}
	if err != nil {
		return err
	}

	play := cmd.Bool("play")
	r.logger.Debug("transferring playback", "device", device.Name, "id", device.ID, "play", play)
	if err := player.TransferPlayback(ctx, device.ID, play); err != nil {
		return err
	}
	return r.writePlain("✓ Playback transferred to %s\n", device.Name)
}

// DevicePick shows an interactive device list and transfers playback to the chosen device.
func (r *Runner) DevicePick(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they do not interfere with TUI rendering.
	fileLogger, err := shared.NewFileLogger(filepath.Join(shared.CacheDir(), "tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	player, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	device, err := ui.Run(ctx, player, cmd.Bool("play"))
	if err != nil {
		return err
	}
	if device == nil {
		return nil
	}
	return r.writePlain("✓ Playback transferred to %s\n", device.Name)
}
