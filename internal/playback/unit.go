package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sptty/internal/shared"
)

// UnitName is the systemd user unit that runs the agent.
const UnitName = "sptty.service"

const unitTemplate = `[Unit]
Description=Lightweight Spotify daemon.

[Service]
ExecStart=%s agent run

[Install]
WantedBy=default.target
`

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Unit manages the systemd user unit for the agent.
type Unit struct {
	dir string
	exe string
	run CommandRunner
}

// NewUnit creates a unit stored in dir whose ExecStart points at exe.
// An empty dir selects the systemd user unit directory.
func NewUnit(dir, exe string) *Unit {
	if dir == "" {
		dir = shared.SystemdUserDir()
	}
	return &Unit{dir: dir, exe: exe, run: runCommand}
}

// SetRunner replaces the command runner used for systemctl.
func (u *Unit) SetRunner(run CommandRunner) { u.run = run }

// Path returns the unit file path.
func (u *Unit) Path() string { return filepath.Join(u.dir, UnitName) }

// Content renders the unit file.
func (u *Unit) Content() string { return fmt.Sprintf(unitTemplate, u.exe) }

// Install writes the unit file. An existing file is only replaced when force is set.
func (u *Unit) Install(force bool) error {
	path := u.Path()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidInput, path)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(u.Content()), 0o644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	return nil
}

// Start starts the agent unit.
func (u *Unit) Start(ctx context.Context) error { return u.systemctl(ctx, "start") }

// Stop stops the agent unit.
func (u *Unit) Stop(ctx context.Context) error { return u.systemctl(ctx, "stop") }

func (u *Unit) systemctl(ctx context.Context, action string) error {
	name := strings.TrimSuffix(UnitName, ".service")
	if err := u.run(ctx, "systemctl", "--user", action, name); err != nil {
		return fmt.Errorf("%w: systemctl %s %s: %v", shared.ErrServiceUnavailable, action, name, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return nil
}
