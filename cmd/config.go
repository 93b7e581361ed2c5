package main

import (
	"context"

	"github.com/desertthunder/sptty/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example configuration to the config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("creating config file from template", "path", r.configPath)
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config file created at %s\n", r.configPath)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Set auth.client_id to your Spotify application's client ID\n")
	r.writePlain("2. Register auth.redirect_uri in the Spotify developer dashboard\n")
	return r.writePlain("3. Run 'sptty auth login'\n")
}

// ConfigPath prints where sptty reads its configuration and caches its token.
func (r *Runner) ConfigPath(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("config: %s\n", r.configPath)
	r.writePlain("token:  %s\n", shared.TokenCachePath())
	return r.writePlain("units:  %s\n", shared.SystemdUserDir())
}
