package main

import (
	"context"

	"github.com/desertthunder/sptty/internal/auth"
	"github.com/desertthunder/sptty/internal/playback"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/urfave/cli/v3"
)

// AgentRun keeps a Connect session open in the foreground until interrupted.
//
// The authorization URL is printed rather than opened since the agent usually runs without a desktop session.
// Logs go to agent.log_file, the cache directory's agent.log when unset, or the runner's logger for "-".
func (r *Runner) AgentRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	logger := r.logger
	if logFile := config.Agent.LogFile; logFile != "-" {
		if logFile == "" {
			logFile = shared.AgentLogPath()
		}
		fileLogger, err := shared.NewFileLogger(logFile)
		if err != nil {
			return err
		}
		fileLogger.SetLevel(r.logger.GetLevel())
		logger = fileLogger
	}

	a, err := r.authenticator()
	if err != nil {
		return err
	}

	connector := r.connector
	if connector == nil {
		if connector, err = playback.NewExecConnector(config.Agent, logger); err != nil {
			return err
		}
	}

	return playback.NewAgent(a, connector, logger).Run(ctx, auth.PrintURL(r.output))
}

// AgentStart starts the agent's systemd user unit.
func (r *Runner) AgentStart(ctx context.Context, cmd *cli.Command) error {
	unit, err := r.agentUnit()
	if err != nil {
		return err
	}

	if err := unit.Start(ctx); err != nil {
		return err
	}
	r.logger.Debug("agent started")
	return nil
}

// AgentKill stops the agent's systemd user unit.
func (r *Runner) AgentKill(ctx context.Context, cmd *cli.Command) error {
	unit, err := r.agentUnit()
	if err != nil {
		return err
	}

	if err := unit.Stop(ctx); err != nil {
		return err
	}
	r.logger.Debug("agent stopped")
	return nil
}

// AgentInstall writes the agent's systemd user unit file.
func (r *Runner) AgentInstall(ctx context.Context, cmd *cli.Command) error {
	unit, err := r.agentUnit()
	if err != nil {
		return err
	}

	if err := unit.Install(cmd.Bool("force")); err != nil {
		return err
	}

	r.writePlain("✓ Installed %s\n", unit.Path())
	return r.writePlain("Enable it with: systemctl --user enable --now sptty\n")
}
