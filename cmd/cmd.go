// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/sptty/internal/formatter"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/urfave/cli/v3"
)

// rootCommand builds the sptty application with its global flags.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "sptty",
		Usage:   "A lightweight Spotify client for the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "login",
				Usage: "Authorize sptty with Spotify and cache the token",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   fmt.Sprintf("Path to configuration file (default: %s)", shared.ConfigPath()),
				Sources: cli.EnvVars("SPTTY_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Action:   r.Root,
		Commands: r.register(),
	}
}

func formatFlag() cli.Flag {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (" + strings.Join(names, ", ") + ")",
		Value:   string(formatter.Text),
	}
}

// agentCommand manages the playback agent.
func agentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "agent",
		Usage:  "Manage the playback agent (starts it when no subcommand is given)",
		Action: r.AgentStart,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the playback agent in the foreground",
				Action: r.AgentRun,
			},
			{
				Name:   "start",
				Usage:  "Start the playback agent in the background as a systemd user unit",
				Action: r.AgentStart,
			},
			{
				Name:    "kill",
				Aliases: []string{"stop"},
				Usage:   "Stop the background playback agent",
				Action:  r.AgentKill,
			},
			{
				Name:  "install",
				Usage: "Install the systemd user unit for the playback agent",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing unit file",
					},
				},
				Action: r.AgentInstall,
			},
		},
	}
}

// deviceCommand manages the active Connect device.
func deviceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "device",
		Usage:  "Manage connected Spotify devices (lists them when no subcommand is given)",
		Action: r.DeviceList,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List connected devices",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.DeviceList,
			},
			{
				Name:  "set",
				Usage: "Transfer playback to a device",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "play",
						Aliases: []string{"p"},
						Usage:   "Start playing on the device after transfer",
					},
					&cli.BoolFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Usage:   "Treat the argument as a device ID instead of a name prefix",
					},
				},
				Action: r.DeviceSet,
			},
			{
				Name:  "pick",
				Usage: "Choose a device interactively",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "play",
						Aliases: []string{"p"},
						Usage:   "Start playing on the device after transfer",
					},
				},
				Action: r.DevicePick,
			},
		},
	}
}

// listCommand lists the tracks of the playing playlist.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tracks of the currently playing playlist",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the listing to a file instead of stdout",
			},
		},
		Action: r.List,
	}
}

func nextCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "next",
		Aliases: []string{"next-track"},
		Usage:   "Skip to the next track",
		Action:  r.Next,
	}
}

func prevCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prev",
		Aliases: []string{"previous-track"},
		Usage:   "Skip to the previous track",
		Action:  r.Prev,
	}
}

// playCommand starts the agent and plays or resumes.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track or context URI, or resume playback",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "uri"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-agent",
				Usage: "Do not start the background agent first",
			},
		},
		Action: r.Play,
	}
}

func stopCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "stop",
		Aliases: []string{"pause"},
		Usage:   "Pause playback",
		Action:  r.Stop,
	}
}

func nowCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "now",
		Usage: "Show the currently playing track",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Now,
	}
}

func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Open the Spotify web player",
		Action: r.Open,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize sptty with Spotify and cache the token",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Remove the cached token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the cached token state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "token",
				Usage:  "Refresh and print an access token",
				Action: r.AuthToken,
			},
		},
	}
}

// configCommand handles the configuration file.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create a configuration file from the built-in template",
				Action: r.ConfigInit,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration and token cache paths",
				Action: r.ConfigPath,
			},
		},
	}
}

// apiCommand handles direct Web API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated calls to the Spotify Web API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a Web API path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "put",
				Usage: "PUT a JSON body to a Web API path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
				},
				Action: r.APIPut,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a Web API path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}
