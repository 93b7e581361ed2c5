package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/auth"
	"github.com/desertthunder/sptty/internal/models"
	"github.com/desertthunder/sptty/internal/playback"
	"github.com/desertthunder/sptty/internal/services"
	"github.com/desertthunder/sptty/internal/shared"
	"github.com/urfave/cli/v3"
)

// Authenticator obtains and manages the cached access token.
type Authenticator interface {
	Authenticate(ctx context.Context, present auth.URLPresenter) (*auth.AccessTokenRecord, error)
	GetToken(ctx context.Context, present auth.URLPresenter) (string, error)
	Status() (*auth.AccessTokenRecord, error)
	Logout() error
}

// Player is the subset of the Spotify player API used by commands.
type Player interface {
	Devices(ctx context.Context) ([]models.Device, error)
	FindDevice(ctx context.Context, prefix string) (*models.Device, error)
	FindDeviceByID(ctx context.Context, id string) (*models.Device, error)
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
	PlayURI(ctx context.Context, uri string) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlayingContext, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.PlaylistTrack, error)
	UserProfile(ctx context.Context) (*models.PrivateUser, error)
}

// AgentUnit manages the background agent service.
type AgentUnit interface {
	Path() string
	Install(force bool) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil are built on first use from the loaded configuration.
type Runner struct {
	config     *shared.Config
	configPath string
	auth       Authenticator
	player     Player
	unit       AgentUnit
	connector  playback.Connector
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	errOutput  io.Writer
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Auth       Authenticator
	Player     Player
	Unit       AgentUnit
	Connector  playback.Connector
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	ErrOutput  io.Writer
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.ConfigPath == "" {
		opts.ConfigPath = shared.ConfigPath()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		auth:       opts.Auth,
		player:     opts.Player,
		unit:       opts.Unit,
		connector:  opts.Connector,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		errOutput:  opts.ErrOutput,
		openURL:    opts.OpenURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		agentCommand, deviceCommand, listCommand, nextCommand, prevCommand, playCommand, stopCommand,
		nowCommand, openCommand, authCommand, configCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies the global flags ahead of any command action.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// Root runs when no subcommand is given. Only --login does anything there.
func (r *Runner) Root(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("login") {
		return r.AuthLogin(ctx, cmd)
	}
	return fmt.Errorf("%w: no command given (run 'sptty --help' for usage)", shared.ErrMissingArgument)
}

// SetLogger replaces the logger used by the runner.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) loadConfig() (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		if errors.Is(err, shared.ErrMissingConfig) {
			return nil, fmt.Errorf("%w (run 'sptty config init' to create one)", err)
		}
		return nil, err
	}

	r.logger.Debug("config loaded", "path", r.configPath)
	r.config = config
	return config, nil
}

func (r *Runner) authenticator() (Authenticator, error) {
	if r.auth != nil {
		return r.auth, nil
	}

	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := auth.NewAuthenticator(auth.Options{
		Config:     &config.Auth,
		Cache:      auth.NewTokenCache(shared.TokenCachePath()),
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.auth = a
	return a, nil
}

// apiClient authenticates and returns a client for the resource API.
func (r *Runner) apiClient(ctx context.Context) (*services.Client, error) {
	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := r.authenticator()
	if err != nil {
		return nil, err
	}

	token, err := a.GetToken(ctx, r.presenter())
	if err != nil {
		return nil, err
	}

	client, err := services.NewClient(config.API.Endpoint, token, r.httpClient)
	if err != nil {
		return nil, err
	}
	client.SetLogger(r.logger)
	return client, nil
}

func (r *Runner) spotify(ctx context.Context) (Player, error) {
	if r.player != nil {
		return r.player, nil
	}

	client, err := r.apiClient(ctx)
	if err != nil {
		return nil, err
	}
	r.player = services.NewSpotifyService(client)
	return r.player, nil
}

func (r *Runner) agentUnit() (AgentUnit, error) {
	if r.unit != nil {
		return r.unit, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate sptty executable: %w", err)
	}
	r.unit = playback.NewUnit("", exe)
	return r.unit, nil
}

// presenter opens the authorization URL in a browser, printing it when that fails.
func (r *Runner) presenter() auth.URLPresenter {
	printURL := auth.PrintURL(r.errOutput)
	return func(authURL string) {
		if err := r.openURL(authURL); err != nil {
			r.logger.Warn("could not open browser automatically", "error", err)
			printURL(authURL)
			return
		}
		fmt.Fprintln(r.errOutput, "→ Waiting for authorization in your browser...")
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
