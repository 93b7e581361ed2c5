package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/shared"
)

const (
	// TokenEnv carries the access token to the Connect process.
	TokenEnv = "SPTTY_ACCESS_TOKEN"
	// DeviceNameEnv carries the advertised device name to the Connect process.
	DeviceNameEnv = "SPTTY_DEVICE_NAME"

	defaultStopGrace = 5 * time.Second
)

// Connector opens a Spotify Connect session with a bearer token and blocks until it ends.
type Connector interface {
	Connect(ctx context.Context, token string) error
}

// ExecConnector runs an external Connect implementation as a child process.
type ExecConnector struct {
	command    string
	args       []string
	env        map[string]string
	deviceName string
	logger     *log.Logger
	stopGrace  time.Duration
}

// NewExecConnector creates a connector from the agent configuration.
func NewExecConnector(cfg shared.AgentConfig, logger *log.Logger) (*ExecConnector, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("%w: agent.command is required", shared.ErrConfig)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &ExecConnector{
		command:    cfg.Command,
		args:       cfg.Args,
		env:        cfg.Env,
		deviceName: cfg.DeviceName,
		logger:     logger,
		stopGrace:  defaultStopGrace,
	}, nil
}

// Connect starts the process and waits for it. Cancelling ctx interrupts the process and is not an error.
func (c *ExecConnector) Connect(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrNotAuthenticated)
	}

	vars := map[string]string{TokenEnv: token, DeviceNameEnv: c.deviceName}
	expand := func(s string) string {
		return os.Expand(s, func(key string) string {
			if v, ok := vars[key]; ok {
				return v
			}
			return os.Getenv(key)
		})
	}

	args := make([]string, len(c.args))
	for i, arg := range c.args {
		args[i] = expand(arg)
	}

	env := append(os.Environ(), TokenEnv+"="+token, DeviceNameEnv+"="+c.deviceName)
	keys := make([]string, 0, len(c.env))
	for key := range c.env {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		env = append(env, key+"="+expand(c.env[key]))
	}

	stdout := &lineWriter{logger: c.logger, stream: "stdout"}
	stderr := &lineWriter{logger: c.logger, stream: "stderr"}

	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = c.stopGrace

	c.logger.Info("starting connect session", "command", c.command, "device", c.deviceName)
	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if ctx.Err() != nil {
		c.logger.Info("connect session stopped")
		return nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: connect session exited with code %d", shared.ErrServiceUnavailable, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: failed to run %s: %v", shared.ErrServiceUnavailable, c.command, err)
	}

	c.logger.Info("connect session ended")
	return nil
}

// lineWriter logs child process output one line at a time.
type lineWriter struct {
	mu     sync.Mutex
	logger *log.Logger
	stream string
	buf    bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Flush logs a trailing line that was not newline-terminated.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	w.logger.Info(line, "stream", w.stream)
}
