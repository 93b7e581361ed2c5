package playback

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/auth"
)

// TokenSource yields a valid access token, logging in interactively when needed.
type TokenSource interface {
	GetToken(ctx context.Context, present auth.URLPresenter) (string, error)
}

// Agent obtains a token and keeps a Connect session running with it.
type Agent struct {
	tokens    TokenSource
	connector Connector
	logger    *log.Logger
}

// NewAgent creates an agent.
func NewAgent(tokens TokenSource, connector Connector, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{tokens: tokens, connector: connector, logger: logger}
}

// Run blocks until the session ends or ctx is cancelled.
func (a *Agent) Run(ctx context.Context, present auth.URLPresenter) error {
	token, err := a.tokens.GetToken(ctx, present)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	a.logger.Debug("access token acquired, connecting")
	return a.connector.Connect(ctx, token)
}
