package main

import (
	"context"
	"time"

	"github.com/desertthunder/sptty/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the interactive authorization flow and caches the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	rec, err := a.Authenticate(ctx, r.presenter())
	if err != nil {
		return err
	}

	r.logger.Info("authorization complete", "scope", rec.Scope)
	return r.writePlain("✓ Authorization successful\n")
}

// AuthLogout removes the cached token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	if err := a.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports whether a token is cached. With --user it also looks up the account behind it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	rec, err := a.Status()
	if err != nil {
		return err
	}

	var user *models.PrivateUser
	if rec != nil && cmd.Bool("user") {
		player, err := r.spotify(ctx)
		if err != nil {
			return err
		}
		if user, err = player.UserProfile(ctx); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		status := map[string]any{"authenticated": rec != nil}
		if rec != nil {
			status["token_type"] = rec.TokenType
			status["scope"] = rec.Scope
			status["expires_in"] = rec.ExpiresIn
		}
		if user != nil {
			status["user"] = map[string]string{
				"id":           user.ID,
				"display_name": user.DisplayName,
				"product":      user.Product,
			}
		}
		return r.writeJSON(status, true)
	}

	if rec == nil {
		return r.writePlain("Authentication: ✗ Not authenticated (run 'sptty auth login')\n")
	}

	r.writePlain("Authentication: ✓ Authenticated\n")
	if user != nil {
		r.writePlain("User: %s (%s, %s)\n", user.DisplayName, user.ID, user.Product)
	}
	r.writePlain("Token type: %s\n", rec.TokenType)
	r.writePlain("Scope: %s\n", rec.Scope)
	r.writePlain("Lifetime at issue: %s\n", time.Duration(rec.ExpiresIn)*time.Second)
	return nil
}

// AuthToken prints a freshly refreshed access token.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	token, err := a.GetToken(ctx, r.presenter())
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", token)
}
