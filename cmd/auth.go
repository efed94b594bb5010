package main

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/photomirror/photomirror/internal/services"
	"github.com/photomirror/photomirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin stores an OAuth refresh token in the file token store. The
// refresh token comes from the provider's consent flow; once stored,
// access tokens are minted and renewed automatically.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	tokenFile := config.TokenFile()
	if tokenFile == "" {
		return fmt.Errorf("%w: auth.token_store must be \"file\" to persist tokens", shared.ErrMissingConfig)
	}
	if config.Auth.ClientID == "" || config.Auth.ClientSecret == "" {
		return fmt.Errorf("%w: auth.client_id and auth.client_secret are required", shared.ErrMissingConfig)
	}

	tok := &oauth2.Token{
		AccessToken:  cmd.String("access-token"),
		RefreshToken: cmd.String("refresh-token"),
	}
	if err := services.WriteTokenFile(tokenFile, tok); err != nil {
		return err
	}

	r.logger.Info("token stored", "path", tokenFile)
	r.writePlainln("✓ Token stored at %s", tokenFile)
	r.writePlainln("Run 'photomirror sync' to pull the library.")
	return nil
}
