package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/drivebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the interactive browser authorization flow.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	if r.store.Authenticated() {
		r.writePlainln("✓ Already authenticated")
		return nil
	}

	flow, err := r.ensureFlow()
	if err != nil {
		return err
	}

	return r.doOAuth(ctx, flow)
}

// AuthStatus queries a running server's /health endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	healthURL := fmt.Sprintf("http://%s:%d/health", r.config.Server.Host, r.config.Server.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable at %s: %w", healthURL, err)
	}
	defer resp.Body.Close()

	var health struct {
		Status        string `json:"status"`
		Authenticated bool   `json:"authenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("unexpected health response: %w", err)
	}

	if health.Authenticated {
		r.writePlainln("✓ Server holds an authorization grant")
	} else {
		r.writePlainln("✗ Server is not authenticated. Visit /auth/google to connect.")
	}
	return nil
}

// AuthRevoke asks a running server to drop its authorization grant.
func (r *Runner) AuthRevoke(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	revokeURL := fmt.Sprintf("http://%s:%d/auth/revoke", r.config.Server.Host, r.config.Server.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable at %s: %w", revokeURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusNoContent:
		r.writePlainln("✓ Authorization revoked")
		return nil
	case http.StatusUnauthorized:
		return shared.ErrNotAuthenticated
	default:
		return fmt.Errorf("%w: revoke returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
}
