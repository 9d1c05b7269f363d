package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/soconhq/socon/internal/connect"
	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/providers"
	"github.com/soconhq/socon/internal/repositories"
	"github.com/soconhq/socon/internal/server"
	"github.com/soconhq/socon/internal/services"
	"github.com/soconhq/socon/internal/shared"
	"github.com/urfave/cli/v3"
)

// Connect runs the browser authorization flow for a platform.
//
// Regular platforms authorize through the backend's registered app; the
// generic provider uses locally configured credentials and exchanges the
// code itself.
func (r *Runner) Connect(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("platform")
	if name == "" {
		return fmt.Errorf("%w: platform is required", shared.ErrMissingArgument)
	}

	cfg, err := providers.Lookup(name)
	if err != nil {
		return err
	}

	if cfg.DirectOAuth {
		return r.connectDirect(ctx, cmd, cfg)
	}

	var opts connect.ConnectOpts
	if cmd.Bool("no-browser") {
		opts.OpenBrowser = func(url string) error {
			r.writePlain("Open this URL in your browser:\n%s\n\n", url)
			return nil
		}
	} else {
		r.writePlain("→ Opening browser to connect %s...\n", cfg.DisplayName)
	}

	r.writePlain("→ Waiting for authorization...\n")

	outcome, err := r.controller.ConnectWith(ctx, cfg.Platform.String(), opts)
	if err != nil {
		return r.renderConnectFailure(outcome, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(outcome.Status, true)
	}

	r.writePlainln("✓ Connected to %s", cfg.DisplayName)
	if outcome.Status != nil && outcome.Status.Username != "" {
		r.writePlain("  Account: @%s\n", outcome.Status.Username)
	}

	r.cacheStatus(outcome)
	return nil
}

// renderConnectFailure prints remediation steps for recognizable failures
// before surfacing the error.
func (r *Runner) renderConnectFailure(outcome connect.Outcome, err error) error {
	var remedy connect.Remedy
	switch {
	case errors.Is(err, shared.ErrUserDenied):
		remedy = connect.ErrorRemedy("user_denied")
	case errors.Is(err, shared.ErrServiceUnavailable):
		remedy = connect.ErrorRemedy("server_error")
	case errors.Is(err, shared.ErrAuthFailed):
		remedy = connect.ErrorRemedy("oauth_failed")
	case errors.Is(err, shared.ErrBrowserLaunch), errors.Is(err, shared.ErrTimeout):
		remedy = connect.ErrorRemedy("")
	default:
		return err
	}

	r.writePlainln("✗ %s", remedy.Message)
	for i, step := range remedy.Steps {
		r.writePlain("  %d. %s\n", i+1, step)
	}
	return err
}

// cacheStatus persists a successful connection to the local database so
// `status --cached` works offline. Cache failures are logged, not fatal.
func (r *Runner) cacheStatus(outcome connect.Outcome) {
	if outcome.Status == nil {
		return
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("skipping status cache", "error", err)
		return
	}
	defer db.Close()

	repo := repositories.NewConnectionRepository(db)
	if err := repo.SaveStatus(*outcome.Status); err != nil {
		r.logger.Warn("failed to cache connection status", "error", err)
	}
}

// connectDirect authorizes the generic provider against user-supplied
// endpoints, exchanging the authorization code locally.
func (r *Runner) connectDirect(ctx context.Context, cmd *cli.Command, providerCfg providers.Config) error {
	configPath := cmd.String("config")

	generic := r.config.Credentials.Generic
	if generic.ClientID == "" || generic.ClientSecret == "" {
		return fmt.Errorf("%w: generic client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	oauth, err := services.NewDirectOAuth(generic, r.config.Server.ReturnURL())
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauth.AuthURL(state)
	handler := server.NewExchangeHandler(oauth.Config(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	httpServer := &http.Server{
		Addr:    r.config.Server.Addr(),
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for %s authorization...\n", providerCfg.DisplayName)
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", r.connectCfg.Timeout)

	timeout := time.NewTimer(r.connectCfg.Timeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, r.connectCfg.Timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return fmt.Errorf("no token received")
	}

	if err := r.config.Credentials.Generic.Update(result.Token); err != nil {
		return fmt.Errorf("failed to update generic credentials: %w", err)
	}

	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n", configPath)

	return nil
}

// Disconnect removes a platform connection on the backend and locally.
func (r *Runner) Disconnect(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("platform")
	if name == "" {
		return fmt.Errorf("%w: platform is required", shared.ErrMissingArgument)
	}

	cfg, err := providers.Lookup(name)
	if err != nil {
		return err
	}

	r.logger.Info("disconnecting", "platform", cfg.Platform.String())

	if err := r.controller.Disconnect(ctx, cfg.Platform.String()); err != nil {
		if errors.Is(err, shared.ErrConnectionNotFound) {
			return fmt.Errorf("%w: %s is not connected", shared.ErrConnectionNotFound, cfg.DisplayName)
		}
		return err
	}

	r.clearCachedStatus(cfg.Platform.String())

	return r.writePlain("✓ Disconnected %s\n", cfg.DisplayName)
}

func (r *Runner) clearCachedStatus(platform string) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return
	}
	defer db.Close()

	repo := repositories.NewConnectionRepository(db)
	if err := repo.ClearPlatform(platform); err != nil {
		r.logger.Warn("failed to clear cached status", "error", err)
	}
}

// Status reports connection state for one platform or all of them.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("platform")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if cmd.Bool("cached") {
		return r.cachedStatus(name, useJSON, pretty)
	}

	var platforms []providers.Config
	if name != "" {
		cfg, err := providers.Lookup(name)
		if err != nil {
			return err
		}
		platforms = []providers.Config{cfg}
	} else {
		platforms = providers.All()
	}

	statuses := make([]any, 0, len(platforms))
	for _, p := range platforms {
		status, err := r.store.Load(ctx, p.Platform.String())
		if err != nil {
			return fmt.Errorf("failed to load %s status: %w", p.Platform, err)
		}
		statuses = append(statuses, status)
	}

	if useJSON {
		if len(statuses) == 1 {
			return r.writeJSON(statuses[0], pretty)
		}
		return r.writeJSON(statuses, pretty)
	}

	for _, p := range platforms {
		r.renderStatus(p, r.store.Status(p.Platform.String()))
	}
	return nil
}

func (r *Runner) renderStatus(p providers.Config, status models.ConnectionStatus) {
	if !status.Connected {
		r.writePlain("%s: not connected\n", p.DisplayName)
		return
	}

	r.writePlain("%s: ✓ connected as @%s", p.DisplayName, status.Username)
	if status.Expired() {
		r.writePlain("  (token expired)")
	} else if status.ExpiresSoon() {
		r.writePlain("  (token expires soon)")
	}
	r.writePlain("\n")
}

// cachedStatus reads connection state from the local database without
// touching the backend.
func (r *Runner) cachedStatus(name string, useJSON, pretty bool) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewConnectionRepository(db)

	criteria := map[string]any{}
	if name != "" {
		cfg, err := providers.Lookup(name)
		if err != nil {
			return err
		}
		criteria["platform"] = cfg.Platform.String()
	}

	connections, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if useJSON {
		statuses := make([]any, 0, len(connections))
		for _, conn := range connections {
			statuses = append(statuses, conn.Status())
		}
		return r.writeJSON(statuses, pretty)
	}

	if len(connections) == 0 {
		return r.writePlain("No cached connections.\n")
	}

	for _, conn := range connections {
		status := conn.Status()
		r.writePlain("%s: ✓ connected as @%s", status.Platform, status.Username)
		if status.Expired() {
			r.writePlain("  (token expired)")
		} else if status.ExpiresSoon() {
			r.writePlain("  (token expires soon)")
		}
		r.writePlain("\n")
	}
	return nil
}

// Test runs a connection health check against the backend.
func (r *Runner) Test(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("platform")
	if name == "" {
		return fmt.Errorf("%w: platform is required", shared.ErrMissingArgument)
	}

	cfg, err := providers.Lookup(name)
	if err != nil {
		return err
	}

	r.logger.Info("testing connection", "platform", cfg.Platform.String())

	result, err := r.backend.TestConnection(ctx, cfg.Platform.String())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if result.Success {
		return r.writePlain("✓ %s connection is healthy\n", cfg.DisplayName)
	}

	r.writePlain("✗ %s connection failed", cfg.DisplayName)
	if result.Message != "" {
		r.writePlain(": %s", result.Message)
	}
	r.writePlain("\n")
	return nil
}
