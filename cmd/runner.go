package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/drivebox/internal/auth"
	"github.com/desertthunder/drivebox/internal/repositories"
	"github.com/desertthunder/drivebox/internal/server"
	"github.com/desertthunder/drivebox/internal/services"
	"github.com/desertthunder/drivebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      auth.Store
	flow       *auth.Flow
	storage    services.StorageService
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Store      auth.Store
	Flow       *auth.Flow
	Storage    services.StorageService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = auth.NewMemoryStore()
	}

	return &Runner{
		config:     opts.Config,
		store:      opts.Store,
		flow:       opts.Flow,
		storage:    opts.Storage,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, filesCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the Runner's logger (used by the TUI to log to a file).
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig reloads configuration when the command names a non-default path.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" || path == "config.toml" {
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}

	r.config = config
	r.flow = nil
	r.storage = nil
	return nil
}

// ensureFlow lazily builds the authorization flow from configured credentials.
func (r *Runner) ensureFlow() (*auth.Flow, error) {
	if r.flow != nil {
		return r.flow, nil
	}

	flow, err := auth.NewFlow(auth.FlowOpts{
		Google:     r.config.Credentials.Google,
		Store:      r.store,
		Logger:     r.logger,
		HTTPClient: r.httpClient,
	})
	if err != nil {
		return nil, err
	}

	r.flow = flow
	return flow, nil
}

// ensureStorage lazily builds the Drive gateway.
func (r *Runner) ensureStorage() (services.StorageService, error) {
	if r.storage != nil {
		return r.storage, nil
	}

	flow, err := r.ensureFlow()
	if err != nil {
		return nil, err
	}

	r.storage = services.NewDriveService(flow.Config(), r.store, r.config.Uploads.DefaultMimeType)
	return r.storage, nil
}

// openLedger opens the transfer history database, running migrations idempotently.
func (r *Runner) openLedger() (*repositories.TransferRepository, error) {
	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		r.db = db
	}

	return repositories.NewTransferRepository(r.db), nil
}

// ensureAuthenticated runs the interactive browser flow when no grant is held.
func (r *Runner) ensureAuthenticated(ctx context.Context) error {
	if r.store.Authenticated() {
		return nil
	}

	flow, err := r.ensureFlow()
	if err != nil {
		return err
	}

	return r.doOAuth(ctx, flow)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, flow *auth.Flow) error {
	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	callbackPath := "/auth/google/callback"
	if u, err := url.Parse(r.config.Credentials.Google.RedirectURI); err == nil && u.Path != "" {
		callbackPath = u.Path
	}

	authURL := flow.AuthCodeURL(state)
	callbackHandler := server.NewCallbackHandler(flow, state, callbackPath)
	router := server.NewBasicRouter()
	router.Handler(callbackHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Google authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-callbackHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	r.writePlainln("✓ Authorization successful")
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	enc := json.NewEncoder(r.output)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(line string) error {
	return r.writePlain("%s\n", line)
}
