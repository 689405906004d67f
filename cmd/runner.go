package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The session store, client and manager are built lazily so commands that never talk to the catalog
// (setup, dev serve) do not open the database.
type Runner struct {
	config     *shared.Config
	configured bool
	configPath string
	ephemeral  bool

	store   session.Store
	client  *services.Client
	catalog services.CatalogService
	session *session.Manager
	db      *sql.DB

	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Any dependency left nil is built from the configuration on first use.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      session.Store
	Client     *services.Client
	Catalog    services.CatalogService
	Session    *session.Manager
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	configured := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configured: configured,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		client:     opts.Client,
		catalog:    opts.Catalog,
		session:    opts.Session,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, favoritesCommand, watchLaterCommand, tuiCommand, devCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "mvx",
		Usage:    "Browse the movie catalog, manage favorites and watch-later from the terminal",
		Version:  "0.3.0",
		Flags:    globalFlags(),
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

// Before applies the global flags: log level, configuration file, API URL override and store selection.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	r.ephemeral = cmd.Bool("ephemeral")

	if !r.configured {
		config, err := r.loadConfig()
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if u := strings.TrimSpace(cmd.String("api-url")); u != "" {
		r.config.Catalog.BaseURL = u
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	r.logger.Debug("configuration loaded", "path", r.configPath, "api", r.config.Catalog.BaseURL, "ephemeral", r.ephemeral)
	return ctx, nil
}

// After releases the session subscription and the database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close releases resources built by [Runner.connect].
func (r *Runner) Close() error {
	if r.session != nil {
		r.session.Close()
	}
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// loadConfig reads the file at configPath, falling back to defaults when it does not exist.
func (r *Runner) loadConfig() (*shared.Config, error) {
	var config *shared.Config
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidConfig, err)
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		config = shared.DefaultConfig()
	}
	config.ApplyEnv()
	return config, nil
}

// connect builds the session store, client pipeline and session manager.
func (r *Runner) connect() error {
	if r.session != nil {
		return nil
	}

	if r.store == nil {
		if r.ephemeral {
			r.store = session.NewMemoryStore()
		} else {
			db, err := shared.OpenMigrated(r.config.Database)
			if err != nil {
				return fmt.Errorf("%w: %w", shared.ErrStorageUnavailable, err)
			}
			r.db = db
			r.store = session.NewSQLiteStore(db, r.logger)
		}
	}

	// The manager and the pipeline share one guard so a logout that fails to reach storage is still honored.
	tokens := session.NewGuardedStore(r.store)

	if r.client == nil {
		r.client = services.NewClientFromConfig(r.config.Catalog, tokens, r.logger)
	}
	if r.catalog == nil {
		r.catalog = services.NewCatalog(r.client)
	}

	r.session = session.NewManager(tokens, r.catalog, r.client, r.logger)
	return nil
}

// requireLogin connects and fails with [shared.ErrNotAuthenticated] when there is no session.
func (r *Runner) requireLogin() error {
	if err := r.connect(); err != nil {
		return err
	}
	if !r.session.IsAuthenticated() {
		return fmt.Errorf("%w: run 'mvx auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// outputFor returns the writer for --output, or the runner's output when the flag is empty.
func (r *Runner) outputFor(cmd *cli.Command) (io.Writer, func() error, error) {
	path := cmd.String("output")
	if path == "" {
		return r.output, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	r.logger.Debug("writing output", "path", path)
	return f, f.Close, nil
}

func (r *Runner) writeList(cmd *cli.Command, v formatter.ListView) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	w, done, err := r.outputFor(cmd)
	if err != nil {
		return err
	}
	return errors.Join(formatter.WriteList(w, format, v), done())
}

func (r *Runner) writeDetail(cmd *cli.Command, v formatter.DetailView) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	w, done, err := r.outputFor(cmd)
	if err != nil {
		return err
	}
	return errors.Join(formatter.WriteDetail(w, format, v), done())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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
