package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lunamoth/cadenza/internal/providers"
	"github.com/lunamoth/cadenza/internal/repositories"
	"github.com/lunamoth/cadenza/internal/shared"
	"github.com/lunamoth/cadenza/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, repository, provider, and engine are built lazily on first
// use, so commands that never touch them leave no side effects.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db       *sql.DB
	entries  *repositories.EntryRepository
	provider providers.Provider
	artwork  *providers.ArtworkFetcher
	engine   *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Provider   providers.Provider
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		provider:   opts.Provider,
	}
}

// SetLogger swaps the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// openDatabase opens the library database once and memoizes the handle.
func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// entryRepo returns the entry repository, opening the database if needed.
func (r *Runner) entryRepo() (*repositories.EntryRepository, error) {
	if r.entries != nil {
		return r.entries, nil
	}

	db, err := r.openDatabase()
	if err != nil {
		return nil, err
	}
	r.entries = repositories.NewEntryRepository(db)
	return r.entries, nil
}

// catalogProvider returns the metadata provider, building it from config on
// first use.
func (r *Runner) catalogProvider(ctx context.Context) (providers.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}

	provider, err := providers.NewSpotifyProvider(ctx, r.config.Provider)
	if err != nil {
		return nil, err
	}
	r.provider = provider
	return provider, nil
}

// syncEngine wires the sync engine with limits taken from config.
func (r *Runner) syncEngine(ctx context.Context) (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	repo, err := r.entryRepo()
	if err != nil {
		return nil, err
	}
	provider, err := r.catalogProvider(ctx)
	if err != nil {
		return nil, err
	}
	if r.artwork == nil {
		r.artwork = providers.NewArtworkFetcher(r.httpClient)
	}

	engine := tasks.NewEngine(repo, provider, r.artwork)
	engine.SetSearchLimits(tasks.SearchLimits().WithConfig(r.config.Sync.Search))
	engine.SetApplyLimits(tasks.ApplyLimits().WithConfig(r.config.Sync.Apply))
	r.engine = engine
	return engine, nil
}

// Close releases the database handle if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.entries = nil
	r.engine = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, libraryCommand, syncCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
