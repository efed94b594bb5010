package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/photomirror/photomirror/internal/cache"
	"github.com/photomirror/photomirror/internal/formatter"
	"github.com/photomirror/photomirror/internal/services"
	"github.com/photomirror/photomirror/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	remote services.RemoteClient
	tokens services.TokenProvider
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
// Remote and Tokens are optional; when unset the production client is
// built on demand from the loaded config.
type RunnerOpts struct {
	Config *shared.Config
	Remote services.RemoteClient
	Tokens services.TokenProvider
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		remote: opts.Remote,
		tokens: opts.Tokens,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, watchCommand, listCommand,
		searchCommand, favoriteCommand, albumsCommand, facesCommand,
		statsCommand, clearCommand, exportCommand, importCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the per-command config flag, falling back to the
// runner's config when the file is absent.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}
	if _, err := os.Stat(configPath); err != nil {
		return r.config
	}
	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		return r.config
	}
	return config
}

// openStore opens the cache database and returns the store plus a close
// function.
func (r *Runner) openStore(config *shared.Config) (*cache.Store, func(), error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return cache.NewStore(db), func() { db.Close() }, nil
}

// ensureRemote returns the remote client and token provider, building the
// production pair from config when none were injected.
func (r *Runner) ensureRemote(config *shared.Config) (services.RemoteClient, services.TokenProvider, error) {
	if r.remote != nil && r.tokens != nil {
		return r.remote, r.tokens, nil
	}

	tokenFile := config.TokenFile()
	if tokenFile == "" {
		return nil, nil, fmt.Errorf("%w: auth.token_store must be \"file\" for remote operations", shared.ErrMissingConfig)
	}

	tokens, err := services.NewFileTokenProvider(config.Auth, tokenFile)
	if err != nil {
		return nil, nil, err
	}

	remote := services.NewPhotosClient(config.Remote.BaseURL, tokens, r.logger)
	return remote, tokens, nil
}

func (r *Runner) writeJSON(data any) error {
	output, err := formatter.ToJSON(data)
	if err != nil {
		return err
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
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
