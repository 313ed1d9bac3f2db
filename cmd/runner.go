package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/albumsync/internal/localfs"
	"github.com/desertthunder/albumsync/internal/repositories"
	"github.com/desertthunder/albumsync/internal/services"
	"github.com/desertthunder/albumsync/internal/shared"
	"github.com/desertthunder/albumsync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators left nil in [RunnerOpts] are built from the configuration on first use.
type Runner struct {
	config     *shared.Config
	configPath string
	loaded     bool
	service    services.AlbumService
	fs         localfs.Filesystem
	db         *sql.DB
	ownsDB     bool
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.AlbumService
	Filesystem localfs.Filesystem
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
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
		configPath: opts.ConfigPath,
		loaded:     loaded,
		service:    opts.Service,
		fs:         opts.Filesystem,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		uploadCommand, permsCommand, fixCommand,
		albumsCommand, albumCommand, assetCommand, whoamiCommand, statusCommand,
		historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies the global flags: log level, config file and root override.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	shared.SetLogLevel(r.logger, shared.VerbosityLevel(cmd.Bool("verbose")))

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if !r.loaded {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, fmt.Errorf("%w: %w", shared.ErrConfiguration, err)
			}
			r.config = config
			r.logger.Debug("loaded config", "path", r.configPath)
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
		r.loaded = true
	}

	if root := cmd.String("root"); root != "" {
		r.config.Library.Root = root
	}

	return ctx, nil
}

// albumService returns the injected service or builds the REST client from the configuration.
func (r *Runner) albumService() (services.AlbumService, error) {
	if r.service != nil {
		return r.service, nil
	}

	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	svc, err := services.NewPhotoServiceFromConfig(r.config, shared.WithLogger(r.logger, "component", "photos"))
	if err != nil {
		return nil, err
	}
	r.service = svc
	return svc, nil
}

// library returns the injected filesystem or the OS filesystem filtered by the library settings.
func (r *Runner) library() localfs.Filesystem {
	if r.fs == nil {
		r.fs = localfs.NewLibrary(afero.NewOsFs(), localfs.Options{
			Root:       r.config.Library.Root,
			Extensions: r.config.Library.Extensions,
			Ignore:     r.config.Library.Ignore,
		})
	}
	return r.fs
}

// database opens the journal database and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.ownsDB = true
	return db, nil
}

// Close releases the journal database if the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.ownsDB = false
	return err
}

// recorder returns the run journal, or nil when journaling is disabled or unavailable.
func (r *Runner) recorder(cmd *cli.Command) tasks.RunRecorder {
	if cmd.Bool("no-journal") {
		return nil
	}

	db, err := r.database()
	if err != nil {
		r.logger.Warn("run journal unavailable, continuing without it", "error", err)
		return nil
	}

	return repositories.NewJournalAdapter(repositories.NewRunRepository(db), repositories.NewRunItemRepository(db))
}

// resolveFolder validates a folder argument and returns it together with the library root, both absolute.
func (r *Runner) resolveFolder(folder string) (string, string, error) {
	if folder == "" {
		return "", "", fmt.Errorf("%w: folder", shared.ErrMissingArgument)
	}
	if r.config.Library.Root == "" {
		return "", "", fmt.Errorf("%w: library.root is empty (set it in the config file or pass --root)", shared.ErrConfiguration)
	}

	root, err := filepath.Abs(r.config.Library.Root)
	if err != nil {
		return "", "", fmt.Errorf("%w: library.root: %v", shared.ErrConfiguration, err)
	}
	path, err := filepath.Abs(folder)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", shared.ErrInvalidArgument, folder, err)
	}

	fsys := r.library()
	for _, dir := range []string{root, path} {
		info, err := fsys.Stat(dir)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s: %v", shared.ErrInvalidArgument, dir, err)
		}
		if !info.IsDir() {
			return "", "", fmt.Errorf("%w: %s: %w", shared.ErrInvalidArgument, dir, shared.ErrNotDirectory)
		}
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s is outside the library root %s", shared.ErrInvalidArgument, path, root)
	}

	return path, root, nil
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	return r.writeBytes(fmt.Appendf(nil, format, args...))
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writeBytes([]byte("\n" + fmt.Sprintf(format, args...) + "\n"))
}
