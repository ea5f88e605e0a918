package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/syslex/artitracker/internal/config"
	"github.com/syslex/artitracker/pkg/buildinfo"
	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/pipeline"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
	"github.com/syslex/artitracker/pkg/store/mongo"
	"github.com/syslex/artitracker/pkg/store/postgres"
	"github.com/syslex/artitracker/pkg/store/redis"
	"github.com/syslex/artitracker/pkg/store/s3"
)

// =============================================================================
// Constants
// =============================================================================

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          buildinfo.Name,
		Short:        "Artitracker reports the artifacts a Maven project is made of",
		Long:         `Artitracker reads a project's pom.xml and produces a normalized report of the project's identity, its Java version and every artifact it references as parent, dependency or build plugin. Reports can be printed, kept in a local history, or published to a tracking server.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/artitracker/config.toml)")

	root.AddCommand(c.reportCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded settings, or the defaults when no command
// hook ran.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Pipeline
// =============================================================================

// collect runs the pipeline on path with generator metadata attached.
func (c *CLI) collect(ctx context.Context, path string) (*pipeline.Result, error) {
	return pipeline.NewRunner(c.Logger).Execute(ctx, pipeline.Options{
		Path:      path,
		Generator: c.generator(),
	})
}

// generator looks up the packaged metadata. A failed lookup is logged and
// leaves name and version absent.
func (c *CLI) generator() *report.Generator {
	gen, err := buildinfo.Lookup()
	if err != nil {
		c.Logger.Warn("could not read generator metadata", "err", err)
	}
	return gen
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the configured history backend.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	sc := c.config().Store
	backend, err := store.ParseBackend(sc.Backend)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opening report store", "backend", backend)

	switch backend {
	case store.BackendMemory:
		return store.NewMemoryStore(), nil
	case store.BackendFile:
		dir := sc.Dir
		if dir == "" {
			if dir, err = store.DefaultDir(); err != nil {
				return nil, err
			}
		}
		return store.NewFileStore(dir, c.Logger)
	case store.BackendRedis:
		return redis.New(ctx, redis.Config{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
			Prefix:   sc.Redis.Prefix,
			TTL:      sc.Redis.TTL.Duration,
		})
	case store.BackendMongo:
		return mongo.New(ctx, mongo.Config{
			URI:        sc.Mongo.URI,
			Database:   sc.Mongo.Database,
			Collection: sc.Mongo.Collection,
		})
	case store.BackendS3:
		return s3.New(s3.Config{
			Endpoint:  sc.S3.Endpoint,
			Region:    sc.S3.Region,
			AccessKey: sc.S3.AccessKey,
			SecretKey: sc.S3.SecretKey,
			Bucket:    sc.S3.Bucket,
			UseSSL:    sc.S3.UseSSL,
		})
	case store.BackendPostgres:
		return postgres.New(ctx, sc.Postgres.DSN)
	default:
		return nil, aterrors.New(aterrors.ErrCodeUnsupported, "store backend %q", backend)
	}
}

// closeStore closes s, logging failures.
func (c *CLI) closeStore(s store.Store) {
	if err := s.Close(); err != nil {
		c.Logger.Warn("close report store", "err", err)
	}
}
