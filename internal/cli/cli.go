package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrun/pkg/buildinfo"
	"github.com/matzehuels/stackrun/pkg/cache"
	"github.com/matzehuels/stackrun/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackrun"

	// registryCacheTTL is how long a published version document is cached.
	registryCacheTTL = 24 * time.Hour

	// memoryCacheEntries bounds the in-process cache in front of disk or Redis.
	memoryCacheEntries = 512
)

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

	Out io.Writer // Command output and script stdout
	Err io.Writer // Script stderr and progress indicators

	dir string // --cwd
}

// New creates a new CLI instance whose logger writes to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    os.Stderr,
		dir:    ".",
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stackrun runs tasks across a JavaScript monorepo in dependency order",
		Long: `Stackrun discovers the packages of a JavaScript monorepo, builds their local
dependency graph and runs npm scripts or shell commands in every package,
starting each one only after the packages it depends on are done.

It reads lerna.json (or stackrun.toml) and package.json workspaces.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.dir, "cwd", "C", c.dir, "repository root")

	// Register all subcommands
	root.AddCommand(c.lsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.execCommand())
	root.AddCommand(c.publishedCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the registry cache: an in-memory LRU in front of Redis
// when cfg names a server, otherwise in front of the file cache.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	front, err := cache.NewMemoryCache(memoryCacheEntries)
	if err != nil {
		return nil, err
	}

	if cfg != nil && cfg.RedisURL != "" {
		back, err := cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
		if err == nil {
			return cache.NewTiered(front, back, time.Hour), nil
		}
		loggerFromContext(ctx).Warnf("Redis cache unavailable, using file cache: %v", err)
	}

	dir, err := cacheDir()
	if err != nil {
		return front, nil
	}
	back, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.NewTiered(front, back, time.Hour), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stackrun/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
