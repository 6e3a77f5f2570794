// Package cli implements the seisview command-line interface.
//
// This package provides commands for querying seismic slices from a tile
// server, reassembling saved payloads offline, rendering matrices as
// images or terminal previews, and managing configuration, sessions, and
// the local cache. The CLI is built using cobra and logs through the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - query: Fetch, assemble, and render a slice from a server
//   - assemble: Reassemble a saved tiles payload offline
//   - render: Render a saved matrix as PNG or a terminal preview
//   - manifest: Show a survey's dimensions
//   - browse: Interactive slice viewer
//   - serve: Run the demo tile server
//   - auth, config, cache: Manage credentials, settings, and cached data
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/buildinfo"
	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/errors"
	"github.com/seisview/seisview/pkg/pipeline"
	"github.com/seisview/seisview/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "seisview"

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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "seisview",
		Short:   "Seisview fetches and renders seismic slices",
		Long:    `Seisview is a client for tiled seismic slice servers: it fetches fragmented slice responses, reassembles them into matrices, and renders them as images or in the terminal.`,
		Version: buildinfo.Version,
		// main prints returned errors once; without SilenceErrors cobra
		// would print them a second time.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.assembleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.manifestCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner on the given cache backend, which
// commands share with their query client so one cache serves both HTTP
// responses and pipeline artifacts. Cache keys are scoped to the
// logged-in user when a session exists, so switching accounts never
// serves another user's cached responses.
func (c *CLI) newRunner(backend cache.Cache) *pipeline.Runner {
	var keyer cache.Keyer
	if prefix := sessionScope(); prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix+":")
	}
	return pipeline.NewRunner(backend, keyer, c.Logger)
}

// resolveServerURL applies the config fallback to the --url flag and
// validates the result before any request is built from it.
func resolveServerURL(flagValue string, cfg *Config) (string, error) {
	url := flagValue
	if url == "" {
		url = cfg.URL
	}
	if err := errors.ValidateURL(url); err != nil {
		return "", err
	}
	return url, nil
}

func newCache(cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(cfg.Cache.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// sessionScope returns the cache key prefix for the current session, or
// "" when not logged in.
func sessionScope() string {
	store, err := session.NewCLIStore()
	if err != nil {
		return ""
	}
	sess, err := store.GetSession(context.Background())
	if err != nil || sess == nil {
		return ""
	}
	return sess.UserID()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/seisview/).
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

// configDir returns the config directory using XDG standard (~/.config/seisview/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
