package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/pipeline"
)

// Config holds the CLI configuration, loaded from the TOML config file
// with environment variable overrides. Flags take precedence over both.
type Config struct {
	// URL is the default tile server.
	URL string `toml:"url"`

	// Token is a static bearer token. Most setups use `seisview auth login`
	// or SharedKey instead.
	Token string `toml:"token,omitempty"`

	// SharedKey signs short-lived tokens for servers run with --sign-key.
	SharedKey string `toml:"shared_key,omitempty"`

	// ClientID and Authority override what the server's /config reports,
	// for authorities the server does not advertise.
	ClientID  string `toml:"client_id,omitempty"`
	Authority string `toml:"authority,omitempty"`

	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// RedisURL is the redis connection URL (redis://host:port/db).
	RedisURL string `toml:"redis_url,omitempty"`
}

// RenderConfig holds default render settings, overridable per command.
type RenderConfig struct {
	Colormap     string `toml:"colormap"`
	Scale        int    `toml:"scale"`
	Transpose    bool   `toml:"transpose,omitempty"`
	FlipVertical bool   `toml:"flip_vertical,omitempty"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		URL:    "http://localhost:8080",
		Cache:  CacheConfig{Backend: "file"},
		Render: RenderConfig{Colormap: pipeline.DefaultColormap, Scale: pipeline.DefaultScale},
	}
}

// configPath returns the config file location (~/.config/seisview/config.toml).
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfig reads the config file and applies environment overrides.
// A missing file is not an error: defaults apply.
func loadConfig() (*Config, error) {
	cfg := defaultConfig()

	path, err := configPath()
	if err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("SEISVIEW_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("SEISVIEW_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("SEISVIEW_SHARED_KEY"); v != "" {
		cfg.SharedKey = v
	}
	if v := os.Getenv("SEISVIEW_REDIS_ADDR"); v != "" {
		cfg.Cache.Backend = "redis"
		cfg.Cache.RedisURL = v
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	return cfg, nil
}

// defaultConfigFile is written by `seisview config init`.
const defaultConfigFile = `# seisview configuration

# Default tile server.
url = "http://localhost:8080"

# Static bearer token. Usually left empty: use 'seisview auth login',
# or shared_key for servers run with --sign-key.
# token = ""
# shared_key = ""

# Device-flow authority override. Normally discovered from the server.
# client_id = ""
# authority = ""

[cache]
# "file" (default), "redis", or "none".
backend = "file"
# redis_url = "redis://localhost:6379/0"

[render]
colormap = "seismic"
scale = 1
# transpose = true
# flip_vertical = true
`

// =============================================================================
// Commands
// =============================================================================

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage seisview configuration",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			printKeyValue("URL", cfg.URL)
			printKeyValue("Token", maskSecret(cfg.Token))
			printKeyValue("Shared key", maskSecret(cfg.SharedKey))
			if cfg.ClientID != "" {
				printKeyValue("Client ID", cfg.ClientID)
			}
			if cfg.Authority != "" {
				printKeyValue("Authority", cfg.Authority)
			}
			printKeyValue("Cache", cfg.Cache.Backend)
			if cfg.Cache.Backend == "redis" {
				printKeyValue("Redis", cfg.Cache.RedisURL)
			}
			printKeyValue("Colormap", cfg.Render.Colormap)
			printKeyValue("Scale", fmt.Sprintf("%d", cfg.Render.Scale))
			return nil
		},
	}
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				printInfo("Config already exists")
				printDetail("%s (use --force to overwrite)", path)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(path, []byte(defaultConfigFile), 0o600); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// maskSecret hides all but a short prefix of a credential.
func maskSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}
