package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/session"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// configFileName is the config file name inside the config directory.
const configFileName = "config.toml"

// Config is the content of the TOML config file. Command-line flags
// override it; it overrides the pipeline defaults.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig holds default tiling settings.
type LayoutConfig struct {
	Width          float64 `toml:"width"`
	BaseWidth      float64 `toml:"base_width"`
	BaseHeight     float64 `toml:"base_height"`
	Spacing        float64 `toml:"spacing"`
	MaxFailedTimes int     `toml:"max_failed_times"`
	CenterSpacing  bool    `toml:"center_spacing"`
}

// ServerConfig holds defaults for tileme serve.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	Sessions   string `toml:"sessions"`
	Archive    string `toml:"archive"`
	Cache      string `toml:"cache"`
	RedisAddr  string `toml:"redis_addr"`
	MongoURI   string `toml:"mongo_uri"`
	SessionTTL string `toml:"session_ttl"`
}

// CacheConfig controls the CLI's file cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	def := tiler.DefaultConfig()
	return Config{
		Layout: LayoutConfig{
			Width:          pipeline.DefaultWidth,
			BaseWidth:      def.BaseWidth,
			BaseHeight:     def.BaseHeight,
			Spacing:        def.Spacing,
			MaxFailedTimes: def.MaxFailedTimes,
			CenterSpacing:  def.CenterSpacing,
		},
		Server: ServerConfig{
			Addr:       ":8080",
			Sessions:   storeMemory,
			Archive:    storeMemory,
			Cache:      storeMemory,
			RedisAddr:  "localhost:6379",
			MongoURI:   "mongodb://localhost:27017",
			SessionTTL: session.DefaultTTL.String(),
		},
	}
}

// TilerConfig converts the layout section to a tiler configuration.
func (l LayoutConfig) TilerConfig() tiler.Config {
	return tiler.Config{
		BaseWidth:      l.BaseWidth,
		BaseHeight:     l.BaseHeight,
		Spacing:        l.Spacing,
		MaxFailedTimes: l.MaxFailedTimes,
		CenterSpacing:  l.CenterSpacing,
	}.WithDefaults()
}

// defaultConfigPath returns $XDG_CONFIG_HOME/tileme/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// loadConfig reads the config file at path on top of the defaults. An
// empty path means the default location, where a missing file is fine; a
// missing explicit path is an error.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// encodeConfig renders cfg as TOML.
func encodeConfig(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := encodeConfig(c.Config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := defaultConfigPath()
				if err != nil {
					return fmt.Errorf("get config dir: %w", err)
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}

			data, err := encodeConfig(DefaultConfig())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			printSuccess("Wrote config")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := defaultConfigPath()
				if err != nil {
					return fmt.Errorf("get config dir: %w", err)
				}
				path = p
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
