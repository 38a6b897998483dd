// Package config provides loading and parsing of the keeperd configuration
// file using Viper. It defines the full configuration schema and exposes
// the derived values the daemon wires into the dispatcher and the admin
// command layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/flwd/keeperd/internal/keeper"
	"github.com/flwd/keeperd/internal/logging"
)

// Version is the server version reported by the monitoring commands.
// Overridden at release build time via -ldflags.
var Version = "keeperd-0.1.0"

// Config represents the full structure of the keeperd configuration file.
type Config struct {
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
	Admin   AdminConfig    `mapstructure:"admin" yaml:"admin"`
	Storage StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Logger  logging.Config `mapstructure:"logger" yaml:"logger"`
}

// ServerConfig holds the serving identity of this instance. Role and
// read-only mode belong to the consensus layer in a clustered deployment;
// standalone deployments pin them here.
type ServerConfig struct {
	ID       int    `mapstructure:"id" yaml:"id"`
	Role     string `mapstructure:"role" yaml:"role"`
	ReadOnly bool   `mapstructure:"read_only" yaml:"read_only"`
}

// AdminConfig configures the four-letter command listener.
type AdminConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
	// WhiteList is the comma-separated list of enabled four-letter
	// commands, or "*" for all. An absent key also means all: an empty
	// whitelist would silently disable every command.
	WhiteList string `mapstructure:"four_letter_word_white_list" yaml:"four_letter_word_white_list"`
}

// StorageConfig points at the on-disk snapshot and log directories.
type StorageConfig struct {
	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
	LogDir      string `mapstructure:"log_dir" yaml:"log_dir"`
}

// Default returns the configuration used when no file is present; also the
// template emitted by keeperctl genconfig.
func Default() *Config {
	return &Config{
		Server: ServerConfig{ID: 1, Role: string(keeper.RoleStandalone)},
		Admin: AdminConfig{
			Listen:    "127.0.0.1:2181",
			WhiteList: "*",
		},
		Storage: StorageConfig{
			SnapshotDir: "/var/lib/keeperd/snapshots",
			LogDir:      "/var/lib/keeperd/logs",
		},
		Logger: logging.Config{Level: "info", ToStdout: true},
	}
}

// Load reads the keeperd configuration using Viper. path overrides the
// search; otherwise $KEEPERD_CONFIG, ~/.keeperd and /etc/keeperd are
// checked in order, and a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("keeperd")
	v.SetConfigType("yaml")

	setDefaults(v)

	switch {
	case path != "":
		v.SetConfigFile(path)
	case os.Getenv("KEEPERD_CONFIG") != "":
		v.SetConfigFile(os.Getenv("KEEPERD_CONFIG"))
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".keeperd"))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/keeperd")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return Default(), nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("server.id", def.Server.ID)
	v.SetDefault("server.role", def.Server.Role)
	v.SetDefault("server.read_only", def.Server.ReadOnly)
	v.SetDefault("admin.listen", def.Admin.Listen)
	v.SetDefault("admin.four_letter_word_white_list", def.Admin.WhiteList)
	v.SetDefault("storage.snapshot_dir", def.Storage.SnapshotDir)
	v.SetDefault("storage.log_dir", def.Storage.LogDir)
	v.SetDefault("logger.level", def.Logger.Level)
	v.SetDefault("logger.to_stdout", def.Logger.ToStdout)
}

// WhiteList parses the comma-separated whitelist setting into command
// names. An empty setting resolves to nil, the allow-all sentinel.
func (c *Config) WhiteList() []string {
	raw := strings.TrimSpace(c.Admin.WhiteList)
	if raw == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Role maps the configured role string onto the keeper role, defaulting to
// standalone for anything unrecognized.
func (c *Config) Role() keeper.Role {
	switch c.Server.Role {
	case string(keeper.RoleLeader):
		return keeper.RoleLeader
	case string(keeper.RoleFollower):
		return keeper.RoleFollower
	default:
		return keeper.RoleStandalone
	}
}

// Entries flattens the effective configuration into the ordered key=value
// snapshot served by the conf command.
func (c *Config) Entries() []keeper.ConfigEntry {
	return []keeper.ConfigEntry{
		{Key: "server_id", Value: strconv.Itoa(c.Server.ID)},
		{Key: "role", Value: c.Server.Role},
		{Key: "read_only", Value: strconv.FormatBool(c.Server.ReadOnly)},
		{Key: "admin_listen", Value: c.Admin.Listen},
		{Key: "four_letter_word_white_list", Value: c.Admin.WhiteList},
		{Key: "snapshot_dir", Value: c.Storage.SnapshotDir},
		{Key: "log_dir", Value: c.Storage.LogDir},
		{Key: "log_level", Value: c.Logger.Level},
	}
}
