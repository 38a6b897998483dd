package admincli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is keeperctl's own small configuration file, read from
// $KEEPERCTL_CONFIG or ~/.keeperd/keeperctl.yaml. A missing file yields the
// defaults.
type Config struct {
	Addr           string `yaml:"addr"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DefaultConfig targets a local keeperd on the default admin port.
func DefaultConfig() *Config {
	return &Config{Addr: "127.0.0.1:2181", TimeoutSeconds: 5}
}

// LoadConfig reads the keeperctl configuration.
func LoadConfig() (*Config, error) {
	path := os.Getenv("KEEPERCTL_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".keeperd", "keeperctl.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout converts the configured timeout into a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
