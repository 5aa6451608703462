// Package config loads wipecert runtime configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sample configures the evidence window.
type Sample struct {
	Offset int64 `yaml:"offset"`
	Length int   `yaml:"length"`
}

// Log configures CLI logging.
type Log struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// Config holds runtime settings. Zero values fall back to defaults.
type Config struct {
	RegistryPath   string `yaml:"registry_path"`
	KeyPath        string `yaml:"key_path"`
	PublicKeyPath  string `yaml:"public_key_path"`
	Algorithm      string `yaml:"algorithm"`
	ListenAddr     string `yaml:"listen_addr"`
	ReadTimeoutSec int    `yaml:"read_timeout_sec"`
	Sample         Sample `yaml:"sample"`
	Log            Log    `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		RegistryPath:   "wipecert.db",
		Algorithm:      "ecdsa",
		ListenAddr:     ":8080",
		ReadTimeoutSec: 30,
		Sample:         Sample{Offset: 0, Length: 4096},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not an
// error; an unreadable or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	if c.RegistryPath == "" {
		return fmt.Errorf("invalid registry_path: must not be empty")
	}
	if c.Sample.Length <= 0 {
		return fmt.Errorf("invalid sample.length: must be > 0")
	}
	if c.Sample.Offset < 0 {
		return fmt.Errorf("invalid sample.offset: must be >= 0")
	}
	if c.ReadTimeoutSec <= 0 {
		return fmt.Errorf("invalid read_timeout_sec: must be > 0")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("invalid listen_addr: must not be empty")
	}
	return nil
}
