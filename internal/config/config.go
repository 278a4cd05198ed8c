package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by output_format.
var Formats = []string{"json", "yaml", "xlsx"}

// Global configuration structure.
type Global struct {
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	// Batch fan-out
	BatchWorkers int `mapstructure:"batch_workers" yaml:"batch_workers"`
	// Folder watch
	WatchDebounceMs int `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms"`
	// Optional YAML overlay extending the built-in field vocabulary
	VocabularyFile string `mapstructure:"vocabulary_file" yaml:"vocabulary_file"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
}

// Validate checks enumerated and numeric settings.
func (c *Global) Validate() error {
	ok := false
	for _, f := range Formats {
		if c.OutputFormat == f {
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("output_format %q not supported (valid: %s)", c.OutputFormat, strings.Join(Formats, ", "))
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch_workers must be at least 1, got %d", c.BatchWorkers)
	}
	if c.WatchDebounceMs < 0 {
		return fmt.Errorf("watch_debounce_ms must not be negative, got %d", c.WatchDebounceMs)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q not supported (valid: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ecoreport"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ecoreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ECOREPORT")
	v.AutomaticEnv()

	v.SetDefault("output_dir", "")
	v.SetDefault("output_format", "json")
	v.SetDefault("batch_workers", 4)
	v.SetDefault("watch_debounce_ms", 500)
	v.SetDefault("vocabulary_file", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; an explicit file that exists must parse
	if err := v.ReadInConfig(); err != nil && cfgFile != "" && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		OutputDir:       ".",
		OutputFormat:    "json",
		BatchWorkers:    4,
		WatchDebounceMs: 500,
		LogLevel:        "info",
	}
}
