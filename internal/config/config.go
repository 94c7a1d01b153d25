// Package config loads the YAML configuration of the pype command.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the default config path.
const EnvPath = "PYPE_CONFIG"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings the command line can also override.
type Config struct {
	LogLevel     string `yaml:"log_level"`
	NoLog        bool   `yaml:"no_log"`
	NoAuto       bool   `yaml:"no_auto"`
	ExitOnError  *bool  `yaml:"exit_on_error"`
	Dot          string `yaml:"dot"`
	Measure      bool   `yaml:"measure"`
	CheckWorkers int    `yaml:"check_workers"`
}

func Default() Config {
	exitOnError := true
	return Config{
		LogLevel:    "info",
		ExitOnError: &exitOnError,
	}
}

// Load reads path, or the file named by PYPE_CONFIG when path is empty.
// Without either the default configuration is returned.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config %s", path)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if cfg.CheckWorkers < 0 {
		return Config{}, errors.Wrap(ErrInvalidConfig, "check_workers must not be negative")
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	if cfg.ExitOnError == nil {
		cfg.ExitOnError = Default().ExitOnError
	}
	return cfg, nil
}

// Level parses LogLevel, one of debug, info, warn or error.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, errors.Wrapf(ErrInvalidConfig, "log_level %q", c.LogLevel)
	}
	return level, nil
}

// ExitsOnError reports whether a failing pipeline terminates the process.
func (c Config) ExitsOnError() bool {
	return c.ExitOnError == nil || *c.ExitOnError
}
