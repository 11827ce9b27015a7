// Package config loads ascmhl-go's configuration from a single explicit
// file, specified by the ASCMHL_CONFIG environment variable or the --config
// flag. There is no implicit discovery (no walking up from cwd looking for
// a dotfile): a named file that cannot be read is a ConfigError, not a
// fallback to defaults. When neither the flag nor the variable names a
// file, the built-in defaults apply.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pomfort/ascmhl-go/internals"
)

// Config is ascmhl-go's configuration document.
type Config struct {
	// Algorithm is the default primary algorithm for `create`, used when
	// -h is not passed on the command line.
	Algorithm string `yaml:"algorithm"`

	// Workers bounds the hashing worker pool. Zero means "use GOMAXPROCS".
	Workers int `yaml:"workers"`

	// Ignore lists additional glob patterns skipped by the walker, beyond
	// the fixed platform-metadata list.
	Ignore []string `yaml:"ignore"`

	// SkipDirectoryHashes disables directory digest computation by
	// default (equivalent to always passing -n).
	SkipDirectoryHashes bool `yaml:"skip_directory_hashes"`

	// HostName overrides the creator metadata's host name; empty means
	// "ask the operating system".
	HostName string `yaml:"host_name"`
}

// Default returns the configuration used when no file overrides a field.
func Default() *Config {
	return &Config{
		Algorithm: string(internals.AlgoXXH64),
		Workers:   0,
		Ignore:    nil,
	}
}

// EnvVar is the environment variable carrying the config file path.
const EnvVar = "ASCMHL_CONFIG"

// Resolve loads the config file at explicitPath, or — if empty — at the
// path named by ASCMHL_CONFIG. When both are empty it returns Default():
// ascmhl-go never guesses a config file's location.
func Resolve(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config document at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &internals.ConfigError{Reason: fmt.Sprintf("reading config file %s: %s", path, err)}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &internals.ConfigError{Reason: fmt.Sprintf("parsing config file %s: %s", path, err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects a config naming an algorithm the engine does not
// recognize.
func (c *Config) Validate() error {
	if !internals.IsSupportedAlgorithm(internals.Algorithm(c.Algorithm)) {
		return &internals.ConfigError{Reason: "unknown algorithm in config: " + c.Algorithm}
	}
	if c.Workers < 0 {
		return &internals.ConfigError{Reason: "workers must not be negative"}
	}
	return nil
}

// IgnoreMatcher builds the internals.IgnoreMatcher for this config's
// patterns.
func (c *Config) IgnoreMatcher() internals.IgnoreMatcher {
	if len(c.Ignore) == 0 {
		return nil
	}
	return internals.PatternIgnore{Patterns: c.Ignore}
}

// ResolvedHostName returns HostName, falling back to os.Hostname().
func (c *Config) ResolvedHostName() string {
	if c.HostName != "" {
		return c.HostName
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
