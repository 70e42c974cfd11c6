// Package config loads lookcfg run settings from a YAML file
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is the output file used when none is configured
const DefaultOutput = "lookcfg.cfg"

// Config holds the settings of a generate run
type Config struct {
	Inputs  []string `yaml:"inputs"`  // Package files, processed in order
	Output  string   `yaml:"output"`  // Line file, appended to when it exists
	Verbose bool     `yaml:"verbose"` // Debug logging and progress
	Strict  bool     `yaml:"strict"`  // Fail the run on any resource error
	Stdout  bool     `yaml:"stdout"`  // Also print generated lines
}

// Default returns the configuration used without a config file
func Default() Config {
	return Config{Output: DefaultOutput}
}

// Load reads a YAML config file. Missing keys keep their defaults and
// unknown keys are rejected.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that a configuration can be run
func (c Config) Validate() error {
	if c.Output == "" {
		return errors.New("output file must not be empty")
	}
	for i, in := range c.Inputs {
		if in == "" {
			return fmt.Errorf("input %d is empty", i)
		}
	}
	return nil
}
