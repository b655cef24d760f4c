// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the interpreter's rc file.
//
// The rc file is YAML. It seeds variables, environment variables and aliases,
// and sets the prompt, history and debugging options. Local files are read
// through FsFactory; anything that looks like a go-getter URL is fetched.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/tinsh/internal/ctxlog"
	"github.com/matt-FFFFFF/tinsh/internal/symtable"
	"github.com/spf13/afero"
)

const (
	// DefaultFileName is the rc file looked up in the home directory.
	DefaultFileName = ".tinshrc.yaml"
	// DefaultPrompt is expanded like a command line before it is shown.
	DefaultPrompt = "tinsh:(PWD)> "
	// DefaultHistoryFileName is the history file kept in the home directory.
	DefaultHistoryFileName = ".tinsh_history"
	// DefaultHistoryLimit is the number of lines kept in the history.
	DefaultHistoryLimit = 1000
)

var (
	// ErrReadConfigFile is returned when the rc file cannot be read.
	ErrReadConfigFile = errors.New("failed to read config file")
	// ErrInvalidYaml is returned when the rc file is not valid YAML.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidConfig is returned when the rc file has invalid values.
	ErrInvalidConfig = errors.New("invalid config")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Config is the rc file contents.
type Config struct {
	Prompt       string            `yaml:"prompt"`
	Debug        bool              `yaml:"debug"`
	Color        *bool             `yaml:"color,omitempty"`
	HistoryFile  string            `yaml:"history_file"`
	HistoryLimit int               `yaml:"history_limit"`
	Vars         map[string]string `yaml:"vars,omitempty"`
	Env          map[string]string `yaml:"env,omitempty"`
	Aliases      map[string]string `yaml:"aliases,omitempty"`
}

// Default returns the configuration used when there is no rc file.
func Default() *Config {
	return &Config{
		Prompt:       DefaultPrompt,
		HistoryFile:  filepath.Join(homeDir(), DefaultHistoryFileName),
		HistoryLimit: DefaultHistoryLimit,
	}
}

// DefaultPath returns the rc file path in the user's home directory.
func DefaultPath() string {
	return filepath.Join(homeDir(), DefaultFileName)
}

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}

	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return h
}

// Load reads the rc file at path. An empty path means DefaultPath, and a
// missing default rc file is not an error.
func Load(ctx context.Context, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	logger := ctxlog.Logger(ctx).With("path", path)

	var (
		data []byte
		err  error
	)

	if isGetterURL(path) {
		logger.Debug("fetching config")

		data, err = Fetch(ctx, path)
	} else {
		logger.Debug("reading config")

		data, err = afero.ReadFile(FsFactory(), path)
		if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file, using defaults")
			return Default(), nil
		}
	}

	if err != nil {
		return nil, errors.Join(ErrReadConfigFile, err)
	}

	return Parse(data)
}

// Parse decodes rc file contents on top of the defaults and validates them.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.HistoryLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: history_limit must not be negative, got %d", ErrInvalidConfig, c.HistoryLimit))
	}

	for section, m := range map[string]map[string]string{"vars": c.Vars, "env": c.Env, "aliases": c.Aliases} {
		for name := range m {
			if !symtable.ValidName(name) {
				result = multierror.Append(result, fmt.Errorf("%w: %s: invalid name %q", ErrInvalidConfig, section, name))
			}
		}
	}

	return result.ErrorOrNil()
}

// Apply seeds the symbol table and the process environment.
func (c *Config) Apply(st *symtable.Table) error {
	var result *multierror.Error

	for k, v := range c.Env {
		if err := st.Set(k, v, symtable.ScopeEnvironment); err != nil {
			result = multierror.Append(result, fmt.Errorf("env %s: %w", k, err))
		}
	}

	for k, v := range c.Vars {
		if err := st.Set(k, v, symtable.ScopeGlobal); err != nil {
			result = multierror.Append(result, fmt.Errorf("var %s: %w", k, err))
		}
	}

	for k, v := range c.Aliases {
		if err := st.SetAlias(k, v); err != nil {
			result = multierror.Append(result, fmt.Errorf("alias %s: %w", k, err))
		}
	}

	if c.Debug {
		if err := st.Set(DebugVar, "1", symtable.ScopeGlobal); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// DebugVar is the variable that turns on line-numbered diagnostics.
const DebugVar = "debug"

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c) //nolint:wrapcheck
}

func isGetterURL(path string) bool {
	return strings.Contains(path, "::") || strings.Contains(path, "://")
}
