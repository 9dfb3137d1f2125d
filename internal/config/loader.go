package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "OMNISEND_"
	// LocalConfigFileName is the name of the local config file
	LocalConfigFileName = ".omnisend.yaml"
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "omnisend"
	// GlobalConfigFileName is the name of the global config file
	GlobalConfigFileName = "config.yaml"
	// DotEnvFileName is the optional dotenv file read from the current directory.
	DotEnvFileName = ".env"
)

// Options selects the sources Load reads.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string

	// SkipDiscovery disables the local and global file lookup.
	SkipDiscovery bool

	// DotEnv lists dotenv files to load. Missing files are ignored.
	// Nil loads DotEnvFileName.
	DotEnv []string
}

// FindLocalConfig searches for .omnisend.yaml in the current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cwd, LocalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", nil // No config dir available
	}
	path := filepath.Join(configDir, GlobalConfigDir, GlobalConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// ConfigError represents a configuration file error.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadFile decodes a YAML file over cfg. Unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return &ConfigError{Path: path, Message: err.Error()}
	}
	cfg.Source = path
	return nil
}

// Load builds the configuration from defaults, the config file, dotenv
// files and the environment, then validates it.
// Precedence: env > config file > defaults
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path := opts.File
	if path == "" && !opts.SkipDiscovery {
		path = discover()
	}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with OMNISEND_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

func discover() string {
	if p, err := FindLocalConfig(); err == nil && p != "" {
		return p
	}
	if p, err := FindGlobalConfig(); err == nil && p != "" {
		return p
	}
	return ""
}

// loadDotEnv loads dotenv files without overriding variables already set.
func loadDotEnv(files []string) error {
	if files == nil {
		files = []string{DotEnvFileName}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("dotenv %s: %w", f, err)
		}
	}
	return nil
}
