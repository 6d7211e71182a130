// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package config resolves the harness configuration from, in increasing
// precedence: built-in defaults, an optional YAML config file, a .env file
// in the working directory and REDOXER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// EnvConfigFile overrides the config file location.
const EnvConfigFile = "REDOXER_CONFIG"

// Config is the resolved harness configuration.
type Config struct {
	Target         sys.Target `yaml:"target"`
	CacheDir       string     `yaml:"cache_dir"`
	QemuBinary     string     `yaml:"qemu_binary"`
	QemuArgs       []string   `yaml:"qemu_args"`
	Fuse           *bool      `yaml:"fuse"`
	ToolchainURL   string     `yaml:"toolchain_url"`
	LocalToolchain string     `yaml:"local_toolchain"`
	Debug          bool       `yaml:"debug"`
}

// Load resolves the configuration.
func Load() (*Config, error) {
	// A .env in the working directory feeds the variable overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{Target: sys.TargetFromEnv()}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile() error {
	path := os.Getenv(EnvConfigFile)
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil
		}

		path = filepath.Join(base, "redoxer", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("REDOXER_TARGET"); v != "" {
		if err := c.Target.Set(v); err != nil {
			return fmt.Errorf("REDOXER_TARGET: %w", err)
		}
	}

	if v := os.Getenv("REDOXER_CACHE"); v != "" {
		c.CacheDir = v
	}

	if v := os.Getenv("REDOXER_QEMU"); v != "" {
		c.QemuBinary = v
	}

	if v := os.Getenv("REDOXER_QEMU_ARGS"); v != "" {
		c.QemuArgs = strings.Fields(v)
	}

	if v := os.Getenv("REDOXER_FUSE"); v != "" {
		fuse, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REDOXER_FUSE: %w", err)
		}

		c.Fuse = &fuse
	}

	if v := os.Getenv("REDOXER_TOOLCHAIN"); v != "" {
		c.LocalToolchain = v
	}

	if v := os.Getenv("REDOXER_TOOLCHAIN_URL"); v != "" {
		c.ToolchainURL = v
	}

	if v := os.Getenv("REDOXER_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REDOXER_DEBUG: %w", err)
		}

		c.Debug = debug
	}

	return nil
}

// UseFuse reports whether images should be built through the mounted FUSE
// backend. Unset, it follows the availability of /dev/fuse.
func (c *Config) UseFuse() bool {
	if c.Fuse != nil {
		return *c.Fuse
	}

	_, err := os.Stat("/dev/fuse")

	return err == nil
}

// Qemu returns the emulator binary to launch for the configured target.
func (c *Config) Qemu() string {
	if c.QemuBinary != "" {
		return c.QemuBinary
	}

	return c.Target.QemuExecutable()
}
