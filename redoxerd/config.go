// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ConfigPath is the guest configuration file written by the host before
// boot.
const ConfigPath = "/etc/redoxerd"

// Config is the argument vector to execute, program name first.
type Config struct {
	Command string
	Args    []string
}

// ParseConfig reads a configuration, one token per line.
func ParseConfig(r io.Reader) (*Config, error) {
	var tokens []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(tokens) == 0 || tokens[0] == "" {
		return nil, ErrNoCommand
	}

	cfg := &Config{Command: tokens[0]}
	if len(tokens) > 1 {
		cfg.Args = tokens[1:]
	}

	return cfg, nil
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	return ParseConfig(file)
}
