// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all planner settings. Consuming programs either construct
// a Config in Go code and pass it to New(), or place a cordwain.yaml at
// the repository root and call LoadConfig().
type Config struct {
	// Repo is the GitHub owner/repo issues are created on. If empty, the
	// repo is detected from `gh repo view` and then the go.mod module path.
	Repo string `yaml:"repo"`

	// ScratchDir is the cordwain scratch directory (default ".cordwain/").
	// Snapshots, run history, and the orchestrator log live here.
	ScratchDir string `yaml:"scratch_dir"`

	// MaxInitiatives caps the number of initiatives requested from the
	// model (default 7).
	MaxInitiatives int `yaml:"max_initiatives"`

	// PauseMS is the fixed delay after every tracker call, in
	// milliseconds (default 1000). A floor, not a cap: calls are strictly
	// sequential and each is followed by this delay.
	PauseMS int `yaml:"pause_ms"`

	// ClaudeArgs are the CLI arguments for automated Claude execution.
	// If empty, defaults to the standard automated flags.
	ClaudeArgs []string `yaml:"claude_args"`

	// SilenceAgent suppresses Claude stdout when true (default true).
	SilenceAgent *bool `yaml:"silence_agent"`

	// SinglePassPrompt, InitiativesPrompt, and CapabilitiesPrompt are file
	// paths to custom prompt definitions. During LoadConfig each file is
	// read and its content stored here. If empty, the embedded defaults
	// are used.
	SinglePassPrompt   string `yaml:"single_pass_prompt"`
	InitiativesPrompt  string `yaml:"initiatives_prompt"`
	CapabilitiesPrompt string `yaml:"capabilities_prompt"`

	// ParentLabelColor is the hex color for fallback parent labels
	// (default "ededed"; GitHub requires a valid 6-char hex color).
	ParentLabelColor string `yaml:"parent_label_color"`
}

// Silence returns true when Claude output should be suppressed.
// Handles the nil-pointer case for the default (true).
func (c *Config) Silence() bool {
	if c.SilenceAgent == nil {
		return true
	}
	return *c.SilenceAgent
}

// Pause returns the inter-call delay as a duration.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseMS) * time.Millisecond
}

func (c *Config) applyDefaults() {
	if c.ScratchDir == "" {
		c.ScratchDir = ".cordwain/"
	}
	if c.MaxInitiatives == 0 {
		c.MaxInitiatives = 7
	}
	if c.PauseMS == 0 {
		c.PauseMS = 1000
	}
	if len(c.ClaudeArgs) == 0 {
		c.ClaudeArgs = defaultClaudeArgs
	}
	if c.ParentLabelColor == "" {
		c.ParentLabelColor = "ededed"
	}
}

// LoadConfig reads a configuration YAML file and returns a Config. Prompt
// override entries are treated as file paths: LoadConfig reads each file
// and replaces the field with its content.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	for name, field := range map[string]*string{
		"single_pass_prompt":  &cfg.SinglePassPrompt,
		"initiatives_prompt":  &cfg.InitiativesPrompt,
		"capabilities_prompt": &cfg.CapabilitiesPrompt,
	} {
		if *field == "" {
			continue
		}
		content, err := os.ReadFile(*field)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s %s: %w", name, *field, err)
		}
		*field = string(content)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// DefaultConfig returns a Config with defaults applied, for callers that
// run without a cordwain.yaml.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}
