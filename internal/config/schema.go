// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for wanwan.
package config

import (
	"github.com/banterlab/wanwan/internal/gateway"
	"github.com/banterlab/wanwan/internal/greeter"
	"github.com/banterlab/wanwan/internal/history"
	"github.com/banterlab/wanwan/internal/persona"
	"github.com/banterlab/wanwan/internal/photo"
	"github.com/banterlab/wanwan/internal/provider/openaicompat"
)

// Config is the top-level configuration structure.
type Config struct {
	// Character describes the persona. Unset fields keep the built-in
	// defaults.
	Character persona.Character `yaml:"character"`

	// Provider configures the LLM backend.
	Provider openaicompat.Config `yaml:"provider"`

	// History bounds the per-user dialogue log.
	History HistoryConfig `yaml:"history"`

	// DataDir is where dialogue and memory tables are persisted.
	DataDir string `yaml:"data_dir"`

	// TargetUser restricts private replies and proactive greetings to one
	// contact name. Empty replies to everyone.
	TargetUser string `yaml:"target_user"`

	// TypingDelay paces outbound messages like a human typist.
	TypingDelay *bool `yaml:"typing_delay"`

	// Scheduler configures proactive greetings.
	Scheduler greeter.Config `yaml:"scheduler"`

	// Gateway configures the operational HTTP surface.
	Gateway gateway.Config `yaml:"gateway"`

	// Photo configures image generation. Off without an API key.
	Photo photo.Config `yaml:"photo"`
}

// HistoryConfig bounds the dialogue log.
type HistoryConfig struct {
	MaxMessages int `yaml:"max_messages"`
}

// Defaults fills zero values in every section.
func (c *Config) Defaults() {
	c.Character.Defaults()
	c.Provider.Defaults()
	c.Scheduler.Defaults()
	c.Gateway.Defaults()
	c.Photo.Defaults()
	if c.History.MaxMessages <= 0 {
		c.History.MaxMessages = history.DefaultMaxLen
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.TypingDelay == nil {
		on := true
		c.TypingDelay = &on
	}
}

// Pace reports whether typing delays are enabled.
func (c *Config) Pace() bool {
	return c.TypingDelay == nil || *c.TypingDelay
}
