package openaicompat

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// preset carries the default endpoint and model for a known backend.
type preset struct {
	baseURL string
	model   string
}

// presets maps backend names to their OpenAI-compatible endpoints.
var presets = map[string]preset{
	"deepseek":    {baseURL: "https://api.deepseek.com/v1", model: "deepseek-chat"},
	"openai":      {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	"siliconflow": {baseURL: "https://api.siliconflow.cn/v1", model: "deepseek-ai/DeepSeek-V3"},
	"lingyiwanwu": {baseURL: "https://api.lingyiwanwu.com/v1", model: "yi-lightning"},
	"xai":         {baseURL: "https://api.x.ai/v1", model: "grok-4-1-fast-non-reasoning"},
}

// Config holds the configuration for an OpenAI-compatible backend.
// Preset selects a known backend; BaseURL and Model override its defaults.
type Config struct {
	Preset      string            `yaml:"preset"`
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key"`
	Model       string            `yaml:"model"`
	Temperature float64           `yaml:"temperature"`
	MaxTokens   int               `yaml:"max_tokens"`
	Headers     map[string]string `yaml:"headers"`
	Timeout     time.Duration     `yaml:"timeout"`
}

// Defaults fills unset fields from the preset and global fallbacks.
func (c *Config) Defaults() {
	if c.Preset == "" {
		c.Preset = "deepseek"
	}
	if p, ok := presets[strings.ToLower(c.Preset)]; ok {
		if c.BaseURL == "" {
			c.BaseURL = p.baseURL
		}
		if c.Model == "" {
			c.Model = p.model
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.85
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 300
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate returns an error if required fields are missing or malformed.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errMissingField("base_url")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("provider: base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.APIKey == "" {
		return errMissingField("api_key")
	}
	if c.Model == "" {
		return errMissingField("model")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("provider: max_tokens must not be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("provider: temperature must be within [0, 2], got %v", c.Temperature)
	}
	return nil
}

// supportsPenalties reports whether the backend accepts presence/frequency
// penalty parameters. xAI rejects them.
func (c *Config) supportsPenalties() bool {
	return strings.ToLower(c.Preset) != "xai"
}

// errMissingField returns a validation error for a missing required field.
func errMissingField(field string) error {
	return fmt.Errorf("provider: %s is required", field)
}
