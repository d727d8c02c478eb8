package photo

import (
	"fmt"
	"strings"
	"time"
)

// Config controls image generation. The feature is off unless an API key is
// configured; everything else has working defaults.
type Config struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	Size           string        `yaml:"size"`
	ReferenceImage string        `yaml:"reference_image"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Defaults fills zero-value fields with Doubao Seedream settings.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
	if c.Model == "" {
		c.Model = "doubao-seedream-4-5-251128"
	}
	if c.Size == "" {
		c.Size = "1920x1920"
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Enabled reports whether image generation is configured.
func (c *Config) Enabled() bool {
	return c.APIKey != ""
}

// Validate checks the config. A missing API key is valid (feature disabled);
// other fields are only checked when the feature is on.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.BaseURL == "" {
		return fmt.Errorf("photo: base_url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("photo: model is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("photo: timeout must not be negative")
	}
	return nil
}
