// Package photo generates selfies and scene photos through a
// Doubao Seedream style images API. Selfies are image edits against a
// reference picture so every shot shows the same person; scene photos are
// plain text-to-image. The whole feature degrades to in-character text
// excuses when no API key is configured.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
)

// ErrDisabled is returned when image generation is requested without an API
// key configured.
var ErrDisabled = errors.New("photo: image generation is not configured")

// imagesRequest is the wire format of the images/generations endpoint.
type imagesRequest struct {
	Model          string   `json:"model"`
	Prompt         string   `json:"prompt"`
	ImageURLs      []string `json:"image_urls,omitempty"`
	ResponseFormat string   `json:"response_format"`
	Size           string   `json:"size"`
	Watermark      bool     `json:"watermark"`
}

type imagesResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Client calls the images API.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger

	refOnce sync.Once
	refData string
	refErr  error
}

// NewClient creates a client from cfg. Defaults are applied before
// validation. A client without an API key is valid but every generation
// call returns ErrDisabled.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Enabled reports whether generation calls can succeed.
func (c *Client) Enabled() bool {
	return c.config.Enabled()
}

// GenerateSelfie produces a selfie image URL for the message. The reference
// image is attached so the generated face stays consistent across calls.
func (c *Client) GenerateSelfie(ctx context.Context, text string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	ref, err := c.referenceImage()
	if err != nil {
		return "", fmt.Errorf("photo: load reference image: %w", err)
	}

	mode := DetectMode(text)
	prompt := BuildPrompt(text, mode)
	c.logger.Info("photo: generating selfie", "mode", mode.String())

	return c.generate(ctx, imagesRequest{
		Model:          c.config.Model,
		Prompt:         prompt,
		ImageURLs:      []string{ref},
		ResponseFormat: "url",
		Size:           c.config.Size,
	})
}

// GenerateScenePhoto produces a scene image URL for the message. No
// reference image is used: scene photos never contain a face.
func (c *Client) GenerateScenePhoto(ctx context.Context, text string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	prompt := InferScenePrompt(text)
	c.logger.Info("photo: generating scene photo")

	return c.generate(ctx, imagesRequest{
		Model:          c.config.Model,
		Prompt:         prompt,
		ResponseFormat: "url",
		Size:           c.config.Size,
	})
}

// Download fetches a generated image so it can be handed to the IM
// transport as bytes.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("photo: create download request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photo: download image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo: download returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) generate(ctx context.Context, body imagesRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("photo: marshal request: %w", err)
	}

	endpoint := c.config.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("photo: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("photo: images API: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("photo: images API returned HTTP %d: %s", resp.StatusCode, detail)
	}

	var imgResp imagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&imgResp); err != nil {
		return "", fmt.Errorf("photo: decode response: %w", err)
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return "", errors.New("photo: response contained no image URL")
	}
	return imgResp.Data[0].URL, nil
}

const maxErrorBody = 4096

// referenceImage loads the reference picture once and caches it as a
// base64 data URL, the format the image-edit endpoint accepts.
func (c *Client) referenceImage() (string, error) {
	c.refOnce.Do(func() {
		if c.config.ReferenceImage == "" {
			c.refErr = errors.New("no reference_image configured")
			return
		}
		data, err := os.ReadFile(c.config.ReferenceImage)
		if err != nil {
			c.refErr = err
			return
		}
		c.refData = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
		c.logger.Info("photo: reference image loaded",
			"path", c.config.ReferenceImage, "bytes", len(data))
	})
	return c.refData, c.refErr
}
