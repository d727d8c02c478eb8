package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banterlab/wanwan/internal/provider"
)

func testConfig(baseURL string) Config {
	return Config{
		Preset:  "custom",
		BaseURL: baseURL,
		APIKey:  "sk-test",
		Model:   "test-model",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(testConfig(srv.URL), nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	return c
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var got oaiRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{Message: oaiMessage{Role: "assistant", Content: "  你好呀～  "}}},
			Usage:   oaiUsage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17},
		})
	})

	resp, err := c.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleSystem, Content: "persona"},
			{Role: provider.MessageRoleUser, Content: "在吗"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: unexpected error: %v", err)
	}

	if resp.Content != "你好呀～" {
		t.Errorf("Content = %q, want trimmed reply", resp.Content)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Errorf("TotalTokens = %d, want 17", resp.Usage.TotalTokens)
	}
	if got.Model != "test-model" {
		t.Errorf("request model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("request messages = %+v", got.Messages)
	}
	if got.PresencePenalty == nil || got.FrequencyPenalty == nil {
		t.Error("penalties should be set for non-xai backends")
	}
}

func TestBuildRequest_XAIOmitsPenalties(t *testing.T) {
	t.Parallel()

	cfg := Config{Preset: "xai", APIKey: "k"}
	cfg.Defaults()

	req := buildRequest(cfg, provider.CompletionRequest{
		Messages: []provider.LLMMessage{{Role: provider.MessageRoleUser, Content: "hi"}},
	})
	if req.PresencePenalty != nil || req.FrequencyPenalty != nil {
		t.Error("xai requests must not carry presence/frequency penalties")
	}
}

func TestComplete_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: provider.ErrRateLimit},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: provider.ErrAuthentication},
		{name: "forbidden", status: http.StatusForbidden, wantErr: provider.ErrAuthentication},
		{name: "server error", status: http.StatusBadGateway, wantErr: provider.ErrProviderDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := c.Complete(context.Background(), provider.CompletionRequest{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Complete error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComplete_TransportError(t *testing.T) {
	t.Parallel()

	c, err := New(testConfig("http://127.0.0.1:1"), nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	_, err = c.Complete(context.Background(), provider.CompletionRequest{})
	if !errors.Is(err, provider.ErrProviderDown) {
		t.Errorf("Complete error = %v, want ErrProviderDown", err)
	}
}

func TestComplete_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, provider.CompletionRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Complete error = %v, want context.Canceled", err)
	}
	if errors.Is(err, provider.ErrProviderDown) {
		t.Error("cancellation must not be classified as a backend failure")
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: unexpected error: %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         Config
		wantBaseURL string
		wantModel   string
	}{
		{
			name:        "empty preset falls back to deepseek",
			cfg:         Config{APIKey: "k"},
			wantBaseURL: "https://api.deepseek.com/v1",
			wantModel:   "deepseek-chat",
		},
		{
			name:        "openai preset",
			cfg:         Config{Preset: "openai", APIKey: "k"},
			wantBaseURL: "https://api.openai.com/v1",
			wantModel:   "gpt-4o-mini",
		},
		{
			name:        "explicit base_url wins over preset",
			cfg:         Config{Preset: "openai", BaseURL: "http://localhost:11434/v1/", APIKey: "k", Model: "llama3"},
			wantBaseURL: "http://localhost:11434/v1",
			wantModel:   "llama3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.cfg.Defaults()
			if tt.cfg.BaseURL != tt.wantBaseURL {
				t.Errorf("BaseURL = %q, want %q", tt.cfg.BaseURL, tt.wantBaseURL)
			}
			if tt.cfg.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", tt.cfg.Model, tt.wantModel)
			}
			if err := tt.cfg.Validate(); err != nil {
				t.Errorf("Validate after Defaults: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(_ *Config) {}, wantErr: false},
		{name: "missing api key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: true},
		{name: "missing model", mutate: func(c *Config) { c.Model = "" }, wantErr: true},
		{name: "bad scheme", mutate: func(c *Config) { c.BaseURL = "ftp://x" }, wantErr: true},
		{name: "negative max tokens", mutate: func(c *Config) { c.MaxTokens = -1 }, wantErr: true},
		{name: "temperature out of range", mutate: func(c *Config) { c.Temperature = 3 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig("https://api.example.com/v1")
			cfg.Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
