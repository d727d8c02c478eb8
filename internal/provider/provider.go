// Package provider defines the contract for the language-model backend the
// reply pipeline delegates to. Concrete implementations live in subpackages
// (e.g. provider/openaicompat).
package provider

import "context"

// Provider is the interface for communicating with an LLM backend.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface a provider may implement to
// support active availability probing.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
