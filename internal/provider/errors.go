package provider

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrRateLimit indicates the backend returned a rate limit response.
	ErrRateLimit = errors.New("provider rate limited")

	// ErrAuthentication indicates the API key was rejected.
	ErrAuthentication = errors.New("provider authentication failed")

	// ErrProviderDown indicates the backend is unreachable or failing.
	ErrProviderDown = errors.New("provider unavailable")
)

// Kind is a coarse classification of a completion failure, used by the
// reply pipeline to choose a user-facing fallback.
type Kind int

// Kind values.
const (
	KindUnknown Kind = iota
	KindRateLimited
	KindAuthFailed
	KindNetworkUnavailable
)

// String returns the kind's label for logging and metrics.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindAuthFailed:
		return "auth_failed"
	case KindNetworkUnavailable:
		return "network_unavailable"
	default:
		return "unknown"
	}
}

// Classify maps an error from Complete to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrRateLimit):
		return KindRateLimited
	case errors.Is(err, ErrAuthentication):
		return KindAuthFailed
	case errors.Is(err, ErrProviderDown):
		return KindNetworkUnavailable
	default:
		return KindUnknown
	}
}
