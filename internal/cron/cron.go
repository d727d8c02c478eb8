// Package cron provides the repeating-task abstraction that drives
// time-based behavior such as the proactive greeter's minute tick.
package cron

import "context"

// Job defines a periodic background task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression (e.g., "* * * * *").
	Schedule() string

	// Run executes one tick. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}
