package channel

import (
	"context"
	"fmt"
	"sync"
)

// Dispatcher routes outbound text to a named registered sender. It lets the
// greeter and the reply path address the transport uniformly without caring
// which concrete platform is wired in.
type Dispatcher struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{senders: make(map[string]Sender)}
}

// Register adds a sender under the given name.
// Returns ErrDuplicateChannel if the name is already taken.
func (d *Dispatcher) Register(name string, s Sender) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.senders[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChannel, name)
	}
	d.senders[name] = s
	return nil
}

// Get returns the sender registered under name, or false if none.
func (d *Dispatcher) Get(name string) (Sender, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.senders[name]
	return s, ok
}

// SendVia delivers text through the named sender.
// Returns ErrNoChannel if nothing is registered under that name.
func (d *Dispatcher) SendVia(ctx context.Context, name, recipientID, text string) error {
	d.mu.RLock()
	s, ok := d.senders[name]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChannel, name)
	}
	return s.Send(ctx, recipientID, text)
}
