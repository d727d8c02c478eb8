package channel

import (
	"context"
	"sync"
)

// MockSender is a test double that records every delivery.
// Set Err to make Send fail. Safe for concurrent use.
type MockSender struct {
	Err error

	mu    sync.Mutex
	sends []MockSend
}

// MockSend is one recorded delivery.
type MockSend struct {
	RecipientID string
	Text        string
}

// Send implements Sender.
func (m *MockSender) Send(_ context.Context, recipientID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, MockSend{RecipientID: recipientID, Text: text})
	return m.Err
}

// Sends returns a copy of all recorded deliveries.
func (m *MockSender) Sends() []MockSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSend, len(m.sends))
	copy(out, m.sends)
	return out
}

// Interface guard.
var _ Sender = (*MockSender)(nil)
