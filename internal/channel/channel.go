// Package channel defines the narrow contract between the bot core and the
// instant-messaging transport. The core never talks to the IM network
// directly; it hands text to a Sender and moves on.
package channel

import "context"

// Sender delivers outbound text to a recipient on the messaging platform.
// recipientID addresses a contact or a group, in the platform's own terms.
type Sender interface {
	Send(ctx context.Context, recipientID, text string) error
}

// ImageSender delivers an outbound image with a caption. Transports that
// cannot send images simply do not implement it.
type ImageSender interface {
	SendImage(ctx context.Context, recipientID string, image []byte, caption string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, recipientID, text string) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, recipientID, text string) error {
	return f(ctx, recipientID, text)
}
