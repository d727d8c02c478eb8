package imbot

import "github.com/google/uuid"

// Event is one inbound IM message, already normalized by the platform
// adapter. The handler never sees platform types.
type Event struct {
	ID string
	// Channel names the transport the event arrived on; replies go back the
	// same way. Empty uses the handler's default channel.
	Channel    string
	SenderID   string
	SenderName string
	Text       string
	Group      bool
	GroupID    string
	GroupTopic string
	Mentioned  bool
	FromSelf   bool
}

// NewEvent assigns a fresh message ID when the adapter did not provide one.
func NewEvent(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	return ev
}
