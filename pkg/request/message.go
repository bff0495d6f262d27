package request

import "fmt"

// Message represents a JSON message response from the monitoring server.
type Message struct {
	Message string `json:"Message"`
}

// NewMessage creates a new Message. Arguments are applied as fmt verbs when provided.
func NewMessage(message string, args ...any) *Message {
	msg := message
	if len(args) > 0 {
		msg = fmt.Sprintf(message, args...)
	}
	return &Message{
		Message: msg,
	}
}
