package notifier

import "context"

// Message is a text message with an optional image attachment.
// When Image is set, Text is sent as its caption.
type Message struct {
	Text      string
	Image     []byte
	ImageName string
}

// Notifier delivers messages to the outside world.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Text builds a plain text message.
func Text(s string) Message { return Message{Text: s} }
