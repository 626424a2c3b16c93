package messaging

import (
	"context"
)

// Event is a message that knows its own subject and wire encoding.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Publisher delivers events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
