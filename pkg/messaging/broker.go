package messaging

import (
	"context"
)

// ChannelPrefix namespaces every published event channel.
const ChannelPrefix = "aesthiq."

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for each outbox event.
type Message struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Payload []byte `json:"payload"`
}

// Channel returns the broker channel an event type is published on.
func Channel(eventType string) string {
	return ChannelPrefix + eventType
}
