// Package queue carries the pipeline's two message flows: upload
// notifications in, thumbnail jobs out. Transports are abstracted so tests
// can run against the in-memory implementation while production uses Kafka.
package queue

import "context"

// Message is one delivery off a queue. Receipt is the transport's handle,
// needed to delete (acknowledge) the message.
type Message struct {
	ID      string
	Body    []byte
	Receipt interface{}
}

// Consumer is a short-poll queue reader. Receive blocks for at most the
// transport's configured wait and returns no messages once the queue looks
// empty; an undeleted message is redelivered later (at-least-once).
type Consumer interface {
	Receive(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, msg Message) error
}

// Publisher is the fire-and-forget side of a topic.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}
