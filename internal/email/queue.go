package email

import (
	"context"
	"encoding/json"
	"fmt"
)

// publisher is satisfied by *aws.Publisher.
type publisher interface {
	Publish(ctx context.Context, body string, attributes map[string]string) (string, error)
}

// QueueSender hands messages to a queue consumed by the email worker. The returned id
// is the queue message id; the provider id is only known to the worker.
type QueueSender struct {
	pub publisher
}

func NewQueueSender(pub publisher) *QueueSender {
	return &QueueSender{pub: pub}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode email message: %w", err)
	}
	id, err := s.pub.Publish(ctx, string(body), map[string]string{"kind": "email"})
	if err != nil {
		return "", fmt.Errorf("enqueue email: %w", err)
	}
	return id, nil
}

// Decode parses a queued message body.
func Decode(body string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return Message{}, fmt.Errorf("decode email message: %w", err)
	}
	if msg.Recipient == "" {
		return Message{}, fmt.Errorf("decode email message: missing recipient")
	}
	return msg, nil
}
