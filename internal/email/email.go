// Package email delivers transactional mail. Delivery is independent of the
// order store: a failed send never changes an order.
package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no provider credentials are set.
var ErrNotConfigured = errors.New("email service not configured")

// Message is a single outbound email.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	HTMLBody  string `json:"html_body"`
}

// Sender delivers a message and returns the id assigned by the provider or queue.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Unconfigured is the Sender used when no API key or queue is set.
type Unconfigured struct{}

func (Unconfigured) Send(context.Context, Message) (string, error) {
	return "", ErrNotConfigured
}
