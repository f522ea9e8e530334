package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
)

// DefaultSender is Resend's shared test address, usable before a domain is verified.
const DefaultSender = "onboarding@resend.dev"

// emailsAPI is the part of the Resend client used here.
type emailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	emails  emailsAPI
	from    string
	timeout time.Duration
}

// NewResendSender returns Unconfigured when apiKey is empty.
func NewResendSender(apiKey, from string, timeout time.Duration) Sender {
	if apiKey == "" {
		return Unconfigured{}
	}
	return newResendSender(resend.NewClient(apiKey).Emails, from, timeout)
}

func newResendSender(emails emailsAPI, from string, timeout time.Duration) *ResendSender {
	if from == "" {
		from = DefaultSender
	}
	return &ResendSender{emails: emails, from: from, timeout: timeout}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	sent, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.Recipient},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}
