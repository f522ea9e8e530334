package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmails struct {
	got      *resend.SendEmailRequest
	deadline bool
	err      error
}

func (f *fakeEmails) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_123"}, nil
}

type fakePublisher struct {
	body  string
	attrs map[string]string
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, body string, attrs map[string]string) (string, error) {
	f.body, f.attrs = body, attrs
	if f.err != nil {
		return "", f.err
	}
	return "sqs-msg-1", nil
}

var msg = Message{Recipient: "asha@example.com", Subject: "Your order", HTMLBody: "<p>Shipped</p>"}

func TestResendSender_Send(t *testing.T) {
	fake := &fakeEmails{}
	s := newResendSender(fake, "", 5*time.Second)

	id, err := s.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "re_123", id)
	assert.Equal(t, DefaultSender, fake.got.From)
	assert.Equal(t, []string{"asha@example.com"}, fake.got.To)
	assert.Equal(t, "<p>Shipped</p>", fake.got.Html)
	assert.True(t, fake.deadline)
}

func TestResendSender_Error(t *testing.T) {
	fake := &fakeEmails{err: errors.New("invalid api key")}
	s := newResendSender(fake, "desk@kashmkari.com", 0)

	_, err := s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, "desk@kashmkari.com", fake.got.From)
	assert.False(t, fake.deadline)
}

func TestNewResendSender_Unconfigured(t *testing.T) {
	s := NewResendSender("", "", time.Second)
	_, err := s.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestQueueSender_RoundTrip(t *testing.T) {
	pub := &fakePublisher{}
	id, err := NewQueueSender(pub).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "sqs-msg-1", id)
	assert.Equal(t, "email", pub.attrs["kind"])

	decoded, err := Decode(pub.body)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestQueueSender_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("queue gone")}
	_, err := NewQueueSender(pub).Send(context.Background(), msg)
	assert.Error(t, err)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("not json")
	assert.Error(t, err)
	_, err = Decode(`{"subject":"x"}`)
	assert.Error(t, err)
}
