package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/email"
)

// Processor delivers queued emails.
type Processor struct {
	sender  email.Sender
	metrics aws.MetricsRecorder
	log     *zap.Logger
}

// NewProcessor creates a new worker processor with its sender injected.
func NewProcessor(sender email.Sender, metrics aws.MetricsRecorder, log *zap.Logger) *Processor {
	if metrics == nil {
		metrics = aws.NopMetrics{}
	}
	return &Processor{sender: sender, metrics: metrics, log: log}
}

// Handle sends every message of the batch and reports the ones that failed, so
// SQS redelivers only those. Undecodable bodies fail too and end up in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error("email delivery failed", zap.String("message_id", rec.MessageId), zap.Error(err))
			p.metrics.Count(ctx, aws.MetricEmailFailures, 1)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	p.log.Info("processed email batch",
		zap.Int("received", len(ev.Records)),
		zap.Int("failed", len(resp.BatchItemFailures)))
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	msg, err := email.Decode(rec.Body)
	if err != nil {
		return err
	}

	id, err := p.sender.Send(ctx, msg)
	if err != nil {
		return err
	}

	p.metrics.Count(ctx, aws.MetricEmailsSent, 1)
	p.log.Info("email sent",
		zap.String("message_id", rec.MessageId),
		zap.String("email_id", id),
		zap.String("recipient", msg.Recipient))
	return nil
}
