package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/config"
	"github.com/imrishuroy/kashmkari-orderflow/internal/email"
	"github.com/imrishuroy/kashmkari-orderflow/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Email.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is required by the email worker")
	}

	var metrics aws.MetricsRecorder = aws.NopMetrics{}
	if cfg.Metrics.Namespace != "" {
		clients, err := aws.NewAWSClients(context.Background(), cfg.AWS.Region, cfg.AWS.EndpointOverride)
		if err != nil {
			log.Fatal("failed to init aws clients", zap.Error(err))
		}
		cw := aws.NewCloudWatchMetrics(clients.CloudWatch, cfg.Metrics.Namespace, log)
		defer cw.Wait()
		metrics = cw
	}

	p := NewProcessor(email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.Sender, cfg.Email.Timeout), metrics, log)

	// If RUN_LOCAL=true, process a single simulated SQS event and exit.
	if cfg.HTTP.RunLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			log.Fatal("LOCAL_SQS_BODY is required when RUN_LOCAL=true")
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: testBody},
			},
		}
		resp, _ := p.Handle(context.Background(), event)
		if len(resp.BatchItemFailures) > 0 {
			log.Fatal("local delivery failed")
		}
		return
	}

	lambda.Start(p.Handle)
}
