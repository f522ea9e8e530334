package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/config"
	"github.com/imrishuroy/kashmkari-orderflow/internal/docstore"
	"github.com/imrishuroy/kashmkari-orderflow/internal/email"
	"github.com/imrishuroy/kashmkari-orderflow/internal/handlers"
	"github.com/imrishuroy/kashmkari-orderflow/internal/logger"
)

const connectTimeout = 15 * time.Second

func setupRouter(cfg config.HTTPConfig, hcfg handlers.HandlerConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	handlers.RegisterRoutes(r, hcfg)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-Request-Id"},
		ExposeHeaders: []string{"Location", "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func openCollection(ctx context.Context, cfg config.StoreConfig, clients *aws.AWSClients) (docstore.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Backend {
	case config.BackendDynamoDB:
		return docstore.NewDynamoCollection(clients.DynamoDB, cfg.OrdersTable), nil
	case config.BackendMongo:
		return docstore.OpenMongo(ctx, cfg.MongoURL, cfg.DBName, cfg.MongoCollection)
	case config.BackendPostgres:
		if cfg.AutoMigrate {
			if err := docstore.MigrateUp(ctx, cfg.PostgresDSN); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return docstore.OpenPostgres(ctx, cfg.PostgresDSN)
	case config.BackendMemory:
		return docstore.NewMemoryCollection(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// newEmailSender queues mail for the worker when a queue is configured and
// otherwise sends through Resend directly.
func newEmailSender(cfg config.EmailConfig, clients *aws.AWSClients) email.Sender {
	if cfg.QueueURL != "" {
		return email.NewQueueSender(aws.NewPublisher(clients.SQS, cfg.QueueURL))
	}
	return email.NewResendSender(cfg.ResendAPIKey, cfg.Sender, cfg.Timeout)
}

// drainMetrics waits for metric publishes still in flight.
func drainMetrics(m aws.MetricsRecorder) {
	if w, ok := m.(interface{ Wait() }); ok {
		w.Wait()
	}
}

func newMetrics(cfg config.MetricsConfig, clients *aws.AWSClients, log *zap.Logger) aws.MetricsRecorder {
	if cfg.Namespace == "" {
		return aws.NopMetrics{}
	}
	return aws.NewCloudWatchMetrics(clients.CloudWatch, cfg.Namespace, log)
}
