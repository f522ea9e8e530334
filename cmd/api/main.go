package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/config"
	"github.com/imrishuroy/kashmkari-orderflow/internal/handlers"
	"github.com/imrishuroy/kashmkari-orderflow/internal/idempotency"
	"github.com/imrishuroy/kashmkari-orderflow/internal/logger"
	"github.com/imrishuroy/kashmkari-orderflow/internal/orders"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// analytics money fields as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

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

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx, cfg.AWS.Region, cfg.AWS.EndpointOverride)
	if err != nil {
		log.Fatal("failed to init aws clients", zap.Error(err))
	}

	coll, err := openCollection(ctx, cfg.Store, clients)
	if err != nil {
		log.Fatal("failed to open order store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := coll.Close(closeCtx); err != nil {
			log.Warn("closing order store", zap.Error(err))
		}
	}()
	log.Info("order store ready", zap.String("backend", cfg.Store.Backend))

	metrics := newMetrics(cfg.Metrics, clients, log)
	defer drainMetrics(metrics)

	hcfg := handlers.HandlerConfig{
		Orders:  orders.NewStore(coll),
		Email:   newEmailSender(cfg.Email, clients),
		Metrics: metrics,
		Logger:  log,
	}
	if cfg.Store.IdempotencyTable != "" {
		hcfg.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.Store.IdempotencyTable, idempotency.DefaultTTL)
	}

	r := setupRouter(cfg.HTTP, hcfg, log)

	// if RUN_LOCAL is set, serve HTTP directly for development.
	if cfg.HTTP.RunLocal {
		if err := serveLocal(r, cfg.HTTP.Addr, log); err != nil {
			log.Error("local server stopped", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

func serveLocal(h http.Handler, addr string, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("running local server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down local server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
