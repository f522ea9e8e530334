package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/email"
	"github.com/imrishuroy/kashmkari-orderflow/internal/idempotency"
	"github.com/imrishuroy/kashmkari-orderflow/internal/orders"
	"github.com/imrishuroy/kashmkari-orderflow/internal/validation"
)

// OrderService is the order lifecycle the routes drive. *orders.Store implements it.
type OrderService interface {
	Create(ctx context.Context, in orders.NewOrder) (orders.Order, error)
	Get(ctx context.Context, id string) (orders.Order, error)
	List(ctx context.Context, f orders.Filter) ([]orders.Order, error)
	Update(ctx context.Context, id string, u orders.Update) (orders.Order, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	Reminders(ctx context.Context) ([]orders.Reminder, error)
	Analytics(ctx context.Context, year int, month time.Month) (orders.MonthlyStats, error)
	Now() time.Time
}

// IdempotencyStore remembers creates by Idempotency-Key. *idempotency.Store implements it.
type IdempotencyStore interface {
	CreateIfNotExists(ctx context.Context, key, requestHash string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.IdempotencyRecord, error)
	Reclaim(ctx context.Context, key string) (bool, error)
	MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
	Now() time.Time
}

// HandlerConfig groups dependencies for the API routes.
// Idempotency is optional; without it the Idempotency-Key header is ignored.
type HandlerConfig struct {
	Orders      OrderService
	Email       email.Sender
	Idempotency IdempotencyStore
	Metrics     aws.MetricsRecorder
	Logger      *zap.Logger
}

type api struct {
	orders  OrderService
	email   email.Sender
	idemp   IdempotencyStore
	metrics aws.MetricsRecorder
	log     *zap.Logger
	v       *validatorv10.Validate
}

// RegisterRoutes registers the health check and every /api route.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &api{
		orders:  cfg.Orders,
		email:   cfg.Email,
		idemp:   cfg.Idempotency,
		metrics: cfg.Metrics,
		log:     cfg.Logger,
		v:       validation.New(),
	}
	if h.email == nil {
		h.email = email.Unconfigured{}
	}
	if h.metrics == nil {
		h.metrics = aws.NopMetrics{}
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group("/api")
	g.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Kashmkari Support Platform API"})
	})

	h.registerOrders(g)
	h.registerReports(g)
	h.registerEmail(g)
}

// fail maps an error from the order service or email sender to a response.
func (h *api) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "detail": "Order not found"})
	case errors.Is(err, email.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "email_not_configured", "detail": err.Error()})
	case errors.Is(err, orders.ErrUnavailable):
		h.log.Error("order store failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_unavailable", "detail": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "detail": err.Error()})
	}
}
