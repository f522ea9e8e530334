package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/idempotency"
	"github.com/imrishuroy/kashmkari-orderflow/internal/orders"
	"github.com/imrishuroy/kashmkari-orderflow/internal/validation"
)

func (h *api) registerOrders(g *gin.RouterGroup) {
	g.GET("/orders", h.listOrders)
	g.POST("/orders", h.createOrder)
	g.POST("/orders/bulk-delete", h.bulkDeleteOrders)
	g.GET("/orders/:id", h.getOrder)
	g.PUT("/orders/:id", h.updateOrder)
	g.DELETE("/orders/:id", h.deleteOrder)
}

func (h *api) listOrders(c *gin.Context) {
	list, err := h.orders.List(c.Request.Context(), orders.ParseFilter(c.Query("filter")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *api) createOrder(c *gin.Context) {
	ctx := c.Request.Context()

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_request_body", "detail": err.Error()})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var req validation.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		// BindAndValidate already wrote a 422
		return
	}

	idempKey := c.GetHeader("Idempotency-Key")
	if h.idemp == nil {
		idempKey = ""
	}
	if idempKey != "" && !h.reserve(c, idempKey, idempotency.HashRequest(raw)) {
		return
	}

	order, err := h.orders.Create(ctx, req.NewOrder())
	if err != nil {
		if idempKey != "" {
			// let the client retry with the same key
			_ = h.idemp.MarkFailed(ctx, idempKey, fmt.Sprintf("create_failed: %v", err))
		}
		h.fail(c, err)
		return
	}
	h.metrics.Count(ctx, aws.MetricOrdersCreated, 1)

	body, err := json.Marshal(order)
	if err != nil {
		h.fail(c, err)
		return
	}
	if idempKey != "" {
		if err := h.idemp.MarkDone(ctx, idempKey, order.ID, string(body), http.StatusOK); err != nil {
			h.log.Warn("mark idempotency done failed", zap.String("idempotency_key", idempKey), zap.Error(err))
			// a key stuck IN_PROGRESS would answer 202 until it expires
			if err := h.idemp.MarkFailed(ctx, idempKey, "mark_done_failed"); err != nil {
				h.log.Error("mark idempotency failed", zap.String("idempotency_key", idempKey), zap.Error(err))
			}
		}
	}

	c.Header("Location", fmt.Sprintf("/api/orders/%s", order.ID))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// reserve claims idempotency key for this request. When it returns false a response
// (replay, conflict or error) has already been written.
func (h *api) reserve(c *gin.Context, key, hash string) bool {
	ctx := c.Request.Context()

	created, err := h.idemp.CreateIfNotExists(ctx, key, hash)
	if err != nil {
		h.log.Error("idempotency create failed", zap.String("idempotency_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return false
	}
	if created {
		return true
	}

	rec, err := h.idemp.Get(ctx, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return false
	}
	if rec == nil {
		// removed by TTL between the conditional put and the read
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency_key_expired", "detail": "retry the request"})
		return false
	}
	if rec.RequestHash != hash {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "idempotency_key_reused",
			"detail": "Idempotency-Key was already used with a different request body",
		})
		return false
	}

	if rec.Status == idempotency.StatusFailed || rec.Expired(h.idemp.Now()) {
		ok, err := h.idemp.Reclaim(ctx, key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
			return false
		}
		if ok {
			return true
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress"})
		return false
	}

	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
			return false
		}
		c.JSON(http.StatusOK, gin.H{"id": rec.OrderID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
	return false
}

func (h *api) getOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *api) updateOrder(c *gin.Context) {
	var req validation.UpdateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), req.Update())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *api) deleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Count(c.Request.Context(), aws.MetricOrdersDeleted, 1)
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully", "order_id": id})
}

func (h *api) bulkDeleteOrders(c *gin.Context) {
	var ids []string
	if err := validation.Bind(c, &ids); err != nil {
		return
	}
	n, err := h.orders.BulkDelete(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	if n > 0 {
		h.metrics.Count(c.Request.Context(), aws.MetricOrdersDeleted, float64(n))
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("%d orders deleted successfully", n),
		"deleted_count": n,
	})
}
