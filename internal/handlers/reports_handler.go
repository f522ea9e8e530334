package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
)

func (h *api) registerReports(g *gin.RouterGroup) {
	g.GET("/reminders", h.reminders)
	g.GET("/analytics", h.analytics)
}

func (h *api) reminders(c *gin.Context) {
	list, err := h.orders.Reminders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Count(c.Request.Context(), aws.MetricStaleOrders, float64(len(list)))
	c.JSON(http.StatusOK, list)
}

// analytics defaults to the current UTC month.
func (h *api) analytics(c *gin.Context) {
	now := h.orders.Now().UTC()

	month, ok := queryInt(c, "month", int(now.Month()), 1, 12)
	if !ok {
		return
	}
	year, ok := queryInt(c, "year", now.Year(), 1, 9999)
	if !ok {
		return
	}

	stats, err := h.orders.Analytics(c.Request.Context(), year, time.Month(month))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func queryInt(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	s, ok := c.GetQuery(name)
	if !ok || s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"detail": name + " must be an integer between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi),
		})
		return 0, false
	}
	return n, true
}
