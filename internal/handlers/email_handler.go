package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/kashmkari-orderflow/internal/aws"
	"github.com/imrishuroy/kashmkari-orderflow/internal/email"
	"github.com/imrishuroy/kashmkari-orderflow/internal/validation"
)

func (h *api) registerEmail(g *gin.RouterGroup) {
	g.POST("/send-email", h.sendEmail)
}

func (h *api) sendEmail(c *gin.Context) {
	var req validation.SendEmailRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	ctx := c.Request.Context()
	id, err := h.email.Send(ctx, email.Message{
		Recipient: req.RecipientEmail,
		Subject:   req.Subject,
		HTMLBody:  req.HTMLContent,
	})
	if err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			h.fail(c, err)
			return
		}
		h.metrics.Count(ctx, aws.MetricEmailFailures, 1)
		h.log.Error("send email failed", zap.String("recipient", req.RecipientEmail), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "email_send_failed", "detail": "Failed to send email: " + err.Error()})
		return
	}

	h.metrics.Count(ctx, aws.MetricEmailsSent, 1)
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Email sent to " + req.RecipientEmail,
		"email_id": id,
	})
}
